package serverutils

// Response is the uniform JSON envelope for every API reply.
type Response[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Status:  200,
		Message: message,
		Data:    data,
	}
}

// ErrorBody carries a machine-readable code next to the human message.
type ErrorBody struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func ErrorResponse(status int, message string) ErrorBody {
	return ErrorBody{Status: status, Message: message}
}

func CodedErrorResponse(status int, code, message string) ErrorBody {
	return ErrorBody{Status: status, Code: code, Message: message}
}
