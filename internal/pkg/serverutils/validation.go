package serverutils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"rag-chat-be/internal/pkg/apperrors"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and converts the first failure
// into a coded 400 error.
func ValidateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return apperrors.NewValidation(http.StatusBadRequest, "invalid_request", err.Error())
	}

	fe := errs[0]
	field := strings.ToLower(fe.Field())
	return apperrors.NewValidation(
		http.StatusBadRequest,
		"invalid_"+field,
		fmt.Sprintf("field %s failed validation on rule %s", field, fe.Tag()),
	)
}
