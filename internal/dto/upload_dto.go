package dto

type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

type FailedSource struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

type IngestReport struct {
	Indexed []string       `json:"indexed"`
	Skipped []string       `json:"skipped"`
	Failed  []FailedSource `json:"failed"`
}
