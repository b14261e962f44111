package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull means the chat queue rejected a request because it was at
	// capacity. Callers should retry later.
	ErrQueueFull = errors.New("chat queue is full")

	// ErrCancelled means a queued request was abandoned before a worker
	// produced an answer, either by the caller or by shutdown.
	ErrCancelled = errors.New("chat request cancelled")
)

// ValidationError is a client-side request problem with a machine-readable
// code. It maps onto a 4xx response.
type ValidationError struct {
	Code    string
	Message string
	Status  int
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidation(status int, code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message, Status: status}
}

// GenerationError wraps a failure inside the generation pipeline (embedding,
// retrieval or the LLM call). The wrapped cause is logged, never exposed.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
