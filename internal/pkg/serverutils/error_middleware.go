package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"rag-chat-be/internal/pkg/apperrors"
	"rag-chat-be/internal/pkg/logger"
)

// ErrorHandlerMiddleware converts application errors into the uniform JSON
// envelope. Internal causes are logged with full detail and never leak to
// the client.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *apperrors.ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(validationErr.Status).
				JSON(CodedErrorResponse(validationErr.Status, validationErr.Code, validationErr.Message))
		}

		if errors.Is(err, apperrors.ErrQueueFull) {
			return ctx.Status(fiber.StatusServiceUnavailable).
				JSON(CodedErrorResponse(fiber.StatusServiceUnavailable, "queue_full", "Server is busy, please retry shortly"))
		}

		if errors.Is(err, apperrors.ErrCancelled) {
			return ctx.Status(fiber.StatusServiceUnavailable).
				JSON(CodedErrorResponse(fiber.StatusServiceUnavailable, "cancelled", "Request was cancelled before completion"))
		}

		var generationErr *apperrors.GenerationError
		if errors.As(err, &generationErr) {
			log.Error("http", "generation pipeline failed", map[string]interface{}{
				"path":  ctx.Path(),
				"error": generationErr.Err.Error(),
			})
			return ctx.Status(fiber.StatusBadGateway).
				JSON(CodedErrorResponse(fiber.StatusBadGateway, "generation_failed", "Failed to generate a response"))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("http", "unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
