package serverutils

import (
	"errors"
	"runtime/debug"

	"deepresearch-be/internal/persistence"
	"deepresearch-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware centralizes error-to-response translation: a
// handler returns a plain Go error, this middleware decides the status
// code, error code and message, and best-effort records a 5xx as an
// ErrorEntry. Handlers never write to the error_logs table themselves.
// isDev controls whether a stack trace is echoed back in the response
// body; for a 5xx it is logged regardless of isDev.
func ErrorHandlerMiddleware(log logger.ILogger, persist *persistence.Adapter, isDev bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var apiErr *APIError
		var fiberErr *fiber.Error
		var status int
		var code, message string

		switch {
		case errors.As(err, &apiErr):
			status, code, message = apiErr.Status, apiErr.Code, apiErr.Message
		case errors.As(err, &fiberErr):
			status, code, message = fiberErr.Code, codeForStatus(fiberErr.Code), fiberErr.Message
		default:
			status, code, message = fiber.StatusInternalServerError, "internal_error", "an unexpected error occurred"
		}

		stack := debug.Stack()
		envelope := ErrorEnvelope{Error: code, Message: message}
		if isDev {
			envelope.Stack = string(stack)
		}
		_ = ctx.Status(status).JSON(envelope)

		if status >= 500 {
			log.Error("http", "request failed", map[string]interface{}{
				"path":   ctx.Path(),
				"method": ctx.Method(),
				"error":  err.Error(),
				"stack":  string(stack),
			})
			persist.LogError(ctx.Context(), nil, err.Error(), string(stack))
		}

		return nil
	}
}
