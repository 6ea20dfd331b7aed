package serverutils

import (
	"errors"

	"grant-assistant-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// StatusError attaches an HTTP status to a service error
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string { return e.Err.Error() }
func (e *StatusError) Unwrap() error { return e.Err }

func WithStatus(code int, err error) error {
	if err == nil {
		return nil
	}
	return &StatusError{Code: code, Err: err}
}

// ErrorHandlerMiddleware turns returned errors into the JSON error envelope.
// Unknown errors are logged and reported as 500 without their text.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var verr *ValidationError
		var serr *StatusError
		var ferr *fiber.Error

		switch {
		case errors.As(err, &verr):
			body := ErrorResponse(fiber.StatusBadRequest, verr.Error())
			body.Fields = verr.Fields
			return ctx.Status(fiber.StatusBadRequest).JSON(body)
		case errors.As(err, &serr):
			return ctx.Status(serr.Code).JSON(ErrorResponse(serr.Code, serr.Error()))
		case errors.As(err, &ferr):
			return ctx.Status(ferr.Code).JSON(ErrorResponse(ferr.Code, ferr.Message))
		default:
			log.Error("HTTP", "Unhandled request error", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
			return ctx.Status(fiber.StatusInternalServerError).
				JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
		}
	}
}
