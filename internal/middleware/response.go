package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/logger"
)

const DefaultMessage = "Request Processed Successfully."

// Envelope is the shape of every JSON response.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
}

// Respond writes data wrapped in the envelope. An empty message falls back
// to DefaultMessage.
func Respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = DefaultMessage
	}
	return c.Status(status).JSON(Envelope{StatusCode: status, Message: message, Data: data})
}

func OK(c *fiber.Ctx, message string, data interface{}) error {
	return Respond(c, fiber.StatusOK, message, data)
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return Respond(c, fiber.StatusCreated, message, data)
}

// ErrorHandler renders errors in the response envelope. Unknown errors are
// logged and hidden behind a generic 500.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal server error"

		var fiberErr *fiber.Error
		if appErr, ok := apperrors.As(err); ok {
			status = appErr.Code
			message = appErr.Message
		} else if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				logger.String("method", c.Method()),
				logger.String("path", c.Path()),
				logger.Error(err),
			)
		}

		return c.Status(status).JSON(Envelope{StatusCode: status, Message: message, Data: nil})
	}
}
