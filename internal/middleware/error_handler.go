package middleware

import (
	"errors"

	"bondbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the global Fiber error handler. Domain errors map through
// response.FromError; fiber errors keep their code and message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return response.Error(c, fe.Message, fe.Code, nil)
	}
	return response.FromError(c, err)
}
