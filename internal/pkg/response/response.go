package response

import (
	"errors"

	"bondbook-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// SuccessBody is the standardized success JSON shape.
type SuccessBody struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// ErrorBody is the standardized error JSON shape.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// ErrorDetail is the nested error object.
type ErrorDetail struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
}

const statusSuccess = "success"
const statusError = "error"

// InternalMessage is the only message clients see for store failures.
const InternalMessage = "Internal Server Error"

// Success sends a 200 OK response with the standard success format.
func Success(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return c.Status(fiber.StatusOK).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// SuccessCreated sends a 201 Created response with the standard success format.
func SuccessCreated(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return c.Status(fiber.StatusCreated).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// Error sends a response with the standard error format.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	return c.Status(statusCode).JSON(ErrorBody{
		Status: statusError,
		Error: ErrorDetail{
			Message:    message,
			StatusCode: statusCode,
			Details:    details,
		},
	})
}

// Unauthorized sends 401 with the same shape as other errors.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}

// StatusFor maps a domain error kind to an HTTP status code.
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindInvalidState:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// FromError renders a service error. Store failures and foreign errors are logged
// with detail and reach the client only as a generic 500.
func FromError(c *fiber.Ctx, err error) error {
	kind := domain.KindOf(err)
	code := StatusFor(kind)
	if code == fiber.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("kind", kind.String()).
			Msg("request failed")
		return Error(c, InternalMessage, code, nil)
	}
	msg := err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Message
	}
	return Error(c, msg, code, nil)
}
