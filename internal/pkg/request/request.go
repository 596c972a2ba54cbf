// Package request holds the small parsing helpers shared by the HTTP handlers.
package request

import (
	"strconv"
	"strings"
	"time"

	"bondbook-backend/internal/domain"
	"bondbook-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// Bind parses the JSON body into v and runs its validate tags.
func Bind(c *fiber.Ctx, v interface{}) error {
	if len(c.Body()) == 0 {
		return domain.Validation("Request body is required.")
	}
	if err := c.BodyParser(v); err != nil {
		return domain.Validation("Invalid request body.")
	}
	return validation.Struct(v)
}

// ParamID reads a positive integer route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.Validation("Invalid %s.", name)
	}
	return uint(id), nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339. An empty string yields the zero time.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, domain.Validation("%s must be a date (YYYY-MM-DD).", field)
}

// OptionalDate is ParseDate for nullable fields.
func OptionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseDate(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
