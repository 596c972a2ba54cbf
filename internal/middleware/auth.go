package middleware

import (
	"bondbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c); !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the raw session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// CurrentUser decodes the session user. Values loaded back from Redis arrive as
// JSON numbers, so investor_id is accepted as float64 as well as uint.
func CurrentUser(c *fiber.Ctx) (SessionUser, bool) {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return SessionUser{}, false
	}
	u := SessionUser{
		UserID: str(m["user_id"]),
		Name:   str(m["name"]),
		Email:  str(m["email"]),
		Role:   str(m["role"]),
	}
	if u.UserID == "" {
		return SessionUser{}, false
	}
	switch v := m["investor_id"].(type) {
	case uint:
		u.InvestorID = &v
	case float64:
		id := uint(v)
		u.InvestorID = &id
	case *uint:
		u.InvestorID = v
	}
	return u, true
}

// InvestorID returns the investor bound to the session, if any.
func InvestorID(c *fiber.Ctx) (uint, bool) {
	u, ok := CurrentUser(c)
	if !ok || u.InvestorID == nil {
		return 0, false
	}
	return *u.InvestorID, true
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
