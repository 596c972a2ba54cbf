package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SessionConfig controls the session cookie.
type SessionConfig struct {
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	SessionCookieName  = "bondbook.sid"
	SessionRedisPrefix = "session:"
	sessionMaxAge      = 24 * time.Hour
)

// SessionUser is the shape stored in the session under "user".
// InvestorID is set only for investor logins.
type SessionUser struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	InvestorID *uint  `json:"investor_id"`
}

// Session loads the session from Redis before the handler and saves it after.
// Cookie values may be "s:id" or "s:id.signature"; the id is the part before the dot.
func Session(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookieName)
		if strings.HasPrefix(sessionID, "s:") {
			sessionID = strings.SplitN(sessionID[2:], ".", 2)[0]
		}

		var data map[string]interface{}
		if sessionID != "" {
			b, err := rdb.Get(c.UserContext(), SessionRedisPrefix+sessionID).Bytes()
			if err == nil {
				_ = json.Unmarshal(b, &data)
			} else if err != redis.Nil {
				log.Warn().Err(err).Msg("session load failed")
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		c.Locals("session_data", data)
		c.Locals(userLocal, data["user"])
		c.Locals("session_id", sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		sid, _ := c.Locals("session_id").(string)
		updated, _ := c.Locals("session_data").(map[string]interface{})
		if sid != "" && updated != nil && updated["user"] != nil {
			b, _ := json.Marshal(updated)
			if err := rdb.Set(c.UserContext(), SessionRedisPrefix+sid, b, sessionMaxAge).Err(); err != nil {
				log.Warn().Err(err).Msg("session save failed")
			}
		}
		return nil
	}
}

// GetSessionID returns the current session ID from context.
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals("session_id").(string)
	return sid
}

// SetSessionUser stores user in the session; call RegenerateSessionID first.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	data, _ := c.Locals("session_data").(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
	}
	m := map[string]interface{}{
		"user_id": user.UserID,
		"name":    user.Name,
		"email":   user.Email,
		"role":    user.Role,
	}
	if user.InvestorID != nil {
		m["investor_id"] = *user.InvestorID
	}
	data["user"] = m
	c.Locals("session_data", data)
	c.Locals(userLocal, m)
}

// RegenerateSessionID creates a new session ID and sets it in Locals.
func RegenerateSessionID(c *fiber.Ctx) string {
	newID := uuid.New().String()
	c.Locals("session_id", newID)
	return newID
}

// DestroySession clears user and session data from Locals; caller clears cookie and Redis.
func DestroySession(c *fiber.Ctx) {
	c.Locals("session_data", make(map[string]interface{}))
	c.Locals(userLocal, nil)
	c.Locals("session_id", "")
}

// SessionCookie returns the cookie options used for SetCookie/ClearCookie.
func SessionCookie(cfg SessionConfig) fiber.Cookie {
	sameSite := "Lax"
	if cfg.AllowCrossSiteDev {
		sameSite = "None"
	}
	return fiber.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.IsProduction && cfg.AllowCrossSiteDev,
		SameSite: sameSite,
	}
}
