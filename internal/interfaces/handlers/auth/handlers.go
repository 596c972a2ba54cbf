package auth

import (
	"errors"

	authsvc "bondbook-backend/internal/application/auth"
	"bondbook-backend/internal/application/investors"
	"bondbook-backend/internal/domain"
	"bondbook-backend/internal/middleware"
	"bondbook-backend/internal/pkg/request"
	"bondbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const userSessionsPrefix = "user_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service   *authsvc.Service
	Investors *investors.Service
	Rdb       *redis.Client
	Config    middleware.SessionConfig
}

func loginError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, authsvc.ErrEmailPasswordRequired):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		return response.Unauthorized(c, err.Error())
	case errors.Is(err, authsvc.ErrAccountInactive):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	default:
		return response.FromError(c, err)
	}
}

// startSession regenerates the session id, stores the principal, tracks the
// session under user_sessions:<user_id> and sets the cookie.
func (h *Handlers) startSession(c *fiber.Ctx, p *authsvc.Principal) error {
	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:     p.UserID,
		Name:       p.Name,
		Email:      p.Email,
		Role:       p.Role,
		InvestorID: p.InvestorID,
	})
	if err := h.Rdb.SAdd(c.UserContext(), userSessionsPrefix+p.UserID, sessionID).Err(); err != nil {
		return domain.StoreFailure("track session", err)
	}
	cookie := middleware.SessionCookie(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)
	return nil
}

func (h *Handlers) login(c *fiber.Ctx, fn func(*fiber.Ctx, authsvc.LoginInput) (*authsvc.Principal, error)) error {
	var in authsvc.LoginInput
	if len(c.Body()) == 0 || c.BodyParser(&in) != nil {
		return loginError(c, authsvc.ErrEmailPasswordRequired)
	}
	p, err := fn(c, in)
	if err != nil {
		return loginError(c, err)
	}
	if err := h.startSession(c, p); err != nil {
		return response.FromError(c, err)
	}
	log.Info().Str("user_id", p.UserID).Str("role", p.Role).Msg("login")
	return response.Success(c, "Login successful", fiber.Map{"user": p}, nil)
}

// POST /api/v1/auth/admin/login
func (h *Handlers) AdminLogin(c *fiber.Ctx) error {
	return h.login(c, func(c *fiber.Ctx, in authsvc.LoginInput) (*authsvc.Principal, error) {
		return h.Service.LoginAdmin(c.UserContext(), in)
	})
}

// POST /api/v1/auth/investor/login
func (h *Handlers) InvestorLogin(c *fiber.Ctx) error {
	return h.login(c, func(c *fiber.Ctx, in authsvc.LoginInput) (*authsvc.Principal, error) {
		return h.Service.LoginInvestor(c.UserContext(), in)
	})
}

// InvestorRegister creates an active investor account and signs it in.
func (h *Handlers) InvestorRegister(c *fiber.Ctx) error {
	var in investors.CreateInput
	if err := request.Bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	inv, err := h.Investors.Create(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	p := authsvc.InvestorPrincipal(domain.Investor{ID: inv.ID, Name: inv.Name, Email: inv.Email})
	if err := h.startSession(c, p); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Registration successful", fiber.Map{"user": p}, nil)
}

// GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		log.Debug().Bool("session_id_present", middleware.GetSessionID(c) != "").
			Msg("auth/me: not authenticated")
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// DELETE /api/v1/auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := c.UserContext()
	if u, ok := middleware.CurrentUser(c); ok && sessionID != "" {
		_ = h.Rdb.SRem(ctx, userSessionsPrefix+u.UserID, sessionID).Err()
	}
	if sessionID != "" {
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookie(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return response.Success(c, "Logged out successfully", nil, nil)
}
