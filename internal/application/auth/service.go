// Package auth checks admin and investor credentials and shapes the session user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bondbook-backend/internal/constants"
	"bondbook-backend/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Principal is the object stored in the session and returned by /me.
type Principal struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	InvestorID *uint  `json:"investor_id"`
}

type Service struct {
	DB *gorm.DB
}

func (in LoginInput) normalized() (string, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return "", "", ErrEmailPasswordRequired
	}
	return email, in.Password, nil
}

func checkPassword(hash, password string) error {
	if hash == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// LoginAdmin verifies an admin account by email.
func (s *Service) LoginAdmin(ctx context.Context, in LoginInput) (*Principal, error) {
	email, password, err := in.normalized()
	if err != nil {
		return nil, err
	}
	var a domain.Admin
	if err := s.DB.WithContext(ctx).Where("LOWER(email) = ?", email).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, domain.StoreFailure("find admin", err)
	}
	if err := checkPassword(a.PasswordHash, password); err != nil {
		return nil, err
	}
	return &Principal{
		UserID: fmt.Sprintf("admin:%d", a.ID),
		Name:   a.Username,
		Email:  a.Email,
		Role:   constants.Admin,
	}, nil
}

// LoginInvestor verifies an investor account by email. Suspended and
// deactivated investors are refused after the password check.
func (s *Service) LoginInvestor(ctx context.Context, in LoginInput) (*Principal, error) {
	email, password, err := in.normalized()
	if err != nil {
		return nil, err
	}
	var inv domain.Investor
	if err := s.DB.WithContext(ctx).Where("LOWER(email) = ?", email).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, domain.StoreFailure("find investor", err)
	}
	if err := checkPassword(inv.PasswordHash, password); err != nil {
		return nil, err
	}
	if inv.Status != domain.InvestorActive {
		return nil, ErrAccountInactive
	}
	return InvestorPrincipal(inv), nil
}

// InvestorPrincipal builds the session shape for an investor, used after registration too.
func InvestorPrincipal(inv domain.Investor) *Principal {
	id := inv.ID
	return &Principal{
		UserID:     fmt.Sprintf("investor:%d", inv.ID),
		Name:       inv.Name,
		Email:      inv.Email,
		Role:       constants.Investor,
		InvestorID: &id,
	}
}

// HashPassword returns the bcrypt hash stored for admins and investors.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyUser validates the session user and returns the shape for /me.
func VerifyUser(sessionUser interface{}) (*Principal, error) {
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	out := &Principal{
		UserID: userID,
		Name:   str(m["name"]),
		Email:  str(m["email"]),
		Role:   str(m["role"]),
	}
	if !constants.IsValidRole(out.Role) {
		return nil, ErrNotAuthenticated
	}
	switch v := m["investor_id"].(type) {
	case uint:
		out.InvestorID = &v
	case float64:
		id := uint(v)
		out.InvestorID = &id
	}
	if out.Role == constants.Investor && out.InvestorID == nil {
		return nil, ErrNotAuthenticated
	}
	return out, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
