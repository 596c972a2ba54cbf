package auth

import "errors"

var (
	ErrEmailPasswordRequired = errors.New("Email and password are required.")
	ErrInvalidCredentials    = errors.New("Invalid credentials.")
	ErrAccountInactive       = errors.New("Account is not active.")
	ErrNotAuthenticated      = errors.New("Not authenticated")
)
