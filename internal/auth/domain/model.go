package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRegistration       = errors.New("registration rejected")
	ErrResetRejected      = errors.New("password reset rejected")
)

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Registration represents data needed to create a new user
type Registration struct {
	Email    string `json:"email" form:"email"`
	Name     string `json:"name" form:"name"`
	Company  string `json:"company" form:"company"`
	Password string `json:"password" form:"password"`
}

// TokenResponse is what the API returns from login and register.
type TokenResponse struct {
	Token string `json:"token"`
}
