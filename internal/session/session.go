package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTokenExpired    = errors.New("token already expired")
	ErrEmptyToken      = errors.New("token is empty")
)

// Session is the server-side record of a signed-in browser. It is passed
// explicitly to the guard, the navbar and the API clients.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Company   string    `json:"company,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BearerToken implements apiclient.TokenSource. Nil sessions are anonymous.
func (s *Session) BearerToken() string {
	if s == nil {
		return ""
	}
	return s.Token
}

// Valid reports whether the session still holds a usable token at now.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// DisplayName prefers the user's name over their email.
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.Name != "" {
		return s.Name
	}
	return s.Email
}

// tokenClaims is the payload the OKR API puts in its tokens.
type tokenClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// FromToken builds a session for token. The signature is not verified; that
// is the API's job. Profile fields and expiry are read from the claims when
// the token is a JWT. Opaque tokens are accepted as-is. The session never
// outlives maxTTL.
func FromToken(token string, now time.Time, maxTTL time.Duration) (*Session, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}

	s := &Session{
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(maxTTL),
	}

	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return s, nil
	}

	s.Email = claims.Email
	s.Name = claims.Name
	s.Company = claims.Company
	s.Role = claims.Role

	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		if !now.Before(exp) {
			return nil, ErrTokenExpired
		}
		if exp.Before(s.ExpiresAt) {
			s.ExpiresAt = exp
		}
	}
	return s, nil
}
