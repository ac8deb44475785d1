package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okrtracker/okr-web/internal/apiclient"
	"github.com/okrtracker/okr-web/internal/auth/domain"
	"github.com/okrtracker/okr-web/internal/logging"
)

const basePath = "/api/user"

// AuthService talks to the API's user endpoints on behalf of the sign-in
// forms. Unlike the OKR client it returns errors, because the forms must
// tell "wrong password" apart from "try again later".
type AuthService struct {
	transport *apiclient.Transport
}

func NewAuthService(transport *apiclient.Transport) *AuthService {
	return &AuthService{transport: transport}
}

// Login exchanges credentials for a token.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return "", domain.ErrInvalidCredentials
	}

	resp, err := apiclient.Do[domain.TokenResponse](ctx, s.transport, apiclient.Request{
		Operation: "login",
		Method:    http.MethodPost,
		Path:      basePath + "/login",
		Body:      creds,
	})
	if errors.Is(err, apiclient.ErrUnauthorized) || errors.Is(err, apiclient.ErrNotFound) {
		return "", domain.ErrInvalidCredentials
	}
	if err != nil {
		logging.FromContext(ctx).LogError("login", err)
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: login returned no token", apiclient.ErrUpstream)
	}

	logging.FromContext(ctx).LogInfof("login", "user %s signed in", creds.Email)
	return resp.Token, nil
}

// Register creates an account and returns its first token.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (string, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Company = strings.TrimSpace(reg.Company)
	if reg.Email == "" || reg.Password == "" || reg.Company == "" {
		return "", fmt.Errorf("%w: email, company and password are required", domain.ErrRegistration)
	}

	resp, err := apiclient.Do[domain.TokenResponse](ctx, s.transport, apiclient.Request{
		Operation: "register",
		Method:    http.MethodPost,
		Path:      basePath + "/register",
		Body:      reg,
	})
	if errors.Is(err, apiclient.ErrUpstream) {
		return "", fmt.Errorf("%w: %v", domain.ErrRegistration, err)
	}
	if err != nil {
		logging.FromContext(ctx).LogError("register", err)
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: register returned no token", apiclient.ErrUpstream)
	}
	return resp.Token, nil
}

// RequestPasswordReset asks the API to email a reset link.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrResetRejected)
	}

	_, err := apiclient.Do[struct{}](ctx, s.transport, apiclient.Request{
		Operation: "resetpassword",
		Method:    http.MethodPost,
		Path:      basePath + "/resetpassword",
		Body:      map[string]string{"email": email},
	})
	if err != nil && !errors.Is(err, apiclient.ErrTransport) {
		return fmt.Errorf("%w: %v", domain.ErrResetRejected, err)
	}
	return err
}

// ResetPassword sets a new password using the emailed token.
func (s *AuthService) ResetPassword(ctx context.Context, email, token, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrResetRejected)
	}

	_, err := apiclient.Do[struct{}](ctx, s.transport, apiclient.Request{
		Operation: "newpassword",
		Method:    http.MethodPost,
		Path:      basePath + "/resetpassword/" + apiclient.PathEscape(email) + "/" + apiclient.PathEscape(token),
		Body:      map[string]string{"password": password},
	})
	if err != nil && !errors.Is(err, apiclient.ErrTransport) {
		return fmt.Errorf("%w: %v", domain.ErrResetRejected, err)
	}
	return err
}
