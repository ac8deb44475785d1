package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/okrtracker/okr-web/internal/auth/domain"
	"github.com/okrtracker/okr-web/internal/session"
	"github.com/okrtracker/okr-web/internal/web/render"
)

// Authenticator is the part of service.AuthService the handlers use.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	Register(ctx context.Context, reg domain.Registration) (string, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, token, password string) error
}

// SessionStarter binds a token to the browser; *session.Manager implements it.
type SessionStarter interface {
	Start(c *gin.Context, token string) (*session.Session, error)
	End(c *gin.Context) error
}

// SessionRevoker ends every session of a user after a password change.
type SessionRevoker interface {
	DeleteAllForUser(ctx context.Context, email string) (int, error)
}

type Handler struct {
	authService Authenticator
	sessions    SessionStarter
	revoker     SessionRevoker
	pages       *render.Renderer
}

func New(authService Authenticator, sessions SessionStarter, revoker SessionRevoker, pages *render.Renderer) *Handler {
	return &Handler{
		authService: authService,
		sessions:    sessions,
		revoker:     revoker,
		pages:       pages,
	}
}

type loginPage struct {
	Email     string
	ReturnURL string
}

type registerPage struct {
	Email   string
	Name    string
	Company string
}

type resetPage struct {
	Email string
}

type newPasswordPage struct {
	Email string
	Token string
}
