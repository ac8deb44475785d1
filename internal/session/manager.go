package session

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okrtracker/okr-web/internal/logging"
)

// CtxSession is the gin context key holding the current *Session.
const CtxSession = "okr_session"

// Store is what the Manager needs from persistence.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type Options struct {
	CookieName string
	MaxTTL     time.Duration
	Secure     bool
}

// Manager binds sessions to browser cookies.
type Manager struct {
	store Store
	opts  Options
	now   func() time.Time
}

func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "okr_session"
	}
	if opts.MaxTTL <= 0 {
		opts.MaxTTL = 24 * time.Hour
	}
	return &Manager{store: store, opts: opts, now: time.Now}
}

// Start creates a session for token and sets the cookie.
func (m *Manager) Start(c *gin.Context, token string) (*Session, error) {
	s, err := FromToken(token, m.now(), m.opts.MaxTTL)
	if err != nil {
		return nil, err
	}
	if err := m.store.Create(c.Request.Context(), s); err != nil {
		return nil, err
	}

	maxAge := int(s.ExpiresAt.Sub(m.now()).Seconds())
	m.setCookie(c, s.ID, maxAge)
	c.Set(CtxSession, s)
	return s, nil
}

// End deletes the current session, if any, and clears the cookie.
func (m *Manager) End(c *gin.Context) error {
	defer m.setCookie(c, "", -1)

	id, err := c.Cookie(m.opts.CookieName)
	if err != nil || id == "" {
		return nil
	}
	c.Set(CtxSession, (*Session)(nil))
	return m.store.Delete(c.Request.Context(), id)
}

// Load resolves the session cookie into the gin context. Guests pass
// through with no session; stale cookies are cleared.
func (m *Manager) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(m.opts.CookieName)
		if err != nil || id == "" {
			c.Next()
			return
		}

		s, err := m.store.Get(c.Request.Context(), id)
		switch {
		case err == ErrSessionNotFound:
			m.setCookie(c, "", -1)
		case err != nil:
			logging.FromContext(c.Request.Context()).LogError("load_session", err)
		case !s.Valid(m.now()):
			_ = m.store.Delete(c.Request.Context(), id)
			m.setCookie(c, "", -1)
		default:
			c.Set(CtxSession, s)
		}
		c.Next()
	}
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.opts.CookieName, value, maxAge, "/", "", m.opts.Secure, true)
}

// From returns the session loaded for this request, or nil for guests.
func From(c *gin.Context) *Session {
	v, ok := c.Get(CtxSession)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}
