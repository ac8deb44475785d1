package auth

import (
	"net/url"
	"strings"
	"time"

	"github.com/okrtracker/okr-web/internal/session"
)

// Capability is what a route requires of the visitor.
type Capability string

const (
	Public        Capability = "public"
	Authenticated Capability = "authenticated"
	// Guest routes (login, register) are for visitors without a session.
	Guest Capability = "guest"
)

const LoginPath = "/login"

// Allows reports whether a visitor holding s may activate a route requiring c.
func Allows(c Capability, s *session.Session, now time.Time) bool {
	switch c {
	case Public:
		return true
	case Authenticated:
		return s.Valid(now)
	case Guest:
		return !s.Valid(now)
	default:
		return false
	}
}

// LoginRedirect builds the login URL that brings the visitor back to target.
func LoginRedirect(target string) string {
	target = SafeReturnURL(target)
	if target == "/" {
		return LoginPath
	}
	return LoginPath + "?returnUrl=" + url.QueryEscape(target)
}

// SafeReturnURL keeps redirects on this site. Anything that is not a local
// absolute path becomes "/".
func SafeReturnURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	if u.Path == LoginPath {
		return "/"
	}
	return u.RequestURI()
}
