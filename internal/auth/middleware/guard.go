package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okrtracker/okr-web/internal/auth"
	"github.com/okrtracker/okr-web/internal/logging"
	"github.com/okrtracker/okr-web/internal/session"
)

// Guard enforces a route capability against the session loaded by
// session.Manager.Load. Denied visitors are redirected, never rendered.
type Guard struct {
	now func() time.Time
}

func NewGuard() *Guard {
	return &Guard{now: time.Now}
}

// Require returns the middleware for capability c.
func (g *Guard) Require(c auth.Capability) gin.HandlerFunc {
	if c == auth.Public {
		return func(ctx *gin.Context) { ctx.Next() }
	}

	return func(ctx *gin.Context) {
		sess := session.From(ctx)
		if auth.Allows(c, sess, g.now()) {
			ctx.Next()
			return
		}

		var target string
		switch c {
		case auth.Authenticated:
			target = auth.LoginRedirect(returnTarget(ctx))
		default:
			target = "/"
		}

		logging.FromContext(ctx.Request.Context()).LogInfof("guard",
			"%s %s denied (%s), redirecting to %s", ctx.Request.Method, ctx.Request.URL.Path, c, target)
		ctx.Redirect(redirectStatus(ctx.Request.Method), target)
		ctx.Abort()
	}
}

// returnTarget is the page to come back to after login. Form posts return
// to the page that submitted them.
func returnTarget(c *gin.Context) string {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		return c.Request.URL.RequestURI()
	}
	ref := c.GetHeader("Referer")
	if i := strings.Index(ref, "://"); i >= 0 {
		rest := ref[i+3:]
		if host, path, ok := strings.Cut(rest, "/"); ok && host == c.Request.Host {
			return "/" + path
		}
	}
	return "/"
}

func redirectStatus(method string) int {
	if method == http.MethodGet || method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
