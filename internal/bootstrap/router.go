package bootstrap

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/okrtracker/okr-web/internal/api/http"
	"github.com/okrtracker/okr-web/internal/api/http/middleware"
	"github.com/okrtracker/okr-web/internal/apiclient"
	"github.com/okrtracker/okr-web/internal/auth"
	authhttp "github.com/okrtracker/okr-web/internal/auth/http"
	authmw "github.com/okrtracker/okr-web/internal/auth/middleware"
	authservice "github.com/okrtracker/okr-web/internal/auth/service"
	okrclient "github.com/okrtracker/okr-web/internal/okr/client"
	"github.com/okrtracker/okr-web/internal/session"
	"github.com/okrtracker/okr-web/internal/users"
	"github.com/okrtracker/okr-web/internal/web"
	"github.com/okrtracker/okr-web/internal/web/render"
	"github.com/okrtracker/okr-web/internal/web/routes"
	"github.com/okrtracker/okr-web/internal/web/views"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string

	Routes    *routes.Table
	Pages     *render.Renderer
	Transport *apiclient.Transport
	Sessions  *session.Manager
	// SessionRepo ends every session of a user after a password reset.
	SessionRepo authhttp.SessionRevoker

	Upstream    httpapi.UpstreamStatus
	SessionPing httpapi.Pinger
}

// BuildRouter wires the route table, its guards, resolvers and views into a
// gin engine.
func BuildRouter(dep RouterDeps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestIDMiddleware())
	if len(dep.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     dep.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodHead},
			AllowHeaders:     []string{"Origin", "Content-Type", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.HTMLRender = dep.Pages

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Upstream, dep.SessionPing, dep.Transport.Metrics())
	healthHandler.RegisterRoutes(r)

	// Everything below sees the session and the browser check.
	r.Use(middleware.UnsupportedBrowser(), dep.Sessions.Load())

	reg := web.NewRegistry()
	guard := authmw.NewGuard()
	for _, c := range []auth.Capability{auth.Public, auth.Authenticated, auth.Guest} {
		reg.Guard(string(c), guard.Require(c))
	}
	reg.OnFailure(dep.Pages.Error)

	views.New(okrclient.New(dep.Transport), users.New(dep.Transport), dep.Pages).Register(reg)
	authhttp.New(authservice.NewAuthService(dep.Transport), dep.Sessions, dep.SessionRepo, dep.Pages).RegisterViews(reg)

	if err := web.Mount(r, dep.Routes, reg); err != nil {
		return nil, err
	}

	r.NoRoute(func(c *gin.Context) {
		dep.Pages.Error(c, http.StatusNotFound, nil)
	})
	return r, nil
}
