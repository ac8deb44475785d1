package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okrtracker/okr-web/internal/apiclient"
	"github.com/okrtracker/okr-web/internal/logging"
	"github.com/okrtracker/okr-web/internal/web/routes"
)

const ctxResolved = "web_resolved"

// Resolver pre-fetches the data a view needs. A non-nil error aborts the
// navigation before the view runs.
type Resolver func(c *gin.Context) (any, error)

// FailureFunc renders a navigation failure.
type FailureFunc func(c *gin.Context, status int, err error)

// Registry holds the named guards, resolvers and views a route table may
// refer to.
type Registry struct {
	views     map[string]gin.HandlerFunc
	resolvers map[string]Resolver
	guards    map[string]gin.HandlerFunc
	failure   FailureFunc
}

func NewRegistry() *Registry {
	return &Registry{
		views:     map[string]gin.HandlerFunc{},
		resolvers: map[string]Resolver{},
		guards:    map[string]gin.HandlerFunc{},
		failure: func(c *gin.Context, status int, _ error) {
			c.AbortWithStatus(status)
		},
	}
}

func (r *Registry) View(name string, h gin.HandlerFunc)  { r.views[name] = h }
func (r *Registry) Resolver(name string, fn Resolver)    { r.resolvers[name] = fn }
func (r *Registry) Guard(name string, h gin.HandlerFunc) { r.guards[name] = h }

// OnFailure sets how navigation failures are rendered.
func (r *Registry) OnFailure(fn FailureFunc) { r.failure = fn }

func (r *Registry) HasView(name string) bool {
	_, ok := r.views[name]
	return ok
}

func (r *Registry) HasResolver(name string) bool {
	_, ok := r.resolvers[name]
	return ok
}

func (r *Registry) HasGuard(name string) bool {
	_, ok := r.guards[name]
	return ok
}

// Mount validates table against the registry and adds every route to g.
func Mount(g gin.IRoutes, table *routes.Table, reg *Registry) error {
	if err := table.Validate(reg); err != nil {
		return fmt.Errorf("invalid route table: %w", err)
	}

	for _, rt := range table.Routes {
		chain := []gin.HandlerFunc{reg.guards[rt.Guard]}
		switch {
		case rt.Redirect != "":
			chain = append(chain, redirectTo(rt.Redirect))
		default:
			if rt.Resolver != "" {
				chain = append(chain, resolve(rt.Resolver, reg.resolvers[rt.Resolver], reg.failure))
			}
			chain = append(chain, reg.views[rt.View])
		}
		if err := handle(g, rt, chain); err != nil {
			return fmt.Errorf("invalid route table: %w", err)
		}
	}
	return nil
}

// handle adds one route. gin panics on paths whose wildcards conflict with
// an earlier route; that is reported as an error instead.
func handle(g gin.IRoutes, rt routes.Route, chain []gin.HandlerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("route (%s): %v", rt, r)
		}
	}()
	g.Handle(rt.Method, rt.Path, chain...)
	return nil
}

func resolve(name string, fn Resolver, failure FailureFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := fn(c)
		if err != nil {
			logging.FromContext(c.Request.Context()).LogErrorf("resolve", "resolver %s for %s: %v", name, c.Request.URL.Path, err)
			failure(c, failureStatus(err), err)
			c.Abort()
			return
		}
		c.Set(ctxResolved, data)
		c.Next()
	}
}

// failureStatus maps a resolver error to the status of the error page.
func failureStatus(err error) int {
	switch {
	case errors.Is(err, apiclient.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func redirectTo(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, target)
	}
}

// Resolved returns what the route's resolver produced.
func Resolved(c *gin.Context) any {
	v, _ := c.Get(ctxResolved)
	return v
}

// ResolvedAs returns the resolver's data as T.
func ResolvedAs[T any](c *gin.Context) (T, bool) {
	v, ok := Resolved(c).(T)
	return v, ok
}
