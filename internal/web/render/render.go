package render

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	ginrender "github.com/gin-gonic/gin/render"

	"github.com/okrtracker/okr-web/internal/logging"
	"github.com/okrtracker/okr-web/internal/session"
	"github.com/okrtracker/okr-web/internal/web/navbar"
)

//go:embed templates
var templateFS embed.FS

const layoutName = "layout"

// Page is the data every template receives.
type Page struct {
	Title     string
	Path      string
	Nav       navbar.Model
	Notice    string
	Error     string
	RequestID string
	Version   string
	Year      int
	Data      any
}

// Renderer holds one template set per page, each sharing the layout.
// It implements gin's render.HTMLRender so it can be installed on an engine.
type Renderer struct {
	pages   map[string]*template.Template
	version string
	now     func() time.Time
}

var funcs = template.FuncMap{
	"indent": func(depth int) string { return fmt.Sprintf("%.1frem", float64(depth)*1.5) },
	"lower":  strings.ToLower,
}

func New(version string) (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files)), version: version, now: time.Now}
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".html")
		t, err := template.New(layoutName).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", f)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Instance implements render.HTMLRender.
func (r *Renderer) Instance(name string, data any) ginrender.Render {
	t, ok := r.pages[name]
	if !ok {
		t = r.pages["error"]
		data = Page{
			Title:   http.StatusText(http.StatusInternalServerError),
			Version: r.version,
			Data:    ErrorData{Status: http.StatusInternalServerError, Message: "missing page " + name},
		}
	}
	return ginrender.HTML{Template: t, Name: layoutName, Data: data}
}

// Page renders a full page for the current visitor.
func (r *Renderer) Page(c *gin.Context, status int, name, title string, data any) {
	now := r.now()
	p := Page{
		Title:     title,
		Path:      c.Request.URL.Path,
		Nav:       navbar.Build(session.From(c), now, c.Request.URL.Path),
		Notice:    Notice(c.Query("notice")),
		RequestID: logging.RequestID(c.Request.Context()),
		Version:   r.version,
		Year:      now.Year(),
		Data:      data,
	}
	if msg, ok := c.Get(ctxFormError); ok {
		p.Error, _ = msg.(string)
	}
	c.Render(status, r.Instance(name, p))
}

// Error renders the error page. The cause is logged, not shown.
func (r *Renderer) Error(c *gin.Context, status int, err error) {
	if err != nil {
		logging.FromContext(c.Request.Context()).LogErrorf("render_error", "%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	r.Page(c, status, "error", http.StatusText(status), ErrorData{Status: status, Message: statusMessage(status)})
	c.Abort()
}

const ctxFormError = "render_form_error"

// WithFormError makes the next Page call show msg above the form.
func WithFormError(c *gin.Context, msg string) {
	c.Set(ctxFormError, msg)
}

type ErrorData struct {
	Status  int
	Message string
}

func statusMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "We could not find what you were looking for."
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "The OKR service is not answering right now. Try again in a moment."
	default:
		return "Something went wrong on our side."
	}
}

var notices = map[string]string{
	"created":          "OKR created.",
	"saved":            "Changes saved.",
	"deleted":          "OKR deleted.",
	"not-found":        "That OKR no longer exists.",
	"failed":           "The OKR service did not accept the change. Try again.",
	"reset-sent":       "If the address is registered, a reset link is on its way.",
	"password-updated": "Password updated. Sign in with your new password.",
	"signed-out":       "You have been signed out.",
}

// Notice maps a notice key from a redirect to its message. Unknown keys
// render nothing, so the query string cannot inject text.
func Notice(key string) string {
	return notices[key]
}
