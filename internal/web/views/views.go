package views

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	okrclient "github.com/okrtracker/okr-web/internal/okr/client"
	"github.com/okrtracker/okr-web/internal/okr/domain"
	"github.com/okrtracker/okr-web/internal/users"
	"github.com/okrtracker/okr-web/internal/web"
	"github.com/okrtracker/okr-web/internal/web/render"
)

// Handler owns the OKR pages: their resolvers, views and form actions.
type Handler struct {
	okrs  *okrclient.Client
	users *users.Client
	pages *render.Renderer
}

func New(okrs *okrclient.Client, users *users.Client, pages *render.Renderer) *Handler {
	return &Handler{okrs: okrs, users: users, pages: pages}
}

type HomeData struct {
	Company string
	Okrs    []domain.Okr
}

type TreeData struct {
	Nodes []*domain.OkrNode
}

type UsersData struct {
	Company string
	Users   []users.User
}

type EditData struct {
	Okr        domain.Okr
	KeyResults []domain.KeyResult
}

type SearchData struct {
	Query string
	Okrs  []domain.Okr
}

var staticPages = []struct{ name, title string }{
	{"about", "About"},
	{"privacy", "Privacy"},
	{"faq", "FAQ"},
	{"thefutureishere", "Unsupported browser"},
}

// Register adds every view and resolver to reg.
func (h *Handler) Register(reg *web.Registry) {
	reg.Resolver("companyOkrs", h.resolveCompanyOkrs)
	reg.Resolver("okrTree", h.resolveTree)
	reg.Resolver("companyUsers", h.resolveUsers)
	reg.Resolver("okrDetail", h.resolveDetail)
	reg.Resolver("search", h.resolveSearch)

	reg.View("home", show[HomeData](h, "home", "OKRs"))
	reg.View("okr-tree", show[TreeData](h, "okr-tree", "OKR tree"))
	reg.View("users", show[UsersData](h, "users", "Users"))
	reg.View("edit-okr", show[EditData](h, "edit-okr", "Edit OKR"))
	reg.View("search", show[SearchData](h, "search", "Search"))

	reg.View("okr.create", h.CreateOkr)
	reg.View("okr.update", h.UpdateOkr)
	reg.View("okr.delete", h.DeleteOkr)

	for _, p := range staticPages {
		reg.View(p.name, h.static(p.name, p.title))
	}
}

// show renders page with the data its resolver produced.
func show[T any](h *Handler, page, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ok := web.ResolvedAs[T](c)
		if !ok {
			h.pages.Error(c, http.StatusInternalServerError, errors.New("view "+page+" has no resolved data"))
			return
		}
		h.pages.Page(c, http.StatusOK, page, title, data)
	}
}

func (h *Handler) static(page, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.pages.Page(c, http.StatusOK, page, title, nil)
	}
}
