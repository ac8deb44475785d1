package views

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/okrtracker/okr-web/internal/apiclient"
	"github.com/okrtracker/okr-web/internal/okr/domain"
	"github.com/okrtracker/okr-web/internal/session"
)

// companyOkrs lists the OKRs of the session's company. Tokens without a
// company claim see every OKR.
func (h *Handler) companyOkrs(ctx context.Context, sess *session.Session) apiclient.Result[[]domain.Okr] {
	svc := h.okrs.For(sess)
	if company(sess) == "" {
		return svc.GetOkrs(ctx)
	}
	return svc.GetCompanyOkrs(ctx, sess.Company)
}

func company(sess *session.Session) string {
	if sess == nil {
		return ""
	}
	return sess.Company
}

func (h *Handler) resolveCompanyOkrs(c *gin.Context) (any, error) {
	sess := session.From(c)
	res := h.companyOkrs(c.Request.Context(), sess)
	if res.Failed() {
		return nil, res.Err
	}
	return HomeData{Company: company(sess), Okrs: res.Value}, nil
}

func (h *Handler) resolveTree(c *gin.Context) (any, error) {
	res := h.companyOkrs(c.Request.Context(), session.From(c))
	if res.Failed() {
		return nil, res.Err
	}
	return TreeData{Nodes: domain.Flatten(domain.BuildTree(res.Value))}, nil
}

func (h *Handler) resolveUsers(c *gin.Context) (any, error) {
	sess := session.From(c)
	data := UsersData{Company: company(sess)}
	if data.Company == "" {
		return data, nil
	}

	res := h.users.For(sess).GetCompanyUsers(c.Request.Context(), sess.Company)
	if res.Failed() {
		return nil, res.Err
	}
	data.Users = res.Value
	return data, nil
}

// resolveDetail needs both the OKR and its key results; either failing
// fails the navigation. The two calls run concurrently.
func (h *Handler) resolveDetail(c *gin.Context) (any, error) {
	id := c.Param("id")
	svc := h.okrs.For(session.From(c))

	var (
		okr apiclient.Result[*domain.Okr]
		krs apiclient.Result[domain.KeyResultSet]
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		okr = svc.GetOkr(ctx, id)
		return okr.Err
	})
	g.Go(func() error {
		krs = svc.GetKeyResults(ctx, id)
		return krs.Err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return EditData{Okr: *okr.Value, KeyResults: krs.Value.Sorted()}, nil
}

// resolveSearch never fails the navigation: a failed search shows its
// fallback, the empty list.
func (h *Handler) resolveSearch(c *gin.Context) (any, error) {
	q := strings.TrimSpace(c.Query("q"))
	res := h.okrs.For(session.From(c)).SearchOkrs(c.Request.Context(), q)
	return SearchData{Query: q, Okrs: res.Value}, nil
}
