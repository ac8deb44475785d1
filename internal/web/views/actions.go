package views

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/okrtracker/okr-web/internal/apiclient"
	"github.com/okrtracker/okr-web/internal/okr/domain"
	"github.com/okrtracker/okr-web/internal/session"
)

func redirectNotice(c *gin.Context, path, notice string) {
	c.Redirect(http.StatusSeeOther, path+"?notice="+notice)
}

// CreateOkr handles the new-OKR form on the home page.
func (h *Handler) CreateOkr(c *gin.Context) {
	objective := strings.TrimSpace(c.PostForm("objective"))
	if objective == "" {
		redirectNotice(c, "/", "failed")
		return
	}

	sess := session.From(c)
	res := h.okrs.For(sess).CreateOkr(c.Request.Context(), domain.Okr{
		Objective: objective,
		Company:   company(sess),
		ParentID:  strings.TrimSpace(c.PostForm("parent")),
	})
	if !res.OK() {
		redirectNotice(c, "/", "failed")
		return
	}
	redirectNotice(c, "/edit-okr/"+apiclient.PathEscape(res.Value.ID), "created")
}

// UpdateOkr saves the edit form. The current record is fetched first so
// fields the form does not show survive the PUT.
func (h *Handler) UpdateOkr(c *gin.Context) {
	id := c.Param("id")
	editPath := "/edit-okr/" + apiclient.PathEscape(id)
	svc := h.okrs.For(session.From(c))

	current := svc.GetOkr(c.Request.Context(), id)
	switch {
	case errors.Is(current.Err, apiclient.ErrNotFound):
		redirectNotice(c, "/", "not-found")
		return
	case !current.OK():
		redirectNotice(c, editPath, "failed")
		return
	}

	okr := *current.Value
	okr.ID = id
	if objective := strings.TrimSpace(c.PostForm("objective")); objective != "" {
		okr.Objective = objective
	}
	okr.ParentID = strings.TrimSpace(c.PostForm("parent"))
	if okr.ParentID == id {
		okr.ParentID = ""
	}

	if res := svc.UpdateOkr(c.Request.Context(), okr); res.Failed() {
		redirectNotice(c, editPath, "failed")
		return
	}
	redirectNotice(c, editPath, "saved")
}

// DeleteOkr checks the OKR still exists, then deletes it.
func (h *Handler) DeleteOkr(c *gin.Context) {
	id := c.Param("id")
	svc := h.okrs.For(session.From(c))

	found := svc.GetOkrNo404(c.Request.Context(), id)
	switch {
	case found.Failed():
		redirectNotice(c, "/", "failed")
		return
	case found.Empty():
		redirectNotice(c, "/", "not-found")
		return
	}

	if res := svc.DeleteOkrRecord(c.Request.Context(), *found.Value); res.Failed() {
		redirectNotice(c, "/", "failed")
		return
	}
	redirectNotice(c, "/", "deleted")
}
