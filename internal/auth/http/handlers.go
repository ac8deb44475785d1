package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/okrtracker/okr-web/internal/auth"
	"github.com/okrtracker/okr-web/internal/auth/domain"
	"github.com/okrtracker/okr-web/internal/logging"
	"github.com/okrtracker/okr-web/internal/web/render"
)

const unavailable = "The sign-in service is not answering. Try again in a moment."

// LoginPage shows the login form.
func (h *Handler) LoginPage(c *gin.Context) {
	h.pages.Page(c, http.StatusOK, "login", "Login", loginPage{
		ReturnURL: auth.SafeReturnURL(c.Query("returnUrl")),
	})
}

// Login exchanges the submitted credentials for a session and sends the
// visitor back where the guard stopped them.
func (h *Handler) Login(c *gin.Context) {
	var creds domain.Credentials
	if err := c.ShouldBind(&creds); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	page := loginPage{Email: creds.Email, ReturnURL: auth.SafeReturnURL(c.PostForm("returnUrl"))}

	token, err := h.authService.Login(c.Request.Context(), creds)
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		render.WithFormError(c, "Invalid email or password.")
		h.pages.Page(c, http.StatusUnauthorized, "login", "Login", page)
		return
	case err != nil:
		render.WithFormError(c, unavailable)
		h.pages.Page(c, http.StatusBadGateway, "login", "Login", page)
		return
	}

	if _, err := h.sessions.Start(c, token); err != nil {
		logging.FromContext(c.Request.Context()).LogError("start_session", err)
		render.WithFormError(c, "Could not start your session. Try again.")
		h.pages.Page(c, http.StatusInternalServerError, "login", "Login", page)
		return
	}
	c.Redirect(http.StatusSeeOther, page.ReturnURL)
}

// RegisterPage shows the registration form.
func (h *Handler) RegisterPage(c *gin.Context) {
	h.pages.Page(c, http.StatusOK, "register", "Register", registerPage{})
}

// Register creates the account and signs the new user in.
func (h *Handler) Register(c *gin.Context) {
	var reg domain.Registration
	if err := c.ShouldBind(&reg); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	page := registerPage{Email: reg.Email, Name: reg.Name, Company: reg.Company}

	token, err := h.authService.Register(c.Request.Context(), reg)
	switch {
	case errors.Is(err, domain.ErrRegistration):
		render.WithFormError(c, "Registration failed. Check your details; the email may already be in use.")
		h.pages.Page(c, http.StatusUnprocessableEntity, "register", "Register", page)
		return
	case err != nil:
		render.WithFormError(c, unavailable)
		h.pages.Page(c, http.StatusBadGateway, "register", "Register", page)
		return
	}

	if _, err := h.sessions.Start(c, token); err != nil {
		logging.FromContext(c.Request.Context()).LogError("start_session", err)
		c.Redirect(http.StatusSeeOther, auth.LoginPath)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout ends the session. It always lands on the login page.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.End(c); err != nil {
		logging.FromContext(c.Request.Context()).LogError("end_session", err)
	}
	c.Redirect(http.StatusSeeOther, auth.LoginPath+"?notice=signed-out")
}

// ResetPage shows the "forgot password" form.
func (h *Handler) ResetPage(c *gin.Context) {
	h.pages.Page(c, http.StatusOK, "resetpassword", "Reset password", resetPage{})
}

// RequestReset asks the API to mail a reset link. The answer is the same
// whether or not the address is known.
func (h *Handler) RequestReset(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	err := h.authService.RequestPasswordReset(c.Request.Context(), email)
	switch {
	case err == nil, errors.Is(err, domain.ErrResetRejected) && email != "":
		c.Redirect(http.StatusSeeOther, auth.LoginPath+"?notice=reset-sent")
	case errors.Is(err, domain.ErrResetRejected):
		render.WithFormError(c, "Enter the email address of your account.")
		h.pages.Page(c, http.StatusUnprocessableEntity, "resetpassword", "Reset password", resetPage{Email: email})
	default:
		render.WithFormError(c, unavailable)
		h.pages.Page(c, http.StatusBadGateway, "resetpassword", "Reset password", resetPage{Email: email})
	}
}

// NewPasswordPage is the landing page of the emailed reset link.
func (h *Handler) NewPasswordPage(c *gin.Context) {
	h.pages.Page(c, http.StatusOK, "newpassword", "New password", newPasswordPage{
		Email: c.Param("email"),
		Token: c.Param("token"),
	})
}

// NewPassword sets the password and signs the user out everywhere.
func (h *Handler) NewPassword(c *gin.Context) {
	email, token := c.Param("email"), c.Param("token")
	page := newPasswordPage{Email: email, Token: token}

	err := h.authService.ResetPassword(c.Request.Context(), email, token, c.PostForm("password"))
	switch {
	case errors.Is(err, domain.ErrResetRejected):
		render.WithFormError(c, "This reset link is invalid or has expired.")
		h.pages.Page(c, http.StatusUnprocessableEntity, "newpassword", "New password", page)
		return
	case err != nil:
		render.WithFormError(c, unavailable)
		h.pages.Page(c, http.StatusBadGateway, "newpassword", "New password", page)
		return
	}

	n, err := h.revoker.DeleteAllForUser(c.Request.Context(), email)
	if err != nil {
		logging.FromContext(c.Request.Context()).LogError("revoke_sessions", err)
	} else if n > 0 {
		logging.FromContext(c.Request.Context()).LogInfof("revoke_sessions", "ended %d sessions of %s", n, email)
	}
	if err := h.sessions.End(c); err != nil {
		logging.FromContext(c.Request.Context()).LogError("end_session", err)
	}
	c.Redirect(http.StatusSeeOther, auth.LoginPath+"?notice=password-updated")
}
