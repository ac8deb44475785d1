package http

import "github.com/gin-gonic/gin"

// Registrar collects named views for the route table.
type Registrar interface {
	View(name string, h gin.HandlerFunc)
}

// RegisterViews adds the sign-in, registration and password reset views.
func (h *Handler) RegisterViews(reg Registrar) {
	reg.View("login", h.LoginPage)
	reg.View("login.submit", h.Login)
	reg.View("register", h.RegisterPage)
	reg.View("register.submit", h.Register)
	reg.View("logout", h.Logout)
	reg.View("resetpassword", h.ResetPage)
	reg.View("resetpassword.submit", h.RequestReset)
	reg.View("newpassword", h.NewPasswordPage)
	reg.View("newpassword.submit", h.NewPassword)
}
