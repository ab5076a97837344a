package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/handler"
	"github.com/jwalitptl/medrec/internal/model"
	authsvc "github.com/jwalitptl/medrec/internal/service/auth"
	"github.com/jwalitptl/medrec/internal/session"
)

const (
	registerTemplate = "registration/register.html"
	loginTemplate    = "registration/login.html"
)

type Handler struct {
	service  *authsvc.Service
	sessions *session.Manager
}

func NewHandler(service *authsvc.Service, sessions *session.Manager) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
	}
}

func registerContext(f *form.RegistrationForm) gin.H {
	if f != nil {
		f.Password1, f.Password2 = "", ""
	}
	return gin.H{
		"form":  f,
		"roles": []model.Role{model.RolePatient, model.RoleDoctor},
	}
}

func (h *Handler) RegisterPage(c *gin.Context) {
	if _, ok := handler.CurrentActor(c); ok {
		handler.Redirect(c, handler.RouteDashboard)
		return
	}
	handler.Render(c, http.StatusOK, registerTemplate, registerContext(nil))
}

func (h *Handler) Register(c *gin.Context) {
	var f form.RegistrationForm
	if errs := form.Bind(c, &f); errs != nil {
		handler.RenderForm(c, registerTemplate, registerContext(&f), errs)
		return
	}

	user, err := h.service.Register(c.Request.Context(), &f)
	if err != nil {
		handler.Fail(c, registerTemplate, registerContext(&f), err)
		return
	}
	if err := h.startSession(c, user, false); err != nil {
		handler.Fail(c, registerTemplate, registerContext(&f), err)
		return
	}

	session.Flash(c, session.LevelSuccess, "Registration successful!")
	handler.Redirect(c, handler.RouteDashboard)
}

func (h *Handler) LoginPage(c *gin.Context) {
	if _, ok := handler.CurrentActor(c); ok {
		handler.Redirect(c, handler.RouteDashboard)
		return
	}
	handler.Render(c, http.StatusOK, loginTemplate, gin.H{"next": c.Query("next")})
}

func (h *Handler) Login(c *gin.Context) {
	var f form.LoginForm
	next := c.Query("next")
	data := func() gin.H {
		return gin.H{"form": gin.H{"username": f.Username, "remember_me": f.RememberMe}, "next": next}
	}
	if errs := form.Bind(c, &f); errs != nil {
		handler.RenderForm(c, loginTemplate, data(), errs)
		return
	}

	user, err := h.service.Authenticate(c.Request.Context(), f.Username, f.Password)
	if err != nil {
		handler.Fail(c, loginTemplate, data(), err)
		return
	}
	if err := h.startSession(c, user, f.RememberMe); err != nil {
		handler.Fail(c, loginTemplate, data(), err)
		return
	}

	session.Flash(c, session.LevelSuccess, "Welcome "+user.Username+"!")
	if safeNext(next) {
		c.Redirect(http.StatusSeeOther, next)
		return
	}
	handler.Redirect(c, handler.RouteDashboard)
}

func (h *Handler) Logout(c *gin.Context) {
	if token := h.sessions.Token(c); token != "" {
		if err := h.sessions.Revoke(c.Request.Context(), token); err != nil {
			handler.Fail(c, "", nil, err)
			return
		}
	}
	h.sessions.ClearCookie(c)
	session.Flash(c, session.LevelInfo, "You have been logged out.")
	handler.Redirect(c, handler.RouteHome)
}

func (h *Handler) startSession(c *gin.Context, user *model.User, remember bool) error {
	if old := h.sessions.Token(c); old != "" {
		_ = h.sessions.Revoke(c.Request.Context(), old)
	}
	token, s, err := h.sessions.Issue(c.Request.Context(), user, remember)
	if err != nil {
		return err
	}
	h.sessions.WriteCookie(c, token, s)
	return nil
}

// safeNext only allows redirects to local paths.
func safeNext(next string) bool {
	return strings.HasPrefix(next, "/") &&
		!strings.HasPrefix(next, "//") &&
		!strings.HasPrefix(next, "/\\")
}
