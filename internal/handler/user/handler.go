package user

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medrec/internal/handler"
	"github.com/jwalitptl/medrec/internal/service/auth"
	"github.com/jwalitptl/medrec/internal/session"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

// Delete removes a user account together with its profile and everything
// that depends on it.
func (h *Handler) Delete(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), handler.MustActor(c), id); err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	session.Flash(c, session.LevelSuccess, "User deleted.")
	handler.Redirect(c, handler.RouteDashboard)
}
