package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medrec/internal/handler"
	"github.com/jwalitptl/medrec/internal/service/dashboard"
	"github.com/jwalitptl/medrec/internal/session"
)

type Handler struct {
	service *dashboard.Service
}

func NewHandler(service *dashboard.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Home(c *gin.Context) {
	handler.Render(c, http.StatusOK, "home.html", nil)
}

// Dashboard always renders; aggregation problems become messages.
func (h *Handler) Dashboard(c *gin.Context) {
	d := h.service.Build(c.Request.Context(), handler.MustActor(c))
	for _, w := range d.Warnings {
		session.Flash(c, session.LevelWarning, w)
	}
	for _, e := range d.Errors {
		session.Flash(c, session.LevelError, e)
	}
	handler.Render(c, http.StatusOK, "dashboard.html", gin.H{"dashboard": d})
}
