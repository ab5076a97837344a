package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/handler"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/service/patient"
	"github.com/jwalitptl/medrec/internal/session"
)

const profileTemplate = "profiles/patient_profile.html"

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	patients, err := h.service.List(c.Request.Context(), handler.MustActor(c))
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	handler.Render(c, http.StatusOK, "patients/patient_list.html", gin.H{"patients": patients})
}

func profileContext(f *form.PatientForm, p *model.Patient) gin.H {
	return gin.H{
		"form":         f,
		"patient":      p,
		"blood_groups": model.BloodGroups,
	}
}

func (h *Handler) ProfilePage(c *gin.Context) {
	p, err := h.service.Provision(c.Request.Context(), handler.MustActor(c).User)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	handler.Render(c, http.StatusOK, profileTemplate, profileContext(nil, p))
}

func (h *Handler) SaveProfile(c *gin.Context) {
	actor := handler.MustActor(c)
	current, err := h.service.Provision(c.Request.Context(), actor.User)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}

	var f form.PatientForm
	if errs := form.Bind(c, &f); errs != nil {
		handler.RenderForm(c, profileTemplate, profileContext(&f, current), errs)
		return
	}
	if _, err := h.service.UpdateProfile(c.Request.Context(), actor, &f); err != nil {
		handler.Fail(c, profileTemplate, profileContext(&f, current), err)
		return
	}

	session.Flash(c, session.LevelSuccess, "Profile updated.")
	handler.Redirect(c, handler.RouteDashboard)
}
