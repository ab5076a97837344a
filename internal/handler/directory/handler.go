package directory

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/handler"
	"github.com/jwalitptl/medrec/internal/policy"
	"github.com/jwalitptl/medrec/internal/service/directory"
	"github.com/jwalitptl/medrec/internal/session"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
)

const (
	pharmacyFormTemplate   = "pharmacies/pharmacy_form.html"
	specialityFormTemplate = "specialities/speciality_form.html"
)

type Handler struct {
	service *directory.Service
}

func NewHandler(service *directory.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Pharmacies(c *gin.Context) {
	onDuty, _ := strconv.ParseBool(c.Query("on_duty"))
	pharmacies, err := h.service.Pharmacies(c.Request.Context(), onDuty)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	handler.Render(c, http.StatusOK, "pharmacies/pharmacy_list.html", gin.H{
		"pharmacies": pharmacies,
		"on_duty":    onDuty,
	})
}

func (h *Handler) Specialities(c *gin.Context) {
	specialities, err := h.service.Specialities(c.Request.Context())
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	handler.Render(c, http.StatusOK, "specialities/speciality_list.html", gin.H{"specialities": specialities})
}

// adminOnly guards the creation pages; the services repeat the check on
// submit.
func adminOnly(c *gin.Context) bool {
	if policy.IsAdmin(handler.MustActor(c).User) {
		return true
	}
	handler.Fail(c, "", nil, apperrors.Forbidden(""))
	return false
}

func (h *Handler) NewPharmacyPage(c *gin.Context) {
	if !adminOnly(c) {
		return
	}
	handler.Render(c, http.StatusOK, pharmacyFormTemplate, gin.H{"form": nil})
}

func (h *Handler) CreatePharmacy(c *gin.Context) {
	if !adminOnly(c) {
		return
	}
	var f form.PharmacyForm
	if errs := form.Bind(c, &f); errs != nil {
		handler.RenderForm(c, pharmacyFormTemplate, gin.H{"form": &f}, errs)
		return
	}
	if _, err := h.service.CreatePharmacy(c.Request.Context(), handler.MustActor(c), &f); err != nil {
		handler.Fail(c, pharmacyFormTemplate, gin.H{"form": &f}, err)
		return
	}
	session.Flash(c, session.LevelSuccess, "Pharmacy added.")
	handler.Redirect(c, handler.RoutePharmacyList)
}

func (h *Handler) NewSpecialityPage(c *gin.Context) {
	if !adminOnly(c) {
		return
	}
	handler.Render(c, http.StatusOK, specialityFormTemplate, gin.H{"form": nil})
}

func (h *Handler) CreateSpeciality(c *gin.Context) {
	if !adminOnly(c) {
		return
	}
	var f form.SpecialityForm
	if errs := form.Bind(c, &f); errs != nil {
		handler.RenderForm(c, specialityFormTemplate, gin.H{"form": &f}, errs)
		return
	}
	if _, err := h.service.CreateSpeciality(c.Request.Context(), handler.MustActor(c), &f); err != nil {
		handler.Fail(c, specialityFormTemplate, gin.H{"form": &f}, err)
		return
	}
	session.Flash(c, session.LevelSuccess, "Speciality added.")
	handler.Redirect(c, handler.RouteSpecialityList)
}
