package allergy

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/handler"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/service/allergy"
	"github.com/jwalitptl/medrec/internal/session"
)

const formTemplate = "allergies/allergy_form.html"

type Handler struct {
	service *allergy.Service
}

func NewHandler(service *allergy.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	patientID, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	allergies, err := h.service.List(c.Request.Context(), handler.MustActor(c), patientID)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	handler.Render(c, http.StatusOK, "allergies/allergy_list.html", gin.H{
		"allergies":  allergies,
		"patient_id": patientID,
	})
}

func formContext(f *form.AllergyForm, p *model.Patient) gin.H {
	return gin.H{
		"form":    f,
		"patient": p,
		"severities": []model.Severity{
			model.SeverityMild, model.SeverityModerate, model.SeveritySevere, model.SeverityLifeThreatening,
		},
	}
}

func (h *Handler) NewPage(c *gin.Context) {
	patientID, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	p, err := h.service.Patient(c.Request.Context(), handler.MustActor(c), patientID)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	handler.Render(c, http.StatusOK, formTemplate, formContext(nil, p))
}

func (h *Handler) Create(c *gin.Context) {
	patientID, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	actor := handler.MustActor(c)
	ctx := c.Request.Context()

	p, err := h.service.Patient(ctx, actor, patientID)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}

	var f form.AllergyForm
	if errs := form.Bind(c, &f); errs != nil {
		handler.RenderForm(c, formTemplate, formContext(&f, p), errs)
		return
	}
	if _, err := h.service.Create(ctx, actor, patientID, &f); err != nil {
		handler.Fail(c, formTemplate, formContext(&f, p), err)
		return
	}

	session.Flash(c, session.LevelSuccess, "Allergy recorded.")
	handler.Redirect(c, handler.RouteAllergyList, patientID)
}
