package prescription

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/handler"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/service/prescription"
	"github.com/jwalitptl/medrec/internal/session"
)

const formTemplate = "prescriptions/prescription_form.html"

type Handler struct {
	service *prescription.Service
}

func NewHandler(service *prescription.Service) *Handler {
	return &Handler{service: service}
}

func formContext(f *form.PrescriptionForm, rec *model.MedicalRecord) gin.H {
	return gin.H{"form": f, "record": rec}
}

func (h *Handler) NewPage(c *gin.Context) {
	recordID, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	rec, err := h.service.Target(c.Request.Context(), handler.MustActor(c), recordID)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	handler.Render(c, http.StatusOK, formTemplate, formContext(nil, rec))
}

func (h *Handler) Create(c *gin.Context) {
	recordID, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	actor := handler.MustActor(c)
	ctx := c.Request.Context()

	rec, err := h.service.Target(ctx, actor, recordID)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}

	var f form.PrescriptionForm
	if errs := form.Bind(c, &f); errs != nil {
		handler.RenderForm(c, formTemplate, formContext(&f, rec), errs)
		return
	}
	if _, err := h.service.Create(ctx, actor, recordID, &f); err != nil {
		handler.Fail(c, formTemplate, formContext(&f, rec), err)
		return
	}

	session.Flash(c, session.LevelSuccess, "Prescription created.")
	handler.Redirect(c, handler.RouteRecordDetail, recordID)
}
