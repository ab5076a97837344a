package record

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/handler"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/service/record"
	"github.com/jwalitptl/medrec/internal/session"
)

const (
	listTemplate   = "medical_records/record_list.html"
	formTemplate   = "medical_records/record_form.html"
	detailTemplate = "medical_records/record_detail.html"
)

type Handler struct {
	service *record.Service
}

func NewHandler(service *record.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListAll(c *gin.Context) {
	records, err := h.service.List(c.Request.Context(), handler.MustActor(c), 0)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	handler.Render(c, http.StatusOK, listTemplate, gin.H{"records": records})
}

func (h *Handler) List(c *gin.Context) {
	patientID, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	records, err := h.service.List(c.Request.Context(), handler.MustActor(c), patientID)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	handler.Render(c, http.StatusOK, listTemplate, gin.H{"records": records, "patient_id": patientID})
}

func formContext(f *form.MedicalRecordForm, p *model.Patient) gin.H {
	return gin.H{
		"form":    f,
		"patient": p,
		"record_types": []model.RecordType{
			model.RecordTypeConsult, model.RecordTypeLab, model.RecordTypeImaging,
			model.RecordTypePrescription, model.RecordTypeOther,
		},
	}
}

func (h *Handler) NewPage(c *gin.Context) {
	patientID, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	p, err := h.service.CreateTarget(c.Request.Context(), handler.MustActor(c), patientID)
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

	p, err := h.service.CreateTarget(ctx, actor, patientID)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}

	var f form.MedicalRecordForm
	if errs := form.Bind(c, &f); errs != nil {
		handler.RenderForm(c, formTemplate, formContext(&f, p), errs)
		return
	}
	if _, err := h.service.Create(ctx, actor, patientID, &f); err != nil {
		handler.Fail(c, formTemplate, formContext(&f, p), err)
		return
	}

	session.Flash(c, session.LevelSuccess, "Medical record created.")
	handler.Redirect(c, handler.RouteRecordList, patientID)
}

func (h *Handler) Detail(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	detail, err := h.service.Get(c.Request.Context(), handler.MustActor(c), id)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	handler.Render(c, http.StatusOK, detailTemplate, gin.H{
		"record":       detail.Record,
		"prescription": detail.Prescription,
	})
}

// File streams a record's attachment after the same visibility check as
// the detail page.
func (h *Handler) File(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	f, name, err := h.service.Attachment(c.Request.Context(), handler.MustActor(c), id)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, f, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name),
	})
}
