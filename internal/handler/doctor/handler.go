package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/handler"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/service/directory"
	"github.com/jwalitptl/medrec/internal/service/doctor"
	"github.com/jwalitptl/medrec/internal/session"
)

const profileTemplate = "profiles/doctor_profile.html"

type Handler struct {
	service   *doctor.Service
	directory *directory.Service
}

func NewHandler(service *doctor.Service, directory *directory.Service) *Handler {
	return &Handler{
		service:   service,
		directory: directory,
	}
}

func (h *Handler) List(c *gin.Context) {
	doctors, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	handler.Render(c, http.StatusOK, "doctors/doctor_list.html", gin.H{"doctors": doctors})
}

func (h *Handler) Detail(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	d, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	handler.Render(c, http.StatusOK, "doctors/doctor_detail.html", gin.H{"doctor": d})
}

// Attribute links a patient to the doctor so the doctor can see their
// records.
func (h *Handler) Attribute(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	ctx := c.Request.Context()
	d, err := h.service.Get(ctx, id)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	data := gin.H{"doctor": d}

	var f form.AttributionForm
	if errs := form.Bind(c, &f); errs != nil {
		handler.RenderForm(c, "doctors/doctor_detail.html", data, errs)
		return
	}
	if err := h.service.Attribute(ctx, handler.MustActor(c), id, f.Patient); err != nil {
		handler.Fail(c, "doctors/doctor_detail.html", data, err)
		return
	}

	session.Flash(c, session.LevelSuccess, "Patient attributed.")
	handler.Redirect(c, handler.RouteDoctorDetail, id)
}

func (h *Handler) profileContext(c *gin.Context, f *form.DoctorForm, d *model.Doctor) gin.H {
	specialities, err := h.directory.Specialities(c.Request.Context())
	if err != nil {
		specialities = []*model.Speciality{}
	}
	return gin.H{"form": f, "doctor": d, "specialities": specialities}
}

func (h *Handler) ProfilePage(c *gin.Context) {
	d, err := h.service.Profile(c.Request.Context(), handler.MustActor(c))
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	handler.Render(c, http.StatusOK, profileTemplate, h.profileContext(c, nil, d))
}

func (h *Handler) SaveProfile(c *gin.Context) {
	actor := handler.MustActor(c)
	current, err := h.service.Profile(c.Request.Context(), actor)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}

	var f form.DoctorForm
	if errs := form.Bind(c, &f); errs != nil {
		handler.RenderForm(c, profileTemplate, h.profileContext(c, &f, current), errs)
		return
	}
	if _, err := h.service.SaveProfile(c.Request.Context(), actor, &f); err != nil {
		handler.Fail(c, profileTemplate, h.profileContext(c, &f, current), err)
		return
	}

	session.Flash(c, session.LevelSuccess, "Profile updated.")
	handler.Redirect(c, handler.RouteDashboard)
}
