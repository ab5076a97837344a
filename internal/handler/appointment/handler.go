package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/handler"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/policy"
	"github.com/jwalitptl/medrec/internal/service/appointment"
	"github.com/jwalitptl/medrec/internal/service/doctor"
	"github.com/jwalitptl/medrec/internal/service/patient"
	"github.com/jwalitptl/medrec/internal/session"
)

const (
	listTemplate = "appointments/appointment_list.html"
	formTemplate = "appointments/appointment_form.html"
)

type Handler struct {
	service  *appointment.Service
	doctors  *doctor.Service
	patients *patient.Service
}

func NewHandler(service *appointment.Service, doctors *doctor.Service, patients *patient.Service) *Handler {
	return &Handler{
		service:  service,
		doctors:  doctors,
		patients: patients,
	}
}

func (h *Handler) List(c *gin.Context) {
	appointments, err := h.service.List(c.Request.Context(), handler.MustActor(c))
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	handler.Render(c, http.StatusOK, listTemplate, gin.H{"appointments": appointments})
}

// formContext lists the choices offered on the booking form. Patients do
// not pick a patient; their own profile is used.
func (h *Handler) formContext(c *gin.Context, actor policy.Actor, f *form.AppointmentForm) (gin.H, error) {
	ctx := c.Request.Context()
	doctors, err := h.doctors.List(ctx)
	if err != nil {
		return nil, err
	}
	data := gin.H{
		"form":              f,
		"doctors":           doctors,
		"appointment_types": []model.AppointmentType{model.AppointmentTypeInPerson, model.AppointmentTypeRemote},
	}
	if actor.User.Role != model.RolePatient {
		patients, err := h.patients.List(ctx, actor)
		if err != nil {
			return nil, err
		}
		data["patients"] = patients
	}
	return data, nil
}

func (h *Handler) NewPage(c *gin.Context) {
	actor := handler.MustActor(c)
	data, err := h.formContext(c, actor, nil)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	handler.Render(c, http.StatusOK, formTemplate, data)
}

func (h *Handler) Create(c *gin.Context) {
	actor := handler.MustActor(c)
	var f form.AppointmentForm
	errs := form.Bind(c, &f)

	data, err := h.formContext(c, actor, &f)
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	if errs != nil {
		handler.RenderForm(c, formTemplate, data, errs)
		return
	}

	if _, err := h.service.Create(c.Request.Context(), actor, &f); err != nil {
		handler.Fail(c, formTemplate, data, err)
		return
	}
	session.Flash(c, session.LevelSuccess, "Appointment booked.")
	handler.Redirect(c, handler.RouteAppointmentList)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, "", nil, err)
		return
	}
	actor := handler.MustActor(c)
	ctx := c.Request.Context()

	listContext := func() gin.H {
		appointments, err := h.service.List(ctx, actor)
		if err != nil {
			appointments = []*model.Appointment{}
		}
		return gin.H{"appointments": appointments}
	}

	var f form.AppointmentStatusForm
	if errs := form.Bind(c, &f); errs != nil {
		handler.RenderForm(c, listTemplate, listContext(), errs)
		return
	}
	if _, err := h.service.UpdateStatus(ctx, actor, id, &f); err != nil {
		handler.Fail(c, listTemplate, listContext(), err)
		return
	}

	session.Flash(c, session.LevelSuccess, "Appointment status updated.")
	handler.Redirect(c, handler.RouteAppointmentList)
}
