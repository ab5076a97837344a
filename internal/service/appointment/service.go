package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/policy"
	"github.com/jwalitptl/medrec/internal/repository"
	"github.com/jwalitptl/medrec/internal/service/audit"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
)

const msgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	auditor  *audit.Logger
	now      func() time.Time
}

func NewService(repo repository.AppointmentRepository, patients repository.PatientRepository,
	doctors repository.DoctorRepository, auditor *audit.Logger) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		doctors:  doctors,
		auditor:  auditor,
		now:      time.Now,
	}
}

// Create books an appointment. A patient always books for their own
// profile; doctors and admins name the patient on the form.
func (s *Service) Create(ctx context.Context, actor policy.Actor, f *form.AppointmentForm) (*model.Appointment, error) {
	if actor.User == nil {
		return nil, apperrors.Forbidden("")
	}
	appt, err := f.ToModel()
	if err != nil {
		return nil, apperrors.FieldError("date_time", "Enter a valid date/time.")
	}

	switch actor.User.Role {
	case model.RolePatient:
		if actor.Patient == nil {
			return nil, apperrors.Forbidden("a patient profile is required to book appointments")
		}
		appt.PatientID = actor.Patient.ID
	case model.RoleDoctor, model.RoleAdmin:
		if appt.PatientID == 0 {
			return nil, apperrors.FieldError("patient", "This field is required.")
		}
		if _, err := s.patients.Get(ctx, appt.PatientID); err != nil {
			if errors.Is(err, apperrors.NotFoundErr) {
				return nil, apperrors.FieldError("patient", msgInvalidChoice)
			}
			return nil, err
		}
	default:
		return nil, apperrors.Forbidden("")
	}

	doctor, err := s.doctors.Get(ctx, appt.DoctorID)
	if err != nil {
		if errors.Is(err, apperrors.NotFoundErr) {
			return nil, apperrors.FieldError("doctor", msgInvalidChoice)
		}
		return nil, err
	}
	if err := s.validateSlot(ctx, doctor, appt.DateTime); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	s.auditor.Log(ctx, actor.User.ID, model.AuditActionCreate, model.AuditEntityAppointment, appt.ID, nil)
	return s.repo.Get(ctx, appt.ID)
}

// validateSlot rejects past times, times outside the doctor's published
// availability and slots the doctor already has booked.
func (s *Service) validateSlot(ctx context.Context, doctor *model.Doctor, at time.Time) error {
	if at.Before(s.now()) {
		return apperrors.FieldError("date_time", "Appointment cannot be scheduled in the past.")
	}
	if len(doctor.Availability) > 0 && !offers(doctor.Availability, at) {
		return apperrors.FieldError("date_time", "The doctor is not available at this time.")
	}

	booked, err := s.repo.List(ctx, &model.AppointmentFilters{DoctorID: doctor.ID, From: at})
	if err != nil {
		return err
	}
	for _, b := range booked {
		if !b.DateTime.Equal(at) {
			break
		}
		if b.Status != model.AppointmentStatusCancelled {
			return apperrors.FieldError("date_time", "This time slot is already booked.")
		}
	}
	return nil
}

func offers(a model.Availability, at time.Time) bool {
	slot := at.Format("15:04")
	for day, slots := range a {
		if !strings.EqualFold(day, at.Weekday().String()) {
			continue
		}
		for _, s := range slots {
			if s == slot {
				return true
			}
		}
	}
	return false
}

func (s *Service) filters(actor policy.Actor) (*model.AppointmentFilters, bool) {
	if actor.User == nil {
		return nil, false
	}
	switch actor.User.Role {
	case model.RolePatient:
		if actor.Patient == nil {
			return nil, false
		}
		return &model.AppointmentFilters{PatientID: actor.Patient.ID}, true
	case model.RoleDoctor:
		if actor.Doctor == nil {
			return nil, false
		}
		return &model.AppointmentFilters{DoctorID: actor.Doctor.ID}, true
	case model.RoleAdmin:
		return &model.AppointmentFilters{}, true
	}
	return nil, false
}

// List returns the actor's appointments in date order; admins see all.
func (s *Service) List(ctx context.Context, actor policy.Actor) ([]*model.Appointment, error) {
	f, ok := s.filters(actor)
	if !ok {
		return []*model.Appointment{}, nil
	}
	return s.repo.List(ctx, f)
}

// Upcoming returns at most limit of the actor's appointments from now on.
func (s *Service) Upcoming(ctx context.Context, actor policy.Actor, limit int) ([]*model.Appointment, error) {
	f, ok := s.filters(actor)
	if !ok {
		return []*model.Appointment{}, nil
	}
	f.From = s.now()
	f.Limit = limit
	return s.repo.List(ctx, f)
}

// UpdateStatus moves an appointment through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, actor policy.Actor, id int64, f *form.AppointmentStatusForm) (*model.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.NotFoundErr) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, err
	}

	next := model.AppointmentStatus(f.Status)
	if !policy.CanManageAppointment(actor, appt, next) {
		return nil, apperrors.Forbidden("")
	}
	if !appt.Status.CanTransition(next) {
		return nil, apperrors.FieldError("status",
			"Cannot change status from "+string(appt.Status)+" to "+string(next)+".")
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	s.auditor.Log(ctx, actor.User.ID, model.AuditActionUpdate, model.AuditEntityAppointment, id,
		&audit.LogOptions{Metadata: map[string]model.AppointmentStatus{"from": appt.Status, "to": next}})
	appt.Status = next
	return appt, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
