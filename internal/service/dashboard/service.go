package dashboard

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/policy"
)

const (
	MsgIncompleteDoctorProfile = "Your doctor profile is not fully set up."
	MsgLoadFailed              = "An error occurred while loading your dashboard."
)

type Appointments interface {
	Upcoming(ctx context.Context, actor policy.Actor, limit int) ([]*model.Appointment, error)
	Count(ctx context.Context) (int64, error)
}

type Patients interface {
	Provision(ctx context.Context, user *model.User) (*model.Patient, error)
	Count(ctx context.Context) (int64, error)
}

type Doctors interface {
	Count(ctx context.Context) (int64, error)
}

type Service struct {
	appointments Appointments
	patients     Patients
	doctors      Doctors
}

func NewService(appointments Appointments, patients Patients, doctors Doctors) *Service {
	return &Service{appointments: appointments, patients: patients, doctors: doctors}
}

// Build aggregates the dashboard for the actor. It never fails: errors are
// logged against the user and reported on the dashboard itself.
func (s *Service) Build(ctx context.Context, actor policy.Actor) *model.Dashboard {
	d := &model.Dashboard{Role: actor.User.Role}
	fail := func(err error, step string) {
		log.Error().Err(err).Int64("user_id", actor.User.ID).Str("step", step).Msg("dashboard aggregation failed")
		d.Errors = append(d.Errors, MsgLoadFailed)
	}

	switch actor.User.Role {
	case model.RolePatient:
		if actor.Patient == nil {
			p, err := s.patients.Provision(ctx, actor.User)
			if err != nil {
				fail(err, "provision_patient")
				return d
			}
			actor.Patient = p
		}
		s.upcoming(ctx, actor, d, fail)
	case model.RoleDoctor:
		if actor.Doctor == nil {
			d.Warnings = append(d.Warnings, MsgIncompleteDoctorProfile)
			return d
		}
		s.upcoming(ctx, actor, d, fail)
	case model.RoleAdmin:
		counts := []struct {
			step string
			fn   func(context.Context) (int64, error)
			dst  **int64
		}{
			{"count_doctors", s.doctors.Count, &d.DoctorCount},
			{"count_patients", s.patients.Count, &d.PatientCount},
			{"count_appointments", s.appointments.Count, &d.AppointmentCount},
		}
		for _, c := range counts {
			n, err := c.fn(ctx)
			if err != nil {
				fail(err, c.step)
				return d
			}
			*c.dst = &n
		}
	}
	return d
}

func (s *Service) upcoming(ctx context.Context, actor policy.Actor, d *model.Dashboard, fail func(error, string)) {
	appts, err := s.appointments.Upcoming(ctx, actor, model.DashboardAppointmentLimit)
	if err != nil {
		fail(err, "upcoming_appointments")
		return
	}
	d.Appointments = appts
}
