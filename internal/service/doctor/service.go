package doctor

import (
	"context"
	"errors"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/policy"
	"github.com/jwalitptl/medrec/internal/repository"
	"github.com/jwalitptl/medrec/internal/service/audit"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
)

type Service struct {
	repo         repository.DoctorRepository
	patients     repository.PatientRepository
	specialities repository.SpecialityRepository
	attributions repository.AttributionRepository
	auditor      *audit.Logger
}

func NewService(repo repository.DoctorRepository, patients repository.PatientRepository,
	specialities repository.SpecialityRepository, attributions repository.AttributionRepository,
	auditor *audit.Logger) *Service {
	return &Service{
		repo:         repo,
		patients:     patients,
		specialities: specialities,
		attributions: attributions,
		auditor:      auditor,
	}
}

func (s *Service) List(ctx context.Context) ([]*model.Doctor, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Doctor, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.NotFoundErr) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, err
	}
	return d, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Profile returns the actor's own doctor profile, nil if not yet created.
func (s *Service) Profile(_ context.Context, actor policy.Actor) (*model.Doctor, error) {
	if actor.User == nil || actor.User.Role != model.RoleDoctor {
		return nil, apperrors.Forbidden("only doctors have a doctor profile")
	}
	return actor.Doctor, nil
}

// SaveProfile creates or updates the actor's doctor profile.
func (s *Service) SaveProfile(ctx context.Context, actor policy.Actor, f *form.DoctorForm) (*model.Doctor, error) {
	current, err := s.Profile(ctx, actor)
	if err != nil {
		return nil, err
	}
	if f.Speciality > 0 {
		if err := s.checkSpeciality(ctx, f.Speciality); err != nil {
			return nil, err
		}
	}

	d := &model.Doctor{UserID: actor.User.ID}
	if current != nil {
		cp := *current
		d = &cp
	}
	if err := f.Apply(d); err != nil {
		return nil, apperrors.FieldError("availability", "Enter a valid weekly availability.")
	}

	if current == nil {
		if err := s.repo.Create(ctx, d); err != nil {
			if errors.Is(err, apperrors.ConflictErr) {
				return nil, apperrors.Conflict("doctor profile already exists", err)
			}
			return nil, err
		}
	} else if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, d.ID)
}

func (s *Service) checkSpeciality(ctx context.Context, id int64) error {
	specialities, err := s.specialities.List(ctx)
	if err != nil {
		return err
	}
	for _, sp := range specialities {
		if sp.ID == id {
			return nil
		}
	}
	return apperrors.FieldError("speciality", "Select a valid choice. That choice is not one of the available choices.")
}

// Attribute links a patient to a doctor so the doctor can see their records.
func (s *Service) Attribute(ctx context.Context, actor policy.Actor, doctorID, patientID int64) error {
	if !policy.IsAdmin(actor.User) {
		return apperrors.Forbidden("")
	}
	if _, err := s.Get(ctx, doctorID); err != nil {
		return err
	}
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if errors.Is(err, apperrors.NotFoundErr) {
			return apperrors.FieldError("patient", "Select a valid choice. That choice is not one of the available choices.")
		}
		return err
	}
	if err := s.attributions.Attribute(ctx, doctorID, patientID); err != nil {
		return err
	}
	s.auditor.Log(ctx, actor.User.ID, model.AuditActionUpdate, model.AuditEntityPatient, patientID,
		&audit.LogOptions{Metadata: map[string]int64{"attributed_doctor_id": doctorID}})
	return nil
}
