package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/policy"
	"github.com/jwalitptl/medrec/internal/repository"
	"github.com/jwalitptl/medrec/internal/service/audit"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
)

type Service struct {
	repo    repository.PatientRepository
	auditor *audit.Logger
}

func NewService(repo repository.PatientRepository, auditor *audit.Logger) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// Provision returns the user's patient profile, creating an empty one when
// the account predates registration-time provisioning.
func (s *Service) Provision(ctx context.Context, user *model.User) (*model.Patient, error) {
	if user == nil || user.Role != model.RolePatient {
		return nil, apperrors.Forbidden("only patients have a patient profile")
	}
	p, err := s.repo.GetByUserID(ctx, user.ID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, apperrors.NotFoundErr) {
		return nil, err
	}

	p = &model.Patient{UserID: user.ID}
	if err := s.repo.Create(ctx, p); err != nil {
		// Lost a race with a concurrent provisioning; the row exists now.
		if errors.Is(err, apperrors.ConflictErr) {
			return s.repo.GetByUserID(ctx, user.ID)
		}
		return nil, fmt.Errorf("failed to provision patient profile: %w", err)
	}
	p.FullName = user.FullName()
	return p, nil
}

// UpdateProfile applies the profile form to the actor's own patient profile.
func (s *Service) UpdateProfile(ctx context.Context, actor policy.Actor, f *form.PatientForm) (*model.Patient, error) {
	p, err := s.Provision(ctx, actor.User)
	if err != nil {
		return nil, err
	}
	if err := f.Apply(p); err != nil {
		return nil, apperrors.FieldError("birth_date", "Enter a valid date.")
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.auditor.Log(ctx, actor.User.ID, model.AuditActionUpdate, model.AuditEntityPatient, p.ID, nil)
	return p, nil
}

// List returns the patient directory visible to the actor: attributed
// patients for a doctor, everyone for an admin.
func (s *Service) List(ctx context.Context, actor policy.Actor) ([]*model.Patient, error) {
	if actor.User == nil {
		return nil, apperrors.Forbidden("")
	}
	switch actor.User.Role {
	case model.RoleDoctor:
		if actor.Doctor == nil {
			return []*model.Patient{}, nil
		}
		return s.repo.ListByDoctor(ctx, actor.Doctor.ID)
	case model.RoleAdmin:
		return s.repo.List(ctx)
	case model.RolePatient:
		return nil, apperrors.Forbidden("")
	}
	return nil, apperrors.Forbidden("")
}

// Get loads a patient the actor is allowed to see.
func (s *Service) Get(ctx context.Context, actor policy.Actor, id int64) (*model.Patient, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.NotFoundErr) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, err
	}
	if !policy.CanViewPatient(actor, p) {
		return nil, apperrors.Forbidden("")
	}
	return p, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
