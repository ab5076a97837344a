package allergy

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
	repo     repository.AllergyRepository
	patients repository.PatientRepository
	auditor  *audit.Logger
}

func NewService(repo repository.AllergyRepository, patients repository.PatientRepository, auditor *audit.Logger) *Service {
	return &Service{repo: repo, patients: patients, auditor: auditor}
}

// List returns a patient's allergies, active ones first.
func (s *Service) List(ctx context.Context, actor policy.Actor, patientID int64) ([]*model.Allergy, error) {
	if _, err := s.Patient(ctx, actor, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListByPatient(ctx, patientID)
}

// Create records an allergy. Anyone who may see the patient may add one:
// the patient themself, an attributed doctor or an admin.
func (s *Service) Create(ctx context.Context, actor policy.Actor, patientID int64, f *form.AllergyForm) (*model.Allergy, error) {
	if _, err := s.Patient(ctx, actor, patientID); err != nil {
		return nil, err
	}
	a, err := f.ToModel()
	if err != nil {
		return nil, apperrors.FieldError("onset_date", "Enter a valid date.")
	}
	a.PatientID = patientID
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.auditor.Log(ctx, actor.User.ID, model.AuditActionCreate, model.AuditEntityAllergy, a.ID, nil)
	return a, nil
}

// Patient loads a patient the actor may see.
func (s *Service) Patient(ctx context.Context, actor policy.Actor, id int64) (*model.Patient, error) {
	p, err := s.patients.Get(ctx, id)
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
