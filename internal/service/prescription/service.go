package prescription

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

const msgExists = "Prescription with this Medical record already exists."

type Service struct {
	repo    repository.PrescriptionRepository
	records repository.MedicalRecordRepository
	auditor *audit.Logger
}

func NewService(repo repository.PrescriptionRepository, records repository.MedicalRecordRepository, auditor *audit.Logger) *Service {
	return &Service{repo: repo, records: records, auditor: auditor}
}

// Create attaches a prescription to the record named by the route.
func (s *Service) Create(ctx context.Context, actor policy.Actor, recordID int64, f *form.PrescriptionForm) (*model.Prescription, error) {
	if _, err := s.Target(ctx, actor, recordID); err != nil {
		return nil, err
	}

	rx, err := f.ToModel()
	if err != nil {
		return nil, apperrors.FieldError("medications", "Enter a valid list of medications.")
	}
	rx.MedicalRecordID = recordID

	if err := s.repo.Create(ctx, rx); err != nil {
		if errors.Is(err, apperrors.ConflictErr) {
			return nil, apperrors.FieldError(form.NonFieldKey, msgExists)
		}
		return nil, err
	}
	s.auditor.Log(ctx, actor.User.ID, model.AuditActionCreate, model.AuditEntityPrescription, recordID,
		&audit.LogOptions{Metadata: map[string]int{"medications": len(rx.Medications)}})
	return rx, nil
}

// Target checks that the actor may prescribe and loads the record the
// prescription form is bound to. A doctor only reaches records of patients
// attributed to them.
func (s *Service) Target(ctx context.Context, actor policy.Actor, recordID int64) (*model.MedicalRecord, error) {
	if !policy.IsDoctorOrAdmin(actor.User) {
		return nil, apperrors.Forbidden("only doctors and administrators can write prescriptions")
	}
	rec, err := s.records.Get(ctx, recordID)
	if err != nil {
		if errors.Is(err, apperrors.NotFoundErr) {
			return nil, apperrors.NotFound("medical record", err)
		}
		return nil, err
	}
	if !policy.CanViewRecord(actor, rec) {
		return nil, apperrors.Forbidden("medical record is outside your patients")
	}
	return rec, nil
}
