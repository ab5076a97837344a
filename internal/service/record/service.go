package record

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/policy"
	"github.com/jwalitptl/medrec/internal/repository"
	"github.com/jwalitptl/medrec/internal/service/audit"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
)

// Attachments stores uploaded record files.
type Attachments interface {
	SaveUpload(fh *multipart.FileHeader) (string, error)
	Open(rel string) (afero.File, error)
	Remove(rel string) error
}

// Detail is a record together with its prescription, if one was written.
type Detail struct {
	Record       *model.MedicalRecord
	Prescription *model.Prescription
}

type Service struct {
	repo          repository.MedicalRecordRepository
	patients      repository.PatientRepository
	prescriptions repository.PrescriptionRepository
	files         Attachments
	auditor       *audit.Logger
}

func NewService(repo repository.MedicalRecordRepository, patients repository.PatientRepository,
	prescriptions repository.PrescriptionRepository, files Attachments, auditor *audit.Logger) *Service {
	return &Service{
		repo:          repo,
		patients:      patients,
		prescriptions: prescriptions,
		files:         files,
		auditor:       auditor,
	}
}

// List returns the records visible to the actor, newest first. A non-zero
// patientID narrows the list to that patient and must exist.
func (s *Service) List(ctx context.Context, actor policy.Actor, patientID int64) ([]*model.MedicalRecord, error) {
	if patientID > 0 {
		if _, err := s.patient(ctx, patientID); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, policy.RecordScope(actor), patientID)
}

// Get loads one record after the object-level visibility check.
func (s *Service) Get(ctx context.Context, actor policy.Actor, id int64) (*Detail, error) {
	rec, err := s.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Record: rec}
	rx, err := s.prescriptions.GetByRecord(ctx, id)
	switch {
	case err == nil:
		detail.Prescription = rx
	case errors.Is(err, apperrors.NotFoundErr):
	default:
		return nil, err
	}

	s.auditor.Log(ctx, actor.User.ID, model.AuditActionRead, model.AuditEntityMedicalRecord, id, nil)
	return detail, nil
}

func (s *Service) get(ctx context.Context, actor policy.Actor, id int64) (*model.MedicalRecord, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.NotFoundErr) {
			return nil, apperrors.NotFound("medical record", err)
		}
		return nil, err
	}
	if !policy.CanViewRecord(actor, rec) {
		return nil, apperrors.Forbidden("")
	}
	return rec, nil
}

// Attachment opens the file uploaded with a record. The caller closes it.
func (s *Service) Attachment(ctx context.Context, actor policy.Actor, id int64) (afero.File, string, error) {
	rec, err := s.get(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	if rec.File == nil {
		return nil, "", apperrors.NotFound("attachment", nil)
	}
	f, err := s.files.Open(*rec.File)
	if err != nil {
		return nil, "", apperrors.NotFound("attachment", err)
	}
	s.auditor.Log(ctx, actor.User.ID, model.AuditActionRead, model.AuditEntityMedicalRecord, id,
		&audit.LogOptions{Metadata: map[string]string{"file": *rec.File}})
	return f, path.Base(*rec.File), nil
}

// Create writes a record for patientID. The patient comes from the route and
// the doctor from the actor, never from the submitted form.
func (s *Service) Create(ctx context.Context, actor policy.Actor, patientID int64, f *form.MedicalRecordForm) (*model.MedicalRecord, error) {
	if _, err := s.CreateTarget(ctx, actor, patientID); err != nil {
		return nil, err
	}

	rec, err := f.ToModel()
	if err != nil {
		return nil, apperrors.FieldError("date", "Enter a valid date.")
	}
	rec.PatientID = patientID
	if actor.Doctor != nil {
		id := actor.Doctor.ID
		rec.DoctorID = &id
	}

	if f.File != nil {
		rel, err := s.files.SaveUpload(f.File)
		if err != nil {
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		rec.File = &rel
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		if rec.File != nil {
			if rmErr := s.files.Remove(*rec.File); rmErr != nil {
				log.Warn().Err(rmErr).Str("file", *rec.File).Msg("orphaned attachment not removed")
			}
		}
		return nil, err
	}
	s.auditor.Log(ctx, actor.User.ID, model.AuditActionCreate, model.AuditEntityMedicalRecord, rec.ID, nil)
	return rec, nil
}

// CreateTarget checks that the actor may write records and returns the
// patient they would be written for.
func (s *Service) CreateTarget(ctx context.Context, actor policy.Actor, patientID int64) (*model.Patient, error) {
	if !policy.IsDoctorOrAdmin(actor.User) {
		return nil, apperrors.Forbidden("only doctors and administrators can create medical records")
	}
	return s.patient(ctx, patientID)
}

func (s *Service) patient(ctx context.Context, id int64) (*model.Patient, error) {
	p, err := s.patients.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.NotFoundErr) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, err
	}
	return p, nil
}
