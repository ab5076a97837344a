package prescription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/policy"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
)

type mockPrescriptionRepository struct {
	createFunc      func(ctx context.Context, p *model.Prescription) error
	getByRecordFunc func(ctx context.Context, recordID int64) (*model.Prescription, error)
}

func (m *mockPrescriptionRepository) Create(ctx context.Context, p *model.Prescription) error {
	return m.createFunc(ctx, p)
}

func (m *mockPrescriptionRepository) GetByRecord(ctx context.Context, recordID int64) (*model.Prescription, error) {
	return m.getByRecordFunc(ctx, recordID)
}

type mockRecordRepository struct {
	getFunc func(ctx context.Context, id int64) (*model.MedicalRecord, error)
}

func (m *mockRecordRepository) Create(context.Context, *model.MedicalRecord) error { return nil }

func (m *mockRecordRepository) Get(ctx context.Context, id int64) (*model.MedicalRecord, error) {
	return m.getFunc(ctx, id)
}

func (m *mockRecordRepository) List(context.Context, model.RecordScope, int64) ([]*model.MedicalRecord, error) {
	return nil, nil
}

func validForm() *form.PrescriptionForm {
	return &form.PrescriptionForm{
		Medications:  `[{"name":"Amoxicillin","dosage":"500mg","schedule":"3x daily"}]`,
		Instructions: "After meals",
		ValidUntil:   "2024-12-31",
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	records := &mockRecordRepository{
		getFunc: func(_ context.Context, id int64) (*model.MedicalRecord, error) {
			if id == 3 {
				return &model.MedicalRecord{ID: 3, PatientID: 7}, nil
			}
			return nil, apperrors.NotFoundErr
		},
	}
	doctor := policy.Actor{
		User:       &model.User{ID: 1, Role: model.RoleDoctor},
		Doctor:     &model.Doctor{ID: 1},
		Attributed: policy.NewPatientSet(7),
	}

	t.Run("record id comes from the route", func(t *testing.T) {
		var saved *model.Prescription
		svc := NewService(&mockPrescriptionRepository{
			createFunc: func(_ context.Context, p *model.Prescription) error {
				saved = p
				return nil
			},
		}, records, nil)

		_, err := svc.Create(ctx, doctor, 3, validForm())
		require.NoError(t, err)
		assert.Equal(t, int64(3), saved.MedicalRecordID)
		require.Len(t, saved.Medications, 1)
		assert.Equal(t, "Amoxicillin", saved.Medications[0].Name)
		assert.Equal(t, time.December, saved.ValidUntil.Month())
	})

	t.Run("patients are denied", func(t *testing.T) {
		svc := NewService(&mockPrescriptionRepository{
			createFunc: func(context.Context, *model.Prescription) error {
				t.Fatal("create must not be called")
				return nil
			},
		}, records, nil)
		_, err := svc.Create(ctx, policy.Actor{User: &model.User{Role: model.RolePatient}}, 3, validForm())
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	})

	t.Run("doctor without the patient", func(t *testing.T) {
		svc := NewService(&mockPrescriptionRepository{
			createFunc: func(context.Context, *model.Prescription) error {
				t.Fatal("create must not be called")
				return nil
			},
		}, records, nil)
		other := policy.Actor{
			User:       &model.User{ID: 2, Role: model.RoleDoctor},
			Doctor:     &model.Doctor{ID: 2},
			Attributed: policy.NewPatientSet(8),
		}
		_, err := svc.Create(ctx, other, 3, validForm())
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

		_, err = svc.Target(ctx, other, 3)
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	})

	t.Run("admin reaches any record", func(t *testing.T) {
		svc := NewService(&mockPrescriptionRepository{}, records, nil)
		rec, err := svc.Target(ctx, policy.Actor{User: &model.User{ID: 9, Role: model.RoleAdmin}}, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), rec.ID)
	})

	t.Run("missing record", func(t *testing.T) {
		svc := NewService(&mockPrescriptionRepository{}, records, nil)
		_, err := svc.Create(ctx, doctor, 4, validForm())
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("second prescription for a record", func(t *testing.T) {
		svc := NewService(&mockPrescriptionRepository{
			createFunc: func(context.Context, *model.Prescription) error { return apperrors.ConflictErr },
		}, records, nil)
		_, err := svc.Create(ctx, doctor, 3, validForm())
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, msgExists, appErr.Fields[form.NonFieldKey])
	})
}
