package postgres

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/repository"
)

type medicalRecordRepository struct {
	BaseRepository
}

func NewMedicalRecordRepository(base BaseRepository) repository.MedicalRecordRepository {
	return &medicalRecordRepository{base}
}

func (r *medicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO medical_records (
			patient_id, doctor_id, record_type, title, description, date,
			file, is_emergency, confidential, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		record.PatientID,
		record.DoctorID,
		record.Type,
		record.Title,
		record.Description,
		record.Date,
		record.File,
		record.IsEmergency,
		record.Confidential,
		record.CreatedAt,
		record.UpdatedAt,
	).Scan(&record.ID)
	if err != nil {
		return wrapErr("create medical record", err)
	}
	return nil
}

func (r *medicalRecordRepository) dataset() *goqu.SelectDataset {
	return dialect.From(goqu.T("medical_records").As("r")).Prepared(true).
		Select(
			goqu.I("r.id"),
			goqu.I("r.patient_id"),
			goqu.I("r.doctor_id"),
			goqu.I("r.record_type"),
			goqu.I("r.title"),
			goqu.I("r.description"),
			goqu.I("r.date"),
			goqu.I("r.file"),
			goqu.I("r.is_emergency"),
			goqu.I("r.confidential"),
			goqu.I("r.created_at"),
			goqu.I("r.updated_at"),
			goqu.I("p.user_id").As("patient_user_id"),
		).
		Join(goqu.T("patients").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("r.patient_id"))))
}

func (r *medicalRecordRepository) Get(ctx context.Context, id int64) (*model.MedicalRecord, error) {
	query, args, err := r.dataset().Where(goqu.I("r.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, wrapErr("build medical record query", err)
	}

	var record model.MedicalRecord
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		return nil, wrapErr("get medical record", err)
	}
	return &record, nil
}

func (r *medicalRecordRepository) List(ctx context.Context, scope model.RecordScope, patientID int64) ([]*model.MedicalRecord, error) {
	records := []*model.MedicalRecord{}

	ds := r.dataset()
	switch {
	case scope.None:
		return records, nil
	case scope.PatientID > 0:
		ds = ds.Where(goqu.I("r.patient_id").Eq(scope.PatientID))
	case scope.DoctorID > 0:
		attributed := dialect.From("doctor_patients").
			Select("patient_id").
			Where(goqu.C("doctor_id").Eq(scope.DoctorID))
		ds = ds.Where(goqu.I("r.patient_id").In(attributed))
	default:
		return records, nil
	}
	if patientID > 0 {
		ds = ds.Where(goqu.I("r.patient_id").Eq(patientID))
	}
	ds = ds.Order(goqu.I("r.date").Desc(), goqu.I("r.created_at").Desc(), goqu.I("r.id").Desc())

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, wrapErr("build medical record list query", err)
	}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, wrapErr("list medical records", err)
	}
	return records, nil
}

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(base BaseRepository) repository.PrescriptionRepository {
	return &prescriptionRepository{base}
}

func (r *prescriptionRepository) Create(ctx context.Context, p *model.Prescription) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prescriptions (medical_record_id, medications, instructions, valid_until)
		VALUES ($1, $2, $3, $4)`,
		p.MedicalRecordID,
		p.Medications,
		p.Instructions,
		p.ValidUntil,
	)
	if err != nil {
		return wrapErr("create prescription", err)
	}
	return nil
}

func (r *prescriptionRepository) GetByRecord(ctx context.Context, recordID int64) (*model.Prescription, error) {
	var p model.Prescription
	err := r.db.GetContext(ctx, &p, `
		SELECT medical_record_id, medications, instructions, valid_until
		FROM prescriptions WHERE medical_record_id = $1`, recordID)
	if err != nil {
		return nil, wrapErr("get prescription", err)
	}
	return &p, nil
}

type allergyRepository struct {
	BaseRepository
}

func NewAllergyRepository(base BaseRepository) repository.AllergyRepository {
	return &allergyRepository{base}
}

func (r *allergyRepository) Create(ctx context.Context, a *model.Allergy) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO allergies (patient_id, name, severity, reaction, onset_date, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		a.PatientID,
		a.Name,
		a.Severity,
		a.Reaction,
		a.OnsetDate,
		a.Active,
	).Scan(&a.ID)
	if err != nil {
		return wrapErr("create allergy", err)
	}
	return nil
}

func (r *allergyRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.Allergy, error) {
	allergies := []*model.Allergy{}
	err := r.db.SelectContext(ctx, &allergies, `
		SELECT id, patient_id, name, severity, reaction, onset_date, active
		FROM allergies WHERE patient_id = $1
		ORDER BY active DESC, onset_date DESC, id`, patientID)
	if err != nil {
		return nil, wrapErr("list allergies", err)
	}
	return allergies, nil
}
