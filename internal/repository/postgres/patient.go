package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/repository"
)

const selectPatient = `
	SELECT p.id, p.user_id, p.birth_date, p.blood_group, p.medical_history,
		TRIM(u.first_name || ' ' || u.last_name) AS full_name
	FROM patients p
	JOIN users u ON u.id = p.user_id
`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func insertPatientTx(ctx context.Context, tx *sqlx.Tx, patient *model.Patient) error {
	return tx.QueryRowxContext(ctx, `
		INSERT INTO patients (user_id, birth_date, blood_group, medical_history)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		patient.UserID,
		patient.BirthDate,
		patient.BloodGroup,
		patient.MedicalHistory,
	).Scan(&patient.ID)
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return insertPatientTx(ctx, tx, patient)
	})
	if err != nil {
		return wrapErr("create patient", err)
	}
	return nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE patients SET birth_date = $1, blood_group = $2, medical_history = $3
		WHERE id = $4`,
		patient.BirthDate,
		patient.BloodGroup,
		patient.MedicalHistory,
		patient.ID,
	)
	if err != nil {
		return wrapErr("update patient", err)
	}
	return requireRows("update patient", result)
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, selectPatient+` WHERE p.id = $1`, id); err != nil {
		return nil, wrapErr("get patient", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID int64) (*model.Patient, error) {
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, selectPatient+` WHERE p.user_id = $1`, userID); err != nil {
		return nil, wrapErr("get patient by user", err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, selectPatient+` ORDER BY u.last_name, u.first_name, p.id`); err != nil {
		return nil, wrapErr("list patients", err)
	}
	return patients, nil
}

func (r *patientRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]*model.Patient, error) {
	query := selectPatient + `
		JOIN doctor_patients dp ON dp.patient_id = p.id
		WHERE dp.doctor_id = $1
		ORDER BY u.last_name, u.first_name, p.id
	`
	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, doctorID); err != nil {
		return nil, wrapErr("list doctor patients", err)
	}
	return patients, nil
}

func (r *patientRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM patients`); err != nil {
		return 0, wrapErr("count patients", err)
	}
	return n, nil
}
