package postgres

import (
	"context"

	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/repository"
)

type specialityRepository struct {
	BaseRepository
}

func NewSpecialityRepository(base BaseRepository) repository.SpecialityRepository {
	return &specialityRepository{base}
}

func (r *specialityRepository) Create(ctx context.Context, speciality *model.Speciality) error {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO specialities (name, description) VALUES ($1, $2) RETURNING id`,
		speciality.Name, speciality.Description,
	).Scan(&speciality.ID)
	if err != nil {
		return wrapErr("create speciality", err)
	}
	return nil
}

func (r *specialityRepository) List(ctx context.Context) ([]*model.Speciality, error) {
	specialities := []*model.Speciality{}
	if err := r.db.SelectContext(ctx, &specialities,
		`SELECT id, name, description FROM specialities ORDER BY name`); err != nil {
		return nil, wrapErr("list specialities", err)
	}
	return specialities, nil
}

type pharmacyRepository struct {
	BaseRepository
}

func NewPharmacyRepository(base BaseRepository) repository.PharmacyRepository {
	return &pharmacyRepository{base}
}

func (r *pharmacyRepository) Create(ctx context.Context, pharmacy *model.Pharmacy) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO pharmacies (name, address, phone, is_on_duty, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		pharmacy.Name,
		pharmacy.Address,
		pharmacy.Phone,
		pharmacy.IsOnDuty,
		pharmacy.Latitude,
		pharmacy.Longitude,
	).Scan(&pharmacy.ID)
	if err != nil {
		return wrapErr("create pharmacy", err)
	}
	return nil
}

func (r *pharmacyRepository) List(ctx context.Context, onDutyOnly bool) ([]*model.Pharmacy, error) {
	query := `SELECT id, name, address, phone, is_on_duty, latitude, longitude FROM pharmacies`
	if onDutyOnly {
		query += ` WHERE is_on_duty`
	}
	query += ` ORDER BY name, id`

	pharmacies := []*model.Pharmacy{}
	if err := r.db.SelectContext(ctx, &pharmacies, query); err != nil {
		return nil, wrapErr("list pharmacies", err)
	}
	return pharmacies, nil
}

type attributionRepository struct {
	BaseRepository
}

func NewAttributionRepository(base BaseRepository) repository.AttributionRepository {
	return &attributionRepository{base}
}

const insertAttribution = `
	INSERT INTO doctor_patients (doctor_id, patient_id)
	VALUES ($1, $2)
	ON CONFLICT (doctor_id, patient_id) DO NOTHING
`

func (r *attributionRepository) Attribute(ctx context.Context, doctorID, patientID int64) error {
	if _, err := r.db.ExecContext(ctx, insertAttribution, doctorID, patientID); err != nil {
		return wrapErr("attribute patient", err)
	}
	return nil
}

func (r *attributionRepository) PatientIDs(ctx context.Context, doctorID int64) ([]int64, error) {
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids,
		`SELECT patient_id FROM doctor_patients WHERE doctor_id = $1 ORDER BY patient_id`, doctorID); err != nil {
		return nil, wrapErr("list attributed patients", err)
	}
	return ids, nil
}
