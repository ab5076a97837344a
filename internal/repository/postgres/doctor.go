package postgres

import (
	"context"

	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/repository"
)

const selectDoctor = `
	SELECT d.id, d.user_id, d.speciality_id, d.license_number, d.availability,
		TRIM(u.first_name || ' ' || u.last_name) AS full_name,
		s.name AS speciality_name
	FROM doctors d
	JOIN users u ON u.id = d.user_id
	LEFT JOIN specialities s ON s.id = d.speciality_id
`

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO doctors (user_id, speciality_id, license_number, availability)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		doctor.UserID,
		doctor.SpecialityID,
		doctor.LicenseNumber,
		doctor.Availability,
	).Scan(&doctor.ID)
	if err != nil {
		return wrapErr("create doctor", err)
	}
	return nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE doctors SET speciality_id = $1, license_number = $2, availability = $3
		WHERE id = $4`,
		doctor.SpecialityID,
		doctor.LicenseNumber,
		doctor.Availability,
		doctor.ID,
	)
	if err != nil {
		return wrapErr("update doctor", err)
	}
	return requireRows("update doctor", result)
}

func (r *doctorRepository) Get(ctx context.Context, id int64) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, selectDoctor+` WHERE d.id = $1`, id); err != nil {
		return nil, wrapErr("get doctor", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID int64) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, selectDoctor+` WHERE d.user_id = $1`, userID); err != nil {
		return nil, wrapErr("get doctor by user", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	doctors := []*model.Doctor{}
	if err := r.db.SelectContext(ctx, &doctors, selectDoctor+` ORDER BY u.last_name, u.first_name, d.id`); err != nil {
		return nil, wrapErr("list doctors", err)
	}
	return doctors, nil
}

func (r *doctorRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM doctors`); err != nil {
		return 0, wrapErr("count doctors", err)
	}
	return n, nil
}
