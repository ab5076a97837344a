package postgres

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	if appt.Status == "" {
		appt.Status = model.AppointmentStatusPending
	}
	if appt.Type == "" {
		appt.Type = model.AppointmentTypeInPerson
	}

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO appointments (patient_id, doctor_id, date_time, status, appointment_type, notes)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			appt.PatientID,
			appt.DoctorID,
			appt.DateTime,
			appt.Status,
			appt.Type,
			appt.Notes,
		).Scan(&appt.ID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, insertAttribution, appt.DoctorID, appt.PatientID)
		return err
	})
	if err != nil {
		return wrapErr("create appointment", err)
	}
	return nil
}

func (r *appointmentRepository) dataset() *goqu.SelectDataset {
	return dialect.From(goqu.T("appointments").As("a")).Prepared(true).
		Select(
			goqu.I("a.id"),
			goqu.I("a.patient_id"),
			goqu.I("a.doctor_id"),
			goqu.I("a.date_time"),
			goqu.I("a.status"),
			goqu.I("a.appointment_type"),
			goqu.I("a.notes"),
			goqu.L(`TRIM(pu.first_name || ' ' || pu.last_name)`).As("patient_name"),
			goqu.L(`TRIM(du.first_name || ' ' || du.last_name)`).As("doctor_name"),
		).
		Join(goqu.T("patients").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("a.patient_id")))).
		Join(goqu.T("users").As("pu"), goqu.On(goqu.I("pu.id").Eq(goqu.I("p.user_id")))).
		Join(goqu.T("doctors").As("d"), goqu.On(goqu.I("d.id").Eq(goqu.I("a.doctor_id")))).
		Join(goqu.T("users").As("du"), goqu.On(goqu.I("du.id").Eq(goqu.I("d.user_id"))))
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	query, args, err := r.dataset().Where(goqu.I("a.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, wrapErr("build appointment query", err)
	}

	var appt model.Appointment
	if err := r.db.GetContext(ctx, &appt, query, args...); err != nil {
		return nil, wrapErr("get appointment", err)
	}
	return &appt, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE appointments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return wrapErr("update appointment status", err)
	}
	return requireRows("update appointment status", result)
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	ds := r.dataset()
	if filters != nil {
		if filters.PatientID > 0 {
			ds = ds.Where(goqu.I("a.patient_id").Eq(filters.PatientID))
		}
		if filters.DoctorID > 0 {
			ds = ds.Where(goqu.I("a.doctor_id").Eq(filters.DoctorID))
		}
		if !filters.From.IsZero() {
			ds = ds.Where(goqu.I("a.date_time").Gte(filters.From))
		}
		if filters.Limit > 0 {
			ds = ds.Limit(uint(filters.Limit))
		}
	}
	ds = ds.Order(goqu.I("a.date_time").Asc(), goqu.I("a.id").Asc())

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, wrapErr("build appointment list query", err)
	}

	appts := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appts, query, args...); err != nil {
		return nil, wrapErr("list appointments", err)
	}
	return appts, nil
}

func (r *appointmentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM appointments`); err != nil {
		return 0, wrapErr("count appointments", err)
	}
	return n, nil
}
