package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/medrec/internal/repository"
)

// NewRepositories wires every Postgres repository onto db.
func NewRepositories(db *sqlx.DB) repository.Set {
	base := NewBaseRepository(db)
	return repository.Set{
		Users:         NewUserRepository(base),
		Patients:      NewPatientRepository(base),
		Doctors:       NewDoctorRepository(base),
		Attributions:  NewAttributionRepository(base),
		Specialities:  NewSpecialityRepository(base),
		Pharmacies:    NewPharmacyRepository(base),
		Appointments:  NewAppointmentRepository(base),
		Records:       NewMedicalRecordRepository(base),
		Prescriptions: NewPrescriptionRepository(base),
		Allergies:     NewAllergyRepository(base),
		Audit:         NewAuditRepository(base),
	}
}
