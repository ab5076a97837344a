package repository

import (
	"context"
	"time"

	"github.com/jwalitptl/medrec/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		// CreateWithPatient inserts the account and its patient profile atomically.
		CreateWithPatient(ctx context.Context, user *model.User, patient *model.Patient) error
		Get(ctx context.Context, id int64) (*model.User, error)
		// GetByLogin matches the username or, case-insensitively, the email.
		GetByLogin(ctx context.Context, login string) (*model.User, error)
		UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
		Delete(ctx context.Context, id int64) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Update(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id int64) (*model.Doctor, error)
		GetByUserID(ctx context.Context, userID int64) (*model.Doctor, error)
		List(ctx context.Context) ([]*model.Doctor, error)
		Count(ctx context.Context) (int64, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Update(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id int64) (*model.Patient, error)
		GetByUserID(ctx context.Context, userID int64) (*model.Patient, error)
		List(ctx context.Context) ([]*model.Patient, error)
		ListByDoctor(ctx context.Context, doctorID int64) ([]*model.Patient, error)
		Count(ctx context.Context) (int64, error)
	}

	// AttributionRepository maintains the doctor -> patient relation.
	AttributionRepository interface {
		Attribute(ctx context.Context, doctorID, patientID int64) error
		PatientIDs(ctx context.Context, doctorID int64) ([]int64, error)
	}

	SpecialityRepository interface {
		Create(ctx context.Context, speciality *model.Speciality) error
		List(ctx context.Context) ([]*model.Speciality, error)
	}

	PharmacyRepository interface {
		Create(ctx context.Context, pharmacy *model.Pharmacy) error
		List(ctx context.Context, onDutyOnly bool) ([]*model.Pharmacy, error)
	}

	AppointmentRepository interface {
		// Create also attributes the patient to the doctor.
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id int64) (*model.Appointment, error)
		UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		Count(ctx context.Context) (int64, error)
	}

	MedicalRecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		Get(ctx context.Context, id int64) (*model.MedicalRecord, error)
		// List returns the records visible under scope, optionally narrowed to
		// one patient, newest first.
		List(ctx context.Context, scope model.RecordScope, patientID int64) ([]*model.MedicalRecord, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, prescription *model.Prescription) error
		GetByRecord(ctx context.Context, recordID int64) (*model.Prescription, error)
	}

	AllergyRepository interface {
		Create(ctx context.Context, allergy *model.Allergy) error
		ListByPatient(ctx context.Context, patientID int64) ([]*model.Allergy, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*model.AuditLog, error)
		Cleanup(ctx context.Context, before time.Time) (int64, error)
	}
)

// Set bundles one implementation of every repository.
type Set struct {
	Users         UserRepository
	Patients      PatientRepository
	Doctors       DoctorRepository
	Attributions  AttributionRepository
	Specialities  SpecialityRepository
	Pharmacies    PharmacyRepository
	Appointments  AppointmentRepository
	Records       MedicalRecordRepository
	Prescriptions PrescriptionRepository
	Allergies     AllergyRepository
	Audit         AuditRepository
}
