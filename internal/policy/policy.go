// Package policy holds the role-derived access predicates. Every function is
// pure over (actor, resource) and fails closed.
package policy

import (
	"github.com/jwalitptl/medrec/internal/model"
)

// PatientSet is the set of patient ids attributed to a doctor.
type PatientSet map[int64]struct{}

func NewPatientSet(ids ...int64) PatientSet {
	s := make(PatientSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s PatientSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Actor is the requesting user together with its role profile.
type Actor struct {
	User       *model.User
	Patient    *model.Patient
	Doctor     *model.Doctor
	Attributed PatientSet
}

func (a Actor) role() model.Role {
	if a.User == nil {
		return ""
	}
	return a.User.Role
}

// IsDoctorOrAdmin gates creation of medical records and prescriptions.
func IsDoctorOrAdmin(user *model.User) bool {
	if user == nil {
		return false
	}
	switch user.Role {
	case model.RoleDoctor, model.RoleAdmin:
		return true
	case model.RolePatient:
		return false
	}
	return false
}

// IsAdmin reports whether the user holds the ADMIN role.
func IsAdmin(user *model.User) bool {
	if user == nil {
		return false
	}
	switch user.Role {
	case model.RoleAdmin:
		return true
	case model.RoleDoctor, model.RolePatient:
		return false
	}
	return false
}

// IsPatientOwner is true iff the record's patient is linked to user.
func IsPatientOwner(user *model.User, record *model.MedicalRecord) bool {
	if user == nil || record == nil {
		return false
	}
	return record.PatientUserID == user.ID
}

// IsDoctorForPatient is true iff patientID is attributed to the actor's doctor profile.
func IsDoctorForPatient(actor Actor, patientID int64) bool {
	if actor.Doctor == nil {
		return false
	}
	return actor.Attributed.Contains(patientID)
}

// CanViewRecord is the object-level check for record detail.
func CanViewRecord(actor Actor, record *model.MedicalRecord) bool {
	if record == nil {
		return false
	}
	switch actor.role() {
	case model.RolePatient:
		return IsPatientOwner(actor.User, record)
	case model.RoleDoctor:
		return IsDoctorForPatient(actor, record.PatientID)
	case model.RoleAdmin:
		return true
	}
	return false
}

// CanViewPatient applies the record rule to patient-scoped data (allergies, record lists).
func CanViewPatient(actor Actor, patient *model.Patient) bool {
	if patient == nil {
		return false
	}
	switch actor.role() {
	case model.RolePatient:
		return actor.User != nil && patient.UserID == actor.User.ID
	case model.RoleDoctor:
		return IsDoctorForPatient(actor, patient.ID)
	case model.RoleAdmin:
		return true
	}
	return false
}

// RecordScope derives the list filter for medical records. Roles other than
// PATIENT and DOCTOR, and users without the matching profile, see nothing.
func RecordScope(actor Actor) model.RecordScope {
	switch actor.role() {
	case model.RolePatient:
		if actor.Patient == nil {
			return model.RecordScope{None: true}
		}
		return model.RecordScope{PatientID: actor.Patient.ID}
	case model.RoleDoctor:
		if actor.Doctor == nil {
			return model.RecordScope{None: true}
		}
		return model.RecordScope{DoctorID: actor.Doctor.ID}
	case model.RoleAdmin:
		return model.RecordScope{None: true}
	}
	return model.RecordScope{None: true}
}

// CanManageAppointment reports whether the actor may move the appointment to next.
// Patients may only cancel their own appointments.
func CanManageAppointment(actor Actor, appt *model.Appointment, next model.AppointmentStatus) bool {
	if appt == nil {
		return false
	}
	switch actor.role() {
	case model.RolePatient:
		return actor.Patient != nil &&
			appt.PatientID == actor.Patient.ID &&
			next == model.AppointmentStatusCancelled
	case model.RoleDoctor:
		return actor.Doctor != nil && appt.DoctorID == actor.Doctor.ID
	case model.RoleAdmin:
		return true
	}
	return false
}
