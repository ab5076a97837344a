package model

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether an appointment may move from s to next.
func (s AppointmentStatus) CanTransition(next AppointmentStatus) bool {
	switch s {
	case AppointmentStatusPending:
		return next == AppointmentStatusConfirmed || next == AppointmentStatusCancelled
	case AppointmentStatusConfirmed:
		return next == AppointmentStatusCompleted || next == AppointmentStatusCancelled
	case AppointmentStatusCancelled, AppointmentStatusCompleted:
		return false
	}
	return false
}

type AppointmentType string

const (
	AppointmentTypeInPerson AppointmentType = "IN_PERSON"
	AppointmentTypeRemote   AppointmentType = "REMOTE"
)

func (t AppointmentType) Valid() bool {
	switch t {
	case AppointmentTypeInPerson, AppointmentTypeRemote:
		return true
	}
	return false
}

type Appointment struct {
	ID        int64             `db:"id" json:"id"`
	PatientID int64             `db:"patient_id" json:"patient_id"`
	DoctorID  int64             `db:"doctor_id" json:"doctor_id"`
	DateTime  time.Time         `db:"date_time" json:"date_time"`
	Status    AppointmentStatus `db:"status" json:"status"`
	Type      AppointmentType   `db:"appointment_type" json:"appointment_type"`
	Notes     string            `db:"notes" json:"notes"`

	PatientName string `db:"patient_name" json:"patient_name,omitempty"`
	DoctorName  string `db:"doctor_name" json:"doctor_name,omitempty"`
}

// AppointmentFilters narrows appointment lists. Zero values are ignored.
type AppointmentFilters struct {
	PatientID int64
	DoctorID  int64
	From      time.Time
	Limit     int
}
