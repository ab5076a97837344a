package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

type RecordType string

const (
	RecordTypeConsult      RecordType = "CONSULT"
	RecordTypeLab          RecordType = "LAB"
	RecordTypeImaging      RecordType = "IMAGING"
	RecordTypePrescription RecordType = "PRESCRIPTION"
	RecordTypeOther        RecordType = "OTHER"
)

func (t RecordType) Valid() bool {
	switch t {
	case RecordTypeConsult, RecordTypeLab, RecordTypeImaging, RecordTypePrescription, RecordTypeOther:
		return true
	}
	return false
}

func (t RecordType) Label() string {
	switch t {
	case RecordTypeConsult:
		return "Consultation"
	case RecordTypeLab:
		return "Lab result"
	case RecordTypeImaging:
		return "Medical imaging"
	case RecordTypePrescription:
		return "Prescription"
	case RecordTypeOther:
		return "Other"
	}
	return string(t)
}

type MedicalRecord struct {
	ID           int64      `db:"id" json:"id"`
	PatientID    int64      `db:"patient_id" json:"patient_id"`
	DoctorID     *int64     `db:"doctor_id" json:"doctor_id,omitempty"`
	Type         RecordType `db:"record_type" json:"record_type"`
	Title        string     `db:"title" json:"title"`
	Description  string     `db:"description" json:"description"`
	Date         time.Time  `db:"date" json:"date"`
	File         *string    `db:"file" json:"file,omitempty"`
	IsEmergency  bool       `db:"is_emergency" json:"is_emergency"`
	Confidential bool       `db:"confidential" json:"confidential"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`

	// User id of the record's patient, joined for ownership checks.
	PatientUserID int64 `db:"patient_user_id" json:"-"`
}

// RecordScope is the row filter derived from the requesting actor.
// None short-circuits to an empty result.
type RecordScope struct {
	None      bool
	PatientID int64
	DoctorID  int64
}

type Medication struct {
	Name     string `json:"name"`
	Dosage   string `json:"dosage"`
	Schedule string `json:"schedule,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Medications is stored as a jsonb array.
type Medications []Medication

func (m *Medications) Scan(src interface{}) error {
	var out Medications
	if err := scanJSON(src, &out); err != nil {
		return fmt.Errorf("failed to scan medications: %w", err)
	}
	*m = out
	return nil
}

func (m Medications) Value() (driver.Value, error) {
	if m == nil {
		return valueJSON([]Medication{})
	}
	return valueJSON([]Medication(m))
}

// Validate requires a non-empty list where every item names a drug and a dosage.
func (m Medications) Validate() error {
	if len(m) == 0 {
		return fmt.Errorf("at least one medication is required")
	}
	for i, med := range m {
		if strings.TrimSpace(med.Name) == "" {
			return fmt.Errorf("medication %d: name is required", i+1)
		}
		if strings.TrimSpace(med.Dosage) == "" {
			return fmt.Errorf("medication %d: dosage is required", i+1)
		}
	}
	return nil
}

// Prescription shares its identity with the medical record it belongs to.
type Prescription struct {
	MedicalRecordID int64       `db:"medical_record_id" json:"medical_record_id"`
	Medications     Medications `db:"medications" json:"medications"`
	Instructions    string      `db:"instructions" json:"instructions"`
	ValidUntil      time.Time   `db:"valid_until" json:"valid_until"`
}
