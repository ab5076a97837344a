package model

import "time"

type Severity string

const (
	SeverityMild            Severity = "MILD"
	SeverityModerate        Severity = "MODERATE"
	SeveritySevere          Severity = "SEVERE"
	SeverityLifeThreatening Severity = "LIFE_THREATENING"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere, SeverityLifeThreatening:
		return true
	}
	return false
}

type Allergy struct {
	ID        int64     `db:"id" json:"id"`
	PatientID int64     `db:"patient_id" json:"patient_id"`
	Name      string    `db:"name" json:"name"`
	Severity  Severity  `db:"severity" json:"severity"`
	Reaction  string    `db:"reaction" json:"reaction"`
	OnsetDate time.Time `db:"onset_date" json:"onset_date"`
	Active    bool      `db:"active" json:"active"`
}
