package model

import "time"

// BloodGroup is one of the eight ABO/Rh groups.
type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
)

// BloodGroups lists the valid groups in display order.
var BloodGroups = []BloodGroup{
	BloodGroupAPos, BloodGroupANeg,
	BloodGroupBPos, BloodGroupBNeg,
	BloodGroupABPos, BloodGroupABNeg,
	BloodGroupOPos, BloodGroupONeg,
}

func (b BloodGroup) Valid() bool {
	for _, g := range BloodGroups {
		if g == b {
			return true
		}
	}
	return false
}

// Patient is the patient profile attached 1:1 to a user. BirthDate and
// BloodGroup stay empty until the profile form is completed.
type Patient struct {
	ID             int64      `db:"id" json:"id"`
	UserID         int64      `db:"user_id" json:"user_id"`
	BirthDate      *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	BloodGroup     BloodGroup `db:"blood_group" json:"blood_group"`
	MedicalHistory string     `db:"medical_history" json:"medical_history"`

	FullName string `db:"full_name" json:"full_name"`
}

// Complete reports whether the clinical profile fields are filled in.
func (p *Patient) Complete() bool {
	return p.BirthDate != nil && p.BloodGroup.Valid()
}
