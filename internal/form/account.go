package form

import (
	"strings"

	"github.com/jwalitptl/medrec/internal/model"
)

// RegistrationForm signs up a PATIENT or DOCTOR account. ADMIN accounts are
// created from the command line only.
type RegistrationForm struct {
	Username  string `form:"username" json:"username" binding:"required,max=150,username"`
	FirstName string `form:"first_name" json:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" json:"last_name" binding:"max=150"`
	Email     string `form:"email" json:"email" binding:"required,email,max=254"`
	Role      string `form:"role" json:"role" binding:"required,oneof=PATIENT DOCTOR"`
	Password1 string `form:"password1" json:"password1" binding:"required,min=8"`
	Password2 string `form:"password2" json:"password2" binding:"required,eqfield=Password1"`
}

// ToUser builds the account without its password hash.
func (f *RegistrationForm) ToUser() *model.User {
	return &model.User{
		Username:  strings.TrimSpace(f.Username),
		Email:     strings.ToLower(strings.TrimSpace(f.Email)),
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Role:      model.Role(f.Role),
		IsActive:  true,
	}
}

// LoginForm accepts either a username or an email in Username.
type LoginForm struct {
	Username   string `form:"username" json:"username" binding:"required"`
	Password   string `form:"password" json:"password" binding:"required"`
	RememberMe bool   `form:"remember_me" json:"remember_me"`
}

type PatientForm struct {
	BirthDate      string `form:"birth_date" json:"birth_date" binding:"required,datetime=2006-01-02,notfuture"`
	BloodGroup     string `form:"blood_group" json:"blood_group" binding:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	MedicalHistory string `form:"medical_history" json:"medical_history"`
}

// Apply copies the submitted values onto an existing profile.
func (f *PatientForm) Apply(p *model.Patient) error {
	d, err := parseDate(f.BirthDate)
	if err != nil {
		return err
	}
	p.BirthDate = &d
	p.BloodGroup = model.BloodGroup(f.BloodGroup)
	p.MedicalHistory = f.MedicalHistory
	return nil
}

type DoctorForm struct {
	Speciality    int64  `form:"speciality" json:"speciality"`
	LicenseNumber string `form:"license_number" json:"license_number" binding:"required,notblank,max=50"`
	Availability  string `form:"availability" json:"availability" binding:"omitempty,availability"`
}

// Apply copies the submitted values onto an existing or new profile.
func (f *DoctorForm) Apply(d *model.Doctor) error {
	a, err := parseAvailability(f.Availability)
	if err != nil {
		return err
	}
	d.LicenseNumber = strings.TrimSpace(f.LicenseNumber)
	d.Availability = a
	d.SpecialityID = nil
	if f.Speciality > 0 {
		id := f.Speciality
		d.SpecialityID = &id
	}
	return nil
}
