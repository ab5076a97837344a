package form

import (
	"mime/multipart"
	"strings"
	"time"

	"github.com/jwalitptl/medrec/internal/model"
)

type AppointmentForm struct {
	Doctor int64 `form:"doctor" json:"doctor" binding:"required"`
	// Patient is ignored for PATIENT accounts, whose own profile is used.
	Patient         int64  `form:"patient" json:"patient"`
	DateTime        string `form:"date_time" json:"date_time" binding:"required,datetime=2006-01-02T15:04"`
	AppointmentType string `form:"appointment_type" json:"appointment_type" binding:"omitempty,oneof=IN_PERSON REMOTE"`
	Notes           string `form:"notes" json:"notes" binding:"max=2000"`
}

func (f *AppointmentForm) ToModel() (*model.Appointment, error) {
	at, err := time.ParseInLocation(model.DateTimeLayout, f.DateTime, now().Location())
	if err != nil {
		return nil, err
	}
	typ := model.AppointmentType(f.AppointmentType)
	if typ == "" {
		typ = model.AppointmentTypeInPerson
	}
	return &model.Appointment{
		PatientID: f.Patient,
		DoctorID:  f.Doctor,
		DateTime:  at,
		Status:    model.AppointmentStatusPending,
		Type:      typ,
		Notes:     f.Notes,
	}, nil
}

type AppointmentStatusForm struct {
	Status string `form:"status" json:"status" binding:"required,oneof=CONFIRMED CANCELLED COMPLETED"`
}

type MedicalRecordForm struct {
	RecordType   string                `form:"record_type" json:"record_type" binding:"required,oneof=CONSULT LAB IMAGING PRESCRIPTION OTHER"`
	Title        string                `form:"title" json:"title" binding:"required,notblank,max=200"`
	Description  string                `form:"description" json:"description" binding:"required,notblank"`
	Date         string                `form:"date" json:"date" binding:"omitempty,datetime=2006-01-02,notfuture"`
	IsEmergency  bool                  `form:"is_emergency" json:"is_emergency"`
	Confidential bool                  `form:"confidential" json:"confidential"`
	File         *multipart.FileHeader `form:"file" json:"-"`
}

// ToModel builds the record; the date defaults to today. Patient and doctor
// are set by the caller from the request context.
func (f *MedicalRecordForm) ToModel() (*model.MedicalRecord, error) {
	date := model.Today(now())
	if f.Date != "" {
		d, err := parseDate(f.Date)
		if err != nil {
			return nil, err
		}
		date = d
	}
	return &model.MedicalRecord{
		Type:         model.RecordType(f.RecordType),
		Title:        strings.TrimSpace(f.Title),
		Description:  f.Description,
		Date:         date,
		IsEmergency:  f.IsEmergency,
		Confidential: f.Confidential,
	}, nil
}

// PrescriptionForm takes the medications as a JSON array of
// {"name", "dosage", "schedule", "duration"} objects.
type PrescriptionForm struct {
	Medications  string `form:"medications" json:"medications" binding:"required,medications"`
	Instructions string `form:"instructions" json:"instructions"`
	ValidUntil   string `form:"valid_until" json:"valid_until" binding:"required,datetime=2006-01-02"`
}

func (f *PrescriptionForm) ToModel() (*model.Prescription, error) {
	meds, err := parseMedications(f.Medications)
	if err != nil {
		return nil, err
	}
	until, err := parseDate(f.ValidUntil)
	if err != nil {
		return nil, err
	}
	return &model.Prescription{
		Medications:  meds,
		Instructions: f.Instructions,
		ValidUntil:   until,
	}, nil
}

type AllergyForm struct {
	Name      string `form:"name" json:"name" binding:"required,notblank,max=100"`
	Severity  string `form:"severity" json:"severity" binding:"required,oneof=MILD MODERATE SEVERE LIFE_THREATENING"`
	Reaction  string `form:"reaction" json:"reaction" binding:"required,notblank"`
	OnsetDate string `form:"onset_date" json:"onset_date" binding:"required,datetime=2006-01-02,notfuture"`
	Active    *bool  `form:"active" json:"active"`
}

func (f *AllergyForm) ToModel() (*model.Allergy, error) {
	onset, err := parseDate(f.OnsetDate)
	if err != nil {
		return nil, err
	}
	active := true
	if f.Active != nil {
		active = *f.Active
	}
	return &model.Allergy{
		Name:      strings.TrimSpace(f.Name),
		Severity:  model.Severity(f.Severity),
		Reaction:  f.Reaction,
		OnsetDate: onset,
		Active:    active,
	}, nil
}
