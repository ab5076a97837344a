package form

import (
	"strings"

	"github.com/jwalitptl/medrec/internal/model"
)

type PharmacyForm struct {
	Name      string  `form:"name" json:"name" binding:"required,notblank,max=200"`
	Address   string  `form:"address" json:"address" binding:"required,notblank"`
	Phone     string  `form:"phone" json:"phone" binding:"required,notblank,max=30"`
	IsOnDuty  bool    `form:"is_on_duty" json:"is_on_duty"`
	Latitude  float64 `form:"latitude" json:"latitude" binding:"gte=-90,lte=90"`
	Longitude float64 `form:"longitude" json:"longitude" binding:"gte=-180,lte=180"`
}

func (f *PharmacyForm) ToModel() *model.Pharmacy {
	return &model.Pharmacy{
		Name:      strings.TrimSpace(f.Name),
		Address:   f.Address,
		Phone:     strings.TrimSpace(f.Phone),
		IsOnDuty:  f.IsOnDuty,
		Latitude:  f.Latitude,
		Longitude: f.Longitude,
	}
}

type SpecialityForm struct {
	Name        string `form:"name" json:"name" binding:"required,notblank,max=100"`
	Description string `form:"description" json:"description"`
}

func (f *SpecialityForm) ToModel() *model.Speciality {
	return &model.Speciality{
		Name:        strings.TrimSpace(f.Name),
		Description: f.Description,
	}
}

// AttributionForm links a patient to a doctor.
type AttributionForm struct {
	Patient int64 `form:"patient" json:"patient" binding:"required"`
}
