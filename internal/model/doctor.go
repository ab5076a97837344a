package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Speciality is a medical speciality (cardiology, paediatrics...).
type Speciality struct {
	ID          int64  `db:"id" json:"id" yaml:"-"`
	Name        string `db:"name" json:"name" yaml:"name"`
	Description string `db:"description" json:"description" yaml:"description"`
}

// Availability maps a weekday name to its "HH:MM" time slots.
type Availability map[string][]string

// Scan implements sql.Scanner.
func (a *Availability) Scan(src interface{}) error {
	m := Availability{}
	if err := scanJSON(src, &m); err != nil {
		return fmt.Errorf("failed to scan availability: %w", err)
	}
	*a = m
	return nil
}

// Value implements driver.Valuer.
func (a Availability) Value() (driver.Value, error) {
	if a == nil {
		return valueJSON(map[string][]string{})
	}
	return valueJSON(map[string][]string(a))
}

// Validate checks that every key is a weekday and every slot is a zero-padded
// HH:MM, the form appointment times are matched against.
func (a Availability) Validate() error {
	for day, slots := range a {
		if !isWeekday(day) {
			return fmt.Errorf("unknown day %q", day)
		}
		for _, slot := range slots {
			t, err := time.Parse("15:04", slot)
			if err != nil || t.Format("15:04") != slot {
				return fmt.Errorf("invalid time slot %q for %s", slot, day)
			}
		}
	}
	return nil
}

func isWeekday(day string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), day) {
			return true
		}
	}
	return false
}

// Doctor is the doctor profile attached 1:1 to a user.
type Doctor struct {
	ID            int64        `db:"id" json:"id"`
	UserID        int64        `db:"user_id" json:"user_id"`
	SpecialityID  *int64       `db:"speciality_id" json:"speciality_id,omitempty"`
	LicenseNumber string       `db:"license_number" json:"license_number"`
	Availability  Availability `db:"availability" json:"availability"`

	// Read-only join columns.
	FullName       string  `db:"full_name" json:"full_name"`
	SpecialityName *string `db:"speciality_name" json:"speciality_name,omitempty"`
}

// DisplayName renders "Dr. <full name>".
func (d *Doctor) DisplayName() string {
	return "Dr. " + d.FullName
}
