package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/medrec/internal/model"
)

func patientActor(userID, patientID int64) Actor {
	return Actor{
		User:    &model.User{ID: userID, Role: model.RolePatient},
		Patient: &model.Patient{ID: patientID, UserID: userID},
	}
}

func doctorActor(userID, doctorID int64, attributed ...int64) Actor {
	return Actor{
		User:       &model.User{ID: userID, Role: model.RoleDoctor},
		Doctor:     &model.Doctor{ID: doctorID, UserID: userID},
		Attributed: NewPatientSet(attributed...),
	}
}

func TestIsDoctorOrAdmin(t *testing.T) {
	assert.True(t, IsDoctorOrAdmin(&model.User{Role: model.RoleDoctor}))
	assert.True(t, IsDoctorOrAdmin(&model.User{Role: model.RoleAdmin}))
	assert.False(t, IsDoctorOrAdmin(&model.User{Role: model.RolePatient}))
	assert.False(t, IsDoctorOrAdmin(&model.User{Role: "NURSE"}))
	assert.False(t, IsDoctorOrAdmin(nil))
}

func TestIsPatientOwner(t *testing.T) {
	rec := &model.MedicalRecord{PatientID: 1, PatientUserID: 10}
	assert.True(t, IsPatientOwner(&model.User{ID: 10}, rec))
	assert.False(t, IsPatientOwner(&model.User{ID: 11}, rec))
	assert.False(t, IsPatientOwner(nil, rec))
}

func TestCanViewRecord(t *testing.T) {
	rec := &model.MedicalRecord{ID: 5, PatientID: 1, PatientUserID: 10}

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"owner patient", patientActor(10, 1), true},
		{"other patient", patientActor(20, 2), false},
		{"attributed doctor", doctorActor(30, 3, 1), true},
		{"unattributed doctor", doctorActor(30, 3, 2), false},
		{"doctor without profile", Actor{User: &model.User{ID: 30, Role: model.RoleDoctor}}, false},
		{"admin", Actor{User: &model.User{ID: 1, Role: model.RoleAdmin}}, true},
		{"unknown role", Actor{User: &model.User{ID: 1, Role: "NURSE"}}, false},
		{"anonymous", Actor{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewRecord(tt.actor, rec))
		})
	}
}

func TestRecordScope(t *testing.T) {
	assert.Equal(t, model.RecordScope{PatientID: 1}, RecordScope(patientActor(10, 1)))
	assert.Equal(t, model.RecordScope{DoctorID: 3}, RecordScope(doctorActor(30, 3, 1)))
	assert.True(t, RecordScope(Actor{User: &model.User{Role: model.RoleAdmin}}).None)
	assert.True(t, RecordScope(Actor{User: &model.User{Role: model.RolePatient}}).None)
	assert.True(t, RecordScope(Actor{User: &model.User{Role: model.RoleDoctor}}).None)
	assert.True(t, RecordScope(Actor{}).None)
}

func TestCanViewPatient(t *testing.T) {
	p := &model.Patient{ID: 1, UserID: 10}
	assert.True(t, CanViewPatient(patientActor(10, 1), p))
	assert.False(t, CanViewPatient(patientActor(20, 2), p))
	assert.True(t, CanViewPatient(doctorActor(30, 3, 1), p))
	assert.False(t, CanViewPatient(doctorActor(30, 3), p))
	assert.True(t, CanViewPatient(Actor{User: &model.User{Role: model.RoleAdmin}}, p))
}

func TestCanManageAppointment(t *testing.T) {
	appt := &model.Appointment{ID: 1, PatientID: 1, DoctorID: 3}

	assert.True(t, CanManageAppointment(patientActor(10, 1), appt, model.AppointmentStatusCancelled))
	assert.False(t, CanManageAppointment(patientActor(10, 1), appt, model.AppointmentStatusConfirmed))
	assert.False(t, CanManageAppointment(patientActor(20, 2), appt, model.AppointmentStatusCancelled))
	assert.True(t, CanManageAppointment(doctorActor(30, 3), appt, model.AppointmentStatusConfirmed))
	assert.False(t, CanManageAppointment(doctorActor(40, 4), appt, model.AppointmentStatusConfirmed))
	assert.True(t, CanManageAppointment(Actor{User: &model.User{Role: model.RoleAdmin}}, appt, model.AppointmentStatusCompleted))
}
