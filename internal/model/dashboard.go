package model

// Dashboard is the role-dependent aggregate shown on /dashboard/.
type Dashboard struct {
	Role             Role           `json:"role"`
	Appointments     []*Appointment `json:"appointments,omitempty"`
	DoctorCount      *int64         `json:"doctor_count,omitempty"`
	PatientCount     *int64         `json:"patient_count,omitempty"`
	AppointmentCount *int64         `json:"appointment_count,omitempty"`
	Warnings         []string       `json:"-"`
	Errors           []string       `json:"-"`
}

// DashboardAppointmentLimit caps the upcoming appointments shown.
const DashboardAppointmentLimit = 5
