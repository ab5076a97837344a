package handler

import (
	"fmt"
	"strings"
)

// Route names used for redirects.
const (
	RouteHome             = "home"
	RouteDashboard        = "dashboard"
	RouteRegister         = "register"
	RouteLogin            = "login"
	RouteLogout           = "logout"
	RouteDoctorList       = "doctor_list"
	RouteDoctorDetail     = "doctor_detail"
	RouteDoctorAttribute  = "doctor_attribute"
	RoutePatientList      = "patient_list"
	RoutePatientProfile   = "patient_profile"
	RouteDoctorProfile    = "doctor_profile"
	RouteAppointmentList  = "appointment_list"
	RouteAppointmentNew   = "appointment_create"
	RouteAppointmentState = "appointment_status"
	RouteRecordListAll    = "record_list_all"
	RouteRecordList       = "medical_record_list"
	RouteRecordCreate     = "medical_record_create"
	RouteRecordDetail     = "medical_record_detail"
	RouteRecordFile       = "medical_record_file"
	RoutePrescriptionNew  = "prescription_create"
	RouteAllergyList      = "allergy_list"
	RouteAllergyCreate    = "allergy_create"
	RoutePharmacyList     = "pharmacy_list"
	RoutePharmacyCreate   = "pharmacy_create"
	RouteSpecialityList   = "speciality_list"
	RouteSpecialityCreate = "speciality_create"
	RouteUserDelete       = "user_delete"
)

// Paths in gin syntax; every parameter is an integer id.
var Paths = map[string]string{
	RouteHome:             "/",
	RouteDashboard:        "/dashboard/",
	RouteRegister:         "/register/",
	RouteLogin:            "/login/",
	RouteLogout:           "/logout/",
	RouteDoctorList:       "/doctors/",
	RouteDoctorDetail:     "/doctors/:id/",
	RouteDoctorAttribute:  "/doctors/:id/patients/",
	RoutePatientList:      "/patients/",
	RoutePatientProfile:   "/profile/patient/",
	RouteDoctorProfile:    "/profile/doctor/",
	RouteAppointmentList:  "/appointments/",
	RouteAppointmentNew:   "/appointments/new/",
	RouteAppointmentState: "/appointments/:id/status/",
	RouteRecordListAll:    "/records/",
	RouteRecordList:       "/patients/:id/records/",
	RouteRecordCreate:     "/patients/:id/records/new/",
	RouteRecordDetail:     "/records/:id/",
	RouteRecordFile:       "/records/:id/file/",
	RoutePrescriptionNew:  "/records/:id/prescription/",
	RouteAllergyList:      "/patients/:id/allergies/",
	RouteAllergyCreate:    "/patients/:id/allergies/new/",
	RoutePharmacyList:     "/pharmacies/",
	RoutePharmacyCreate:   "/pharmacies/new/",
	RouteSpecialityList:   "/specialities/",
	RouteSpecialityCreate: "/specialities/new/",
	RouteUserDelete:       "/users/:id/delete/",
}

// URL reverses a named route, filling its parameters in order.
func URL(name string, args ...int64) string {
	path, ok := Paths[name]
	if !ok {
		panic(fmt.Sprintf("handler: unknown route %q", name))
	}

	parts := strings.Split(path, "/")
	i := 0
	for j, part := range parts {
		if !strings.HasPrefix(part, ":") {
			continue
		}
		if i >= len(args) {
			panic(fmt.Sprintf("handler: route %q needs more arguments", name))
		}
		parts[j] = fmt.Sprint(args[i])
		i++
	}
	return strings.Join(parts, "/")
}
