// Package memory implements the repository interfaces in process. It mirrors
// the Postgres schema's uniqueness, ordering and cascade rules and backs the
// `serve --memory` development mode and the service and handler tests.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/repository"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
)

type Store struct {
	mu  sync.RWMutex
	seq map[string]int64
	now func() time.Time

	users         map[int64]*model.User
	doctors       map[int64]*model.Doctor
	patients      map[int64]*model.Patient
	specialities  map[int64]*model.Speciality
	pharmacies    map[int64]*model.Pharmacy
	appointments  map[int64]*model.Appointment
	records       map[int64]*model.MedicalRecord
	prescriptions map[int64]*model.Prescription
	allergies     map[int64]*model.Allergy
	audits        map[int64]*model.AuditLog
	attributed    map[int64]map[int64]struct{}
}

func New() *Store {
	return &Store{
		seq:           make(map[string]int64),
		now:           time.Now,
		users:         make(map[int64]*model.User),
		doctors:       make(map[int64]*model.Doctor),
		patients:      make(map[int64]*model.Patient),
		specialities:  make(map[int64]*model.Speciality),
		pharmacies:    make(map[int64]*model.Pharmacy),
		appointments:  make(map[int64]*model.Appointment),
		records:       make(map[int64]*model.MedicalRecord),
		prescriptions: make(map[int64]*model.Prescription),
		allergies:     make(map[int64]*model.Allergy),
		audits:        make(map[int64]*model.AuditLog),
		attributed:    make(map[int64]map[int64]struct{}),
	}
}

// SetClock overrides the time source used for defaulted timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() repository.UserRepository                { return userRepo{s} }
func (s *Store) Doctors() repository.DoctorRepository            { return doctorRepo{s} }
func (s *Store) Patients() repository.PatientRepository          { return patientRepo{s} }
func (s *Store) Attributions() repository.AttributionRepository  { return attributionRepo{s} }
func (s *Store) Specialities() repository.SpecialityRepository   { return specialityRepo{s} }
func (s *Store) Pharmacies() repository.PharmacyRepository       { return pharmacyRepo{s} }
func (s *Store) Appointments() repository.AppointmentRepository  { return appointmentRepo{s} }
func (s *Store) Records() repository.MedicalRecordRepository     { return recordRepo{s} }
func (s *Store) Prescriptions() repository.PrescriptionRepository { return prescriptionRepo{s} }
func (s *Store) Allergies() repository.AllergyRepository         { return allergyRepo{s} }
func (s *Store) Audit() repository.AuditRepository               { return auditRepo{s} }

func (s *Store) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func notFound(op string) error {
	return fmt.Errorf("failed to %s: %w", op, apperrors.NotFoundErr)
}

func conflict(op, constraint string) error {
	return fmt.Errorf("failed to %s: %w (%s)", op, apperrors.ConflictErr, constraint)
}

func fullName(u *model.User) string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// cascadeUser removes a user and everything that references it.
func (s *Store) cascadeUser(userID int64) {
	for id, d := range s.doctors {
		if d.UserID == userID {
			s.cascadeDoctor(id)
		}
	}
	for id, p := range s.patients {
		if p.UserID == userID {
			s.cascadePatient(id)
		}
	}
	delete(s.users, userID)
}

func (s *Store) cascadeDoctor(doctorID int64) {
	for id, a := range s.appointments {
		if a.DoctorID == doctorID {
			delete(s.appointments, id)
		}
	}
	for _, r := range s.records {
		if r.DoctorID != nil && *r.DoctorID == doctorID {
			r.DoctorID = nil
		}
	}
	delete(s.attributed, doctorID)
	delete(s.doctors, doctorID)
}

func (s *Store) cascadePatient(patientID int64) {
	for id, a := range s.appointments {
		if a.PatientID == patientID {
			delete(s.appointments, id)
		}
	}
	for id, r := range s.records {
		if r.PatientID == patientID {
			delete(s.prescriptions, id)
			delete(s.records, id)
		}
	}
	for id, a := range s.allergies {
		if a.PatientID == patientID {
			delete(s.allergies, id)
		}
	}
	for _, set := range s.attributed {
		delete(set, patientID)
	}
	delete(s.patients, patientID)
}

func (s *Store) attribute(doctorID, patientID int64) {
	set, ok := s.attributed[doctorID]
	if !ok {
		set = make(map[int64]struct{})
		s.attributed[doctorID] = set
	}
	set[patientID] = struct{}{}
}

func (s *Store) patientView(p *model.Patient) *model.Patient {
	cp := *p
	cp.FullName = fullName(s.users[p.UserID])
	return &cp
}

func (s *Store) doctorView(d *model.Doctor) *model.Doctor {
	cp := *d
	cp.FullName = fullName(s.users[d.UserID])
	cp.SpecialityName = nil
	if d.SpecialityID != nil {
		if sp, ok := s.specialities[*d.SpecialityID]; ok {
			name := sp.Name
			cp.SpecialityName = &name
		}
	}
	return &cp
}

func (s *Store) appointmentView(a *model.Appointment) *model.Appointment {
	cp := *a
	if p, ok := s.patients[a.PatientID]; ok {
		cp.PatientName = fullName(s.users[p.UserID])
	}
	if d, ok := s.doctors[a.DoctorID]; ok {
		cp.DoctorName = fullName(s.users[d.UserID])
	}
	return &cp
}

func (s *Store) recordView(r *model.MedicalRecord) *model.MedicalRecord {
	cp := *r
	if r.DoctorID != nil {
		id := *r.DoctorID
		cp.DoctorID = &id
	}
	if p, ok := s.patients[r.PatientID]; ok {
		cp.PatientUserID = p.UserID
	}
	return &cp
}

func sortPatients(s *Store, out []*model.Patient) {
	sort.SliceStable(out, func(i, j int) bool {
		ui, uj := s.users[out[i].UserID], s.users[out[j].UserID]
		if ui.LastName != uj.LastName {
			return ui.LastName < uj.LastName
		}
		if ui.FirstName != uj.FirstName {
			return ui.FirstName < uj.FirstName
		}
		return out[i].ID < out[j].ID
	})
}

func (s *Store) Repositories() repository.Set {
	return repository.Set{
		Users:         s.Users(),
		Patients:      s.Patients(),
		Doctors:       s.Doctors(),
		Attributions:  s.Attributions(),
		Specialities:  s.Specialities(),
		Pharmacies:    s.Pharmacies(),
		Appointments:  s.Appointments(),
		Records:       s.Records(),
		Prescriptions: s.Prescriptions(),
		Allergies:     s.Allergies(),
		Audit:         s.Audit(),
	}
}
