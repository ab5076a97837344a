package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jwalitptl/medrec/internal/model"
)

type userRepo struct{ s *Store }

func (r userRepo) insert(user *model.User) error {
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return conflict("create user", "users_username_key")
		}
	}
	if user.Role == "" {
		user.Role = model.DefaultRole
	}
	if user.DateJoined.IsZero() {
		user.DateJoined = r.s.now()
	}
	user.ID = r.s.next("users")
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r userRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insert(user)
}

func (r userRepo) CreateWithPatient(_ context.Context, user *model.User, patient *model.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.insert(user); err != nil {
		return err
	}
	patient.UserID = user.ID
	return patientRepo(r).insert(patient)
}

func (r userRepo) Get(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, notFound("get user")
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) GetByLogin(_ context.Context, login string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var byEmail *model.User
	for _, u := range r.s.users {
		if u.Username == login {
			cp := *u
			return &cp, nil
		}
		if strings.EqualFold(u.Email, login) && (byEmail == nil || u.ID < byEmail.ID) {
			byEmail = u
		}
	}
	if byEmail == nil {
		return nil, notFound("get user by login")
	}
	cp := *byEmail
	return &cp, nil
}

func (r userRepo) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return notFound("update last login")
	}
	u.LastLogin = &at
	return nil
}

func (r userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return notFound("delete user")
	}
	r.s.cascadeUser(id)
	return nil
}

type patientRepo struct{ s *Store }

func (r patientRepo) insert(patient *model.Patient) error {
	if _, ok := r.s.users[patient.UserID]; !ok {
		return notFound("create patient")
	}
	for _, p := range r.s.patients {
		if p.UserID == patient.UserID {
			return conflict("create patient", "patients_user_id_key")
		}
	}
	patient.ID = r.s.next("patients")
	cp := *patient
	r.s.patients[patient.ID] = &cp
	return nil
}

func (r patientRepo) Create(_ context.Context, patient *model.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insert(patient)
}

func (r patientRepo) Update(_ context.Context, patient *model.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[patient.ID]
	if !ok {
		return notFound("update patient")
	}
	p.BirthDate = patient.BirthDate
	p.BloodGroup = patient.BloodGroup
	p.MedicalHistory = patient.MedicalHistory
	return nil
}

func (r patientRepo) Get(_ context.Context, id int64) (*model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.patients[id]
	if !ok {
		return nil, notFound("get patient")
	}
	return r.s.patientView(p), nil
}

func (r patientRepo) GetByUserID(_ context.Context, userID int64) (*model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.patients {
		if p.UserID == userID {
			return r.s.patientView(p), nil
		}
	}
	return nil, notFound("get patient by user")
}

func (r patientRepo) List(_ context.Context) ([]*model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.Patient{}
	for _, p := range r.s.patients {
		out = append(out, r.s.patientView(p))
	}
	sortPatients(r.s, out)
	return out, nil
}

func (r patientRepo) ListByDoctor(_ context.Context, doctorID int64) ([]*model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.Patient{}
	for id := range r.s.attributed[doctorID] {
		if p, ok := r.s.patients[id]; ok {
			out = append(out, r.s.patientView(p))
		}
	}
	sortPatients(r.s, out)
	return out, nil
}

func (r patientRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.patients)), nil
}

type doctorRepo struct{ s *Store }

func (r doctorRepo) Create(_ context.Context, doctor *model.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[doctor.UserID]; !ok {
		return notFound("create doctor")
	}
	for _, d := range r.s.doctors {
		if d.UserID == doctor.UserID {
			return conflict("create doctor", "doctors_user_id_key")
		}
	}
	doctor.ID = r.s.next("doctors")
	cp := *doctor
	r.s.doctors[doctor.ID] = &cp
	return nil
}

func (r doctorRepo) Update(_ context.Context, doctor *model.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[doctor.ID]
	if !ok {
		return notFound("update doctor")
	}
	d.SpecialityID = doctor.SpecialityID
	d.LicenseNumber = doctor.LicenseNumber
	d.Availability = doctor.Availability
	return nil
}

func (r doctorRepo) Get(_ context.Context, id int64) (*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.doctors[id]
	if !ok {
		return nil, notFound("get doctor")
	}
	return r.s.doctorView(d), nil
}

func (r doctorRepo) GetByUserID(_ context.Context, userID int64) (*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, d := range r.s.doctors {
		if d.UserID == userID {
			return r.s.doctorView(d), nil
		}
	}
	return nil, notFound("get doctor by user")
}

func (r doctorRepo) List(_ context.Context) ([]*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.Doctor{}
	for _, d := range r.s.doctors {
		out = append(out, r.s.doctorView(d))
	}
	sort.SliceStable(out, func(i, j int) bool {
		ui, uj := r.s.users[out[i].UserID], r.s.users[out[j].UserID]
		if ui.LastName != uj.LastName {
			return ui.LastName < uj.LastName
		}
		if ui.FirstName != uj.FirstName {
			return ui.FirstName < uj.FirstName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r doctorRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.doctors)), nil
}

type attributionRepo struct{ s *Store }

func (r attributionRepo) Attribute(_ context.Context, doctorID, patientID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.doctors[doctorID]; !ok {
		return notFound("attribute patient")
	}
	if _, ok := r.s.patients[patientID]; !ok {
		return notFound("attribute patient")
	}
	r.s.attribute(doctorID, patientID)
	return nil
}

func (r attributionRepo) PatientIDs(_ context.Context, doctorID int64) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := []int64{}
	for id := range r.s.attributed[doctorID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
