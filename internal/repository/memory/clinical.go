package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jwalitptl/medrec/internal/model"
)

type specialityRepo struct{ s *Store }

func (r specialityRepo) Create(_ context.Context, speciality *model.Speciality) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sp := range r.s.specialities {
		if sp.Name == speciality.Name {
			return conflict("create speciality", "specialities_name_key")
		}
	}
	speciality.ID = r.s.next("specialities")
	cp := *speciality
	r.s.specialities[speciality.ID] = &cp
	return nil
}

func (r specialityRepo) List(_ context.Context) ([]*model.Speciality, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.Speciality{}
	for _, sp := range r.s.specialities {
		cp := *sp
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type pharmacyRepo struct{ s *Store }

func (r pharmacyRepo) Create(_ context.Context, pharmacy *model.Pharmacy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pharmacy.ID = r.s.next("pharmacies")
	cp := *pharmacy
	r.s.pharmacies[pharmacy.ID] = &cp
	return nil
}

func (r pharmacyRepo) List(_ context.Context, onDutyOnly bool) ([]*model.Pharmacy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.Pharmacy{}
	for _, p := range r.s.pharmacies {
		if onDutyOnly && !p.IsOnDuty {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type appointmentRepo struct{ s *Store }

func (r appointmentRepo) Create(_ context.Context, appt *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[appt.PatientID]; !ok {
		return notFound("create appointment")
	}
	if _, ok := r.s.doctors[appt.DoctorID]; !ok {
		return notFound("create appointment")
	}
	appt.ID = r.s.next("appointments")
	cp := *appt
	r.s.appointments[appt.ID] = &cp
	r.s.attribute(appt.DoctorID, appt.PatientID)
	return nil
}

func (r appointmentRepo) Get(_ context.Context, id int64) (*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, notFound("get appointment")
	}
	return r.s.appointmentView(a), nil
}

func (r appointmentRepo) UpdateStatus(_ context.Context, id int64, status model.AppointmentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return notFound("update appointment status")
	}
	a.Status = status
	return nil
}

func (r appointmentRepo) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if filters == nil {
		filters = &model.AppointmentFilters{}
	}

	out := []*model.Appointment{}
	for _, a := range r.s.appointments {
		if filters.PatientID > 0 && a.PatientID != filters.PatientID {
			continue
		}
		if filters.DoctorID > 0 && a.DoctorID != filters.DoctorID {
			continue
		}
		if !filters.From.IsZero() && a.DateTime.Before(filters.From) {
			continue
		}
		out = append(out, r.s.appointmentView(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateTime.Equal(out[j].DateTime) {
			return out[i].DateTime.Before(out[j].DateTime)
		}
		return out[i].ID < out[j].ID
	})
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (r appointmentRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.appointments)), nil
}

type recordRepo struct{ s *Store }

func (r recordRepo) Create(_ context.Context, record *model.MedicalRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[record.PatientID]; !ok {
		return notFound("create medical record")
	}
	now := r.s.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.ID = r.s.next("medical_records")
	r.s.records[record.ID] = r.s.recordView(record)
	return nil
}

func (r recordRepo) Get(_ context.Context, id int64) (*model.MedicalRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.records[id]
	if !ok {
		return nil, notFound("get medical record")
	}
	return r.s.recordView(rec), nil
}

func (r recordRepo) List(_ context.Context, scope model.RecordScope, patientID int64) ([]*model.MedicalRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*model.MedicalRecord{}
	var visible func(*model.MedicalRecord) bool
	switch {
	case scope.None:
		return out, nil
	case scope.PatientID > 0:
		visible = func(rec *model.MedicalRecord) bool { return rec.PatientID == scope.PatientID }
	case scope.DoctorID > 0:
		attributed := r.s.attributed[scope.DoctorID]
		visible = func(rec *model.MedicalRecord) bool {
			_, ok := attributed[rec.PatientID]
			return ok
		}
	default:
		return out, nil
	}

	for _, rec := range r.s.records {
		if !visible(rec) || (patientID > 0 && rec.PatientID != patientID) {
			continue
		}
		out = append(out, r.s.recordView(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out, nil
}

type prescriptionRepo struct{ s *Store }

func (r prescriptionRepo) Create(_ context.Context, p *model.Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.records[p.MedicalRecordID]; !ok {
		return notFound("create prescription")
	}
	if _, ok := r.s.prescriptions[p.MedicalRecordID]; ok {
		return conflict("create prescription", "prescriptions_pkey")
	}
	cp := *p
	cp.Medications = append(model.Medications(nil), p.Medications...)
	r.s.prescriptions[p.MedicalRecordID] = &cp
	return nil
}

func (r prescriptionRepo) GetByRecord(_ context.Context, recordID int64) (*model.Prescription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.prescriptions[recordID]
	if !ok {
		return nil, notFound("get prescription")
	}
	cp := *p
	cp.Medications = append(model.Medications(nil), p.Medications...)
	return &cp, nil
}

type allergyRepo struct{ s *Store }

func (r allergyRepo) Create(_ context.Context, a *model.Allergy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[a.PatientID]; !ok {
		return notFound("create allergy")
	}
	a.ID = r.s.next("allergies")
	cp := *a
	r.s.allergies[a.ID] = &cp
	return nil
}

func (r allergyRepo) ListByPatient(_ context.Context, patientID int64) ([]*model.Allergy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.Allergy{}
	for _, a := range r.s.allergies {
		if a.PatientID == patientID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Active != b.Active {
			return a.Active
		}
		if !a.OnsetDate.Equal(b.OnsetDate) {
			return a.OnsetDate.After(b.OnsetDate)
		}
		return a.ID < b.ID
	})
	return out, nil
}

type auditRepo struct{ s *Store }

func (r auditRepo) Create(_ context.Context, log *model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if log.CreatedAt.IsZero() {
		log.CreatedAt = r.s.now()
	}
	if len(log.Metadata) == 0 {
		log.Metadata = []byte(`{}`)
	}
	log.ID = r.s.next("audit_logs")
	cp := *log
	r.s.audits[log.ID] = &cp
	return nil
}

func (r auditRepo) ListByEntity(_ context.Context, entityType string, entityID int64) ([]*model.AuditLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.AuditLog{}
	for _, l := range r.s.audits {
		if l.EntityType == entityType && l.EntityID == entityID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r auditRepo) Cleanup(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, l := range r.s.audits {
		if l.CreatedAt.Before(before) {
			delete(r.s.audits, id)
			n++
		}
	}
	return n, nil
}
