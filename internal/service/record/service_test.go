package record

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/policy"
	"github.com/jwalitptl/medrec/internal/repository/memory"
	"github.com/jwalitptl/medrec/internal/storage"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
)

type fixture struct {
	svc    *Service
	store  *memory.Store
	a, b   policy.Actor
	doctor policy.Actor
	admin  policy.Actor
}

// Patient A has three records, patient B two; the doctor is attributed A only.
func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time {
		created = created.Add(time.Minute)
		return created
	})

	patientActor := func(username string) policy.Actor {
		u := &model.User{Username: username, Role: model.RolePatient}
		p := &model.Patient{}
		require.NoError(t, store.Users().CreateWithPatient(ctx, u, p))
		return policy.Actor{User: u, Patient: p}
	}
	a, b := patientActor("a"), patientActor("b")

	du := &model.User{Username: "d", Role: model.RoleDoctor}
	require.NoError(t, store.Users().Create(ctx, du))
	d := &model.Doctor{UserID: du.ID}
	require.NoError(t, store.Doctors().Create(ctx, d))
	require.NoError(t, store.Attributions().Attribute(ctx, d.ID, a.Patient.ID))

	day := func(n int) time.Time { return time.Date(2024, 3, n, 0, 0, 0, 0, time.UTC) }
	seed := []struct {
		patient int64
		title   string
		date    time.Time
	}{
		{a.Patient.ID, "a-old", day(1)},
		{a.Patient.ID, "a-same-day-first", day(5)},
		{a.Patient.ID, "a-same-day-second", day(5)},
		{b.Patient.ID, "b-1", day(2)},
		{b.Patient.ID, "b-2", day(9)},
	}
	for _, r := range seed {
		require.NoError(t, store.Records().Create(ctx, &model.MedicalRecord{
			PatientID: r.patient, Title: r.title, Date: r.date, Type: model.RecordTypeConsult,
		}))
	}

	files := storage.New(afero.NewMemMapFs())
	return &fixture{
		svc:    NewService(store.Records(), store.Patients(), store.Prescriptions(), files, nil),
		store:  store,
		a:      a,
		b:      b,
		doctor: policy.Actor{User: du, Doctor: d, Attributed: policy.NewPatientSet(a.Patient.ID)},
		admin:  policy.Actor{User: &model.User{ID: 900, Role: model.RoleAdmin}},
	}
}

func titles(records []*model.MedicalRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Title
	}
	return out
}

func TestService_List_DoctorSeesAttributedPatientsOnly(t *testing.T) {
	fx := setup(t)

	got, err := fx.svc.List(context.Background(), fx.doctor, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-same-day-second", "a-same-day-first", "a-old"}, titles(got))
}

func TestService_List_RoleScopes(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	got, err := fx.svc.List(ctx, fx.b, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b-2", "b-1"}, titles(got))

	got, err = fx.svc.List(ctx, fx.b, fx.a.Patient.ID)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = fx.svc.List(ctx, fx.admin, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = fx.svc.List(ctx, policy.Actor{User: &model.User{Role: model.RoleDoctor}}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = fx.svc.List(ctx, fx.doctor, 999)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestService_Get(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	bRecords, err := fx.svc.List(ctx, fx.b, 0)
	require.NoError(t, err)
	id := bRecords[0].ID

	detail, err := fx.svc.Get(ctx, fx.b, id)
	require.NoError(t, err)
	assert.Nil(t, detail.Prescription)

	_, err = fx.svc.Get(ctx, fx.a, id)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	_, err = fx.svc.Get(ctx, fx.doctor, id)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	_, err = fx.svc.Get(ctx, fx.admin, id)
	assert.NoError(t, err)
	_, err = fx.svc.Get(ctx, fx.admin, 999)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestService_Create_DeniedForPatients(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, fx.a, fx.a.Patient.ID, &form.MedicalRecordForm{
		RecordType: "CONSULT", Title: "self-made", Description: "x",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	got, err := fx.svc.List(ctx, fx.a, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestService_Create_SetsOwnershipFromContext(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	rec, err := fx.svc.Create(ctx, fx.doctor, fx.a.Patient.ID, &form.MedicalRecordForm{
		RecordType: "LAB", Title: "Blood panel", Description: "normal", Date: "2024-03-20",
		File: uploadHeader(t, "panel.pdf", "%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, fx.a.Patient.ID, rec.PatientID)
	require.NotNil(t, rec.DoctorID)
	assert.Equal(t, fx.doctor.Doctor.ID, *rec.DoctorID)
	require.NotNil(t, rec.File)

	f, name, err := fx.svc.Attachment(ctx, fx.a, rec.ID)
	require.NoError(t, err)
	defer f.Close()
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(body))
	assert.Contains(t, name, "panel.pdf")

	_, err = fx.svc.Create(ctx, fx.admin, 999, &form.MedicalRecordForm{RecordType: "LAB", Title: "t", Description: "d"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	adminRec, err := fx.svc.Create(ctx, fx.admin, fx.b.Patient.ID, &form.MedicalRecordForm{RecordType: "OTHER", Title: "t", Description: "d"})
	require.NoError(t, err)
	assert.Nil(t, adminRec.DoctorID)
	_, _, err = fx.svc.Attachment(ctx, fx.admin, adminRec.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func uploadHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	mf, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mf.RemoveAll() })
	return mf.File["file"][0]
}
