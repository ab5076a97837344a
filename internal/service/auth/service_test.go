package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/medrec/internal/email"
	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/policy"
	"github.com/jwalitptl/medrec/internal/repository/memory"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
	"github.com/jwalitptl/medrec/pkg/security"
)

type mockMailer struct {
	sendWelcomeFunc func(ctx context.Context, to, name string) error
}

func (m *mockMailer) SendWelcome(ctx context.Context, to, name string) error {
	return m.sendWelcomeFunc(ctx, to, name)
}

func (m *mockMailer) SendCustom(context.Context, string, string, string) error { return nil }

func newTestService(store *memory.Store, mailer email.Service) *Service {
	if mailer == nil {
		mailer = email.NoopService{}
	}
	return NewService(store.Users(), store.Patients(), store.Doctors(), store.Attributions(),
		security.NewBcryptHasher(bcrypt.MinCost), mailer, nil)
}

func registration(username, role string) *form.RegistrationForm {
	return &form.RegistrationForm{
		Username:  username,
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     username + "@Example.com",
		Role:      role,
		Password1: "s3cret-pass",
		Password2: "s3cret-pass",
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("patient gets a profile", func(t *testing.T) {
		store := memory.New()
		svc := newTestService(store, nil)

		user, err := svc.Register(ctx, registration("jane", "PATIENT"))
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "jane@example.com", user.Email)
		assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

		p, err := store.Patients().GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", p.FullName)
	})

	t.Run("doctor has no profile yet", func(t *testing.T) {
		store := memory.New()
		svc := newTestService(store, nil)

		user, err := svc.Register(ctx, registration("house", "DOCTOR"))
		require.NoError(t, err)
		_, err = store.Doctors().GetByUserID(ctx, user.ID)
		assert.ErrorIs(t, err, apperrors.NotFoundErr)
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc := newTestService(memory.New(), nil)
		_, err := svc.Register(ctx, registration("jane", "PATIENT"))
		require.NoError(t, err)

		_, err = svc.Register(ctx, registration("jane", "DOCTOR"))
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrValidation, appErr.Code)
		assert.Equal(t, msgUsernameTaken, appErr.Fields["username"])
	})

	t.Run("admin role refused", func(t *testing.T) {
		svc := newTestService(memory.New(), nil)
		_, err := svc.Register(ctx, registration("root", "ADMIN"))
		assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	})

	t.Run("overlong password", func(t *testing.T) {
		svc := newTestService(memory.New(), nil)
		f := registration("jane", "PATIENT")
		f.Password1 = strings.Repeat("x", security.MaxPasswordBytes+1)
		f.Password2 = f.Password1

		_, err := svc.Register(ctx, f)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Contains(t, appErr.Fields["password1"], "too long")
	})

	t.Run("mail failure does not fail registration", func(t *testing.T) {
		svc := newTestService(memory.New(), &mockMailer{
			sendWelcomeFunc: func(context.Context, string, string) error { return errors.New("smtp down") },
		})
		_, err := svc.Register(ctx, registration("jane", "PATIENT"))
		assert.NoError(t, err)
	})
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newTestService(store, nil)
	_, err := svc.Register(ctx, registration("jane", "PATIENT"))
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "jane", "s3cret-pass")
	require.NoError(t, err)
	assert.NotNil(t, user.LastLogin)

	user, err = svc.Authenticate(ctx, "JANE@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "jane", user.Username)

	for _, tc := range []struct{ login, password string }{
		{"jane", "wrong-password"},
		{"nobody", "s3cret-pass"},
	} {
		_, err := svc.Authenticate(ctx, tc.login, tc.password)
		appErr, ok := apperrors.As(err)
		require.True(t, ok, tc.login)
		assert.Equal(t, msgInvalidLogin, appErr.Fields[form.NonFieldKey])
	}
}

func TestService_Actor(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newTestService(store, nil)

	pu, err := svc.Register(ctx, registration("pat", "PATIENT"))
	require.NoError(t, err)
	du, err := svc.Register(ctx, registration("doc", "DOCTOR"))
	require.NoError(t, err)

	actor, err := svc.Actor(ctx, du.ID)
	require.NoError(t, err)
	assert.Nil(t, actor.Doctor)
	assert.Equal(t, model.RecordScope{None: true}, policy.RecordScope(actor))

	doctor := &model.Doctor{UserID: du.ID, LicenseNumber: "L-1"}
	require.NoError(t, store.Doctors().Create(ctx, doctor))
	patient, err := store.Patients().GetByUserID(ctx, pu.ID)
	require.NoError(t, err)
	require.NoError(t, store.Attributions().Attribute(ctx, doctor.ID, patient.ID))

	actor, err = svc.Actor(ctx, du.ID)
	require.NoError(t, err)
	require.NotNil(t, actor.Doctor)
	assert.True(t, actor.Attributed.Contains(patient.ID))

	actor, err = svc.Actor(ctx, pu.ID)
	require.NoError(t, err)
	require.NotNil(t, actor.Patient)
	assert.Equal(t, patient.ID, actor.Patient.ID)

	_, err = svc.Actor(ctx, 999)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newTestService(store, nil)

	admin, err := svc.CreateAdmin(ctx, "root", "root@example.com", "admin-pass")
	require.NoError(t, err)
	victim, err := svc.Register(ctx, registration("jane", "PATIENT"))
	require.NoError(t, err)

	adminActor := policy.Actor{User: admin}
	assert.True(t, apperrors.Is(svc.DeleteUser(ctx, policy.Actor{User: victim}, admin.ID), apperrors.ErrForbidden))
	assert.True(t, apperrors.Is(svc.DeleteUser(ctx, adminActor, admin.ID), apperrors.ErrBadRequest))
	require.NoError(t, svc.DeleteUser(ctx, adminActor, victim.ID))
	assert.True(t, apperrors.Is(svc.DeleteUser(ctx, adminActor, victim.ID), apperrors.ErrNotFound))

	_, err = store.Patients().GetByUserID(ctx, victim.ID)
	assert.ErrorIs(t, err, apperrors.NotFoundErr)
}
