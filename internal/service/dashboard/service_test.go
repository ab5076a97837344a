package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/policy"
)

type mockAppointments struct {
	upcomingFunc func(ctx context.Context, actor policy.Actor, limit int) ([]*model.Appointment, error)
	countFunc    func(ctx context.Context) (int64, error)
}

func (m *mockAppointments) Upcoming(ctx context.Context, actor policy.Actor, limit int) ([]*model.Appointment, error) {
	return m.upcomingFunc(ctx, actor, limit)
}

func (m *mockAppointments) Count(ctx context.Context) (int64, error) { return m.countFunc(ctx) }

type mockPatients struct {
	provisionFunc func(ctx context.Context, user *model.User) (*model.Patient, error)
	countFunc     func(ctx context.Context) (int64, error)
}

func (m *mockPatients) Provision(ctx context.Context, user *model.User) (*model.Patient, error) {
	return m.provisionFunc(ctx, user)
}

func (m *mockPatients) Count(ctx context.Context) (int64, error) { return m.countFunc(ctx) }

type countFunc func(ctx context.Context) (int64, error)

func (f countFunc) Count(ctx context.Context) (int64, error) { return f(ctx) }

func constant(n int64) func(context.Context) (int64, error) {
	return func(context.Context) (int64, error) { return n, nil }
}

func TestService_Build_PatientWithoutProfileIsProvisioned(t *testing.T) {
	provisioned := false
	svc := NewService(
		&mockAppointments{upcomingFunc: func(_ context.Context, actor policy.Actor, limit int) ([]*model.Appointment, error) {
			require.NotNil(t, actor.Patient)
			assert.Equal(t, int64(12), actor.Patient.ID)
			assert.Equal(t, model.DashboardAppointmentLimit, limit)
			return []*model.Appointment{{ID: 1}}, nil
		}},
		&mockPatients{provisionFunc: func(context.Context, *model.User) (*model.Patient, error) {
			provisioned = true
			return &model.Patient{ID: 12}, nil
		}},
		countFunc(constant(0)),
	)

	d := svc.Build(context.Background(), policy.Actor{User: &model.User{ID: 3, Role: model.RolePatient}})
	assert.True(t, provisioned)
	assert.Len(t, d.Appointments, 1)
	assert.Empty(t, d.Errors)
}

func TestService_Build_DoctorWithoutProfileWarns(t *testing.T) {
	svc := NewService(&mockAppointments{}, &mockPatients{}, countFunc(constant(0)))

	d := svc.Build(context.Background(), policy.Actor{User: &model.User{ID: 3, Role: model.RoleDoctor}})
	assert.Equal(t, []string{MsgIncompleteDoctorProfile}, d.Warnings)
	assert.Nil(t, d.Appointments)
}

func TestService_Build_AdminCounts(t *testing.T) {
	svc := NewService(
		&mockAppointments{countFunc: constant(7)},
		&mockPatients{countFunc: constant(5)},
		countFunc(constant(2)),
	)

	d := svc.Build(context.Background(), policy.Actor{User: &model.User{ID: 1, Role: model.RoleAdmin}})
	require.NotNil(t, d.DoctorCount)
	assert.Equal(t, int64(2), *d.DoctorCount)
	assert.Equal(t, int64(5), *d.PatientCount)
	assert.Equal(t, int64(7), *d.AppointmentCount)
}

func TestService_Build_FailureIsReported(t *testing.T) {
	svc := NewService(
		&mockAppointments{upcomingFunc: func(context.Context, policy.Actor, int) ([]*model.Appointment, error) {
			return nil, errors.New("connection reset")
		}},
		&mockPatients{},
		countFunc(constant(0)),
	)

	actor := policy.Actor{User: &model.User{ID: 3, Role: model.RoleDoctor}, Doctor: &model.Doctor{ID: 1}}
	d := svc.Build(context.Background(), actor)
	assert.Equal(t, []string{MsgLoadFailed}, d.Errors)
}
