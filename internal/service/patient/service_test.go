package patient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/policy"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
)

type mockRepository struct {
	createFunc       func(ctx context.Context, p *model.Patient) error
	updateFunc       func(ctx context.Context, p *model.Patient) error
	getFunc          func(ctx context.Context, id int64) (*model.Patient, error)
	getByUserIDFunc  func(ctx context.Context, userID int64) (*model.Patient, error)
	listFunc         func(ctx context.Context) ([]*model.Patient, error)
	listByDoctorFunc func(ctx context.Context, doctorID int64) ([]*model.Patient, error)
}

func (m *mockRepository) Create(ctx context.Context, p *model.Patient) error {
	return m.createFunc(ctx, p)
}

func (m *mockRepository) Update(ctx context.Context, p *model.Patient) error {
	return m.updateFunc(ctx, p)
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	return m.getFunc(ctx, id)
}

func (m *mockRepository) GetByUserID(ctx context.Context, userID int64) (*model.Patient, error) {
	return m.getByUserIDFunc(ctx, userID)
}

func (m *mockRepository) List(ctx context.Context) ([]*model.Patient, error) {
	return m.listFunc(ctx)
}

func (m *mockRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]*model.Patient, error) {
	return m.listByDoctorFunc(ctx, doctorID)
}

func (m *mockRepository) Count(context.Context) (int64, error) { return 0, nil }

func notFound() error { return apperrors.NotFoundErr }

func TestService_Provision(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: 4, Username: "jane", Role: model.RolePatient}

	t.Run("creates missing profile", func(t *testing.T) {
		var created *model.Patient
		svc := NewService(&mockRepository{
			getByUserIDFunc: func(context.Context, int64) (*model.Patient, error) { return nil, notFound() },
			createFunc: func(_ context.Context, p *model.Patient) error {
				p.ID = 9
				created = p
				return nil
			},
		}, nil)

		p, err := svc.Provision(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(9), p.ID)
		assert.Equal(t, int64(4), created.UserID)
	})

	t.Run("returns existing profile", func(t *testing.T) {
		svc := NewService(&mockRepository{
			getByUserIDFunc: func(context.Context, int64) (*model.Patient, error) {
				return &model.Patient{ID: 2, UserID: 4}, nil
			},
			createFunc: func(context.Context, *model.Patient) error {
				t.Fatal("create must not be called")
				return nil
			},
		}, nil)

		p, err := svc.Provision(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(2), p.ID)
	})

	t.Run("doctor refused", func(t *testing.T) {
		svc := NewService(&mockRepository{}, nil)
		_, err := svc.Provision(ctx, &model.User{ID: 1, Role: model.RoleDoctor})
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	})
}

func TestService_UpdateProfile(t *testing.T) {
	var saved *model.Patient
	svc := NewService(&mockRepository{
		getByUserIDFunc: func(context.Context, int64) (*model.Patient, error) {
			return &model.Patient{ID: 2, UserID: 4}, nil
		},
		updateFunc: func(_ context.Context, p *model.Patient) error {
			saved = p
			return nil
		},
	}, nil)

	actor := policy.Actor{User: &model.User{ID: 4, Role: model.RolePatient}}
	_, err := svc.UpdateProfile(context.Background(), actor, &form.PatientForm{
		BirthDate:  "1990-02-03",
		BloodGroup: "O-",
	})
	require.NoError(t, err)
	assert.Equal(t, model.BloodGroupONeg, saved.BloodGroup)
	assert.Equal(t, "1990-02-03", saved.BirthDate.Format(model.DateLayout))
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	all := []*model.Patient{{ID: 1}, {ID: 2}}
	svc := NewService(&mockRepository{
		listFunc: func(context.Context) ([]*model.Patient, error) { return all, nil },
		listByDoctorFunc: func(_ context.Context, doctorID int64) ([]*model.Patient, error) {
			assert.Equal(t, int64(5), doctorID)
			return all[:1], nil
		},
	}, nil)

	got, err := svc.List(ctx, policy.Actor{User: &model.User{Role: model.RoleAdmin}})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.List(ctx, policy.Actor{User: &model.User{Role: model.RoleDoctor}, Doctor: &model.Doctor{ID: 5}})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.List(ctx, policy.Actor{User: &model.User{Role: model.RoleDoctor}})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.List(ctx, policy.Actor{User: &model.User{Role: model.RolePatient}})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&mockRepository{
		getFunc: func(_ context.Context, id int64) (*model.Patient, error) {
			if id == 1 {
				return &model.Patient{ID: 1, UserID: 10}, nil
			}
			return nil, notFound()
		},
	}, nil)

	_, err := svc.Get(ctx, policy.Actor{User: &model.User{ID: 10, Role: model.RolePatient}}, 1)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, policy.Actor{User: &model.User{ID: 11, Role: model.RolePatient}}, 1)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	_, err = svc.Get(ctx, policy.Actor{User: &model.User{Role: model.RoleAdmin}}, 2)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
