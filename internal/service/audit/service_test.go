package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medrec/internal/model"
)

type mockRepository struct {
	createFunc       func(ctx context.Context, log *model.AuditLog) error
	listByEntityFunc func(ctx context.Context, entityType string, entityID int64) ([]*model.AuditLog, error)
	cleanupFunc      func(ctx context.Context, before time.Time) (int64, error)
}

func (m *mockRepository) Create(ctx context.Context, log *model.AuditLog) error {
	return m.createFunc(ctx, log)
}

func (m *mockRepository) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*model.AuditLog, error) {
	return m.listByEntityFunc(ctx, entityType, entityID)
}

func (m *mockRepository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return m.cleanupFunc(ctx, before)
}

func TestService_Log(t *testing.T) {
	var got *model.AuditLog
	svc := NewService(&mockRepository{
		createFunc: func(_ context.Context, log *model.AuditLog) error {
			got = log
			return nil
		},
	})

	t.Run("nil options", func(t *testing.T) {
		require.NoError(t, svc.Log(context.Background(), 7, model.AuditActionRead, model.AuditEntityMedicalRecord, 3, nil))
		assert.Equal(t, int64(7), got.UserID)
		assert.Equal(t, int64(3), got.EntityID)
		assert.Empty(t, got.IPAddress)
		assert.Nil(t, got.Metadata)
	})

	t.Run("client from context", func(t *testing.T) {
		ctx := WithClient(context.Background(), "10.0.0.1", "curl/8")
		require.NoError(t, svc.Log(ctx, 7, model.AuditActionCreate, model.AuditEntityPrescription, 3,
			&LogOptions{Metadata: map[string]int{"medications": 2}}))
		assert.Equal(t, "10.0.0.1", got.IPAddress)
		assert.Equal(t, "curl/8", got.UserAgent)
		assert.JSONEq(t, `{"medications":2}`, string(got.Metadata))
	})
}

func TestService_Cleanup(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var before time.Time
	svc := NewService(&mockRepository{
		cleanupFunc: func(_ context.Context, b time.Time) (int64, error) {
			before = b
			return 4, nil
		},
	})
	svc.now = func() time.Time { return now }

	n, err := svc.Cleanup(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, now.AddDate(0, 0, -30), before)

	_, err = svc.Cleanup(context.Background(), 0)
	assert.Error(t, err)
}

func TestLogger_SwallowsErrors(t *testing.T) {
	l := NewLogger(NewService(&mockRepository{
		createFunc: func(context.Context, *model.AuditLog) error { return errors.New("db down") },
	}))
	assert.NotPanics(t, func() {
		l.Log(context.Background(), 1, model.AuditActionRead, model.AuditEntityMedicalRecord, 1, nil)
	})
	assert.Error(t, l.LogSync(context.Background(), 1, model.AuditActionRead, model.AuditEntityMedicalRecord, 1, nil))
}
