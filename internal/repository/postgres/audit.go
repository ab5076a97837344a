package postgres

import (
	"context"
	"time"

	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/repository"
)

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(base BaseRepository) repository.AuditRepository {
	return &auditRepository{base}
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	metadata := log.Metadata
	if len(metadata) == 0 {
		metadata = []byte(`{}`)
	}

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO audit_logs (
			user_id, action, entity_type, entity_id,
			metadata, ip_address, user_agent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		log.UserID,
		log.Action,
		log.EntityType,
		log.EntityID,
		[]byte(metadata),
		log.IPAddress,
		log.UserAgent,
		log.CreatedAt,
	).Scan(&log.ID)
	if err != nil {
		return wrapErr("create audit log", err)
	}
	return nil
}

func (r *auditRepository) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*model.AuditLog, error) {
	logs := []*model.AuditLog{}
	err := r.db.SelectContext(ctx, &logs, `
		SELECT id, user_id, action, entity_type, entity_id, metadata,
			ip_address, user_agent, created_at
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC`, entityType, entityID)
	if err != nil {
		return nil, wrapErr("list audit logs", err)
	}
	return logs, nil
}

func (r *auditRepository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, before)
	if err != nil {
		return 0, wrapErr("cleanup audit logs", err)
	}
	return result.RowsAffected()
}
