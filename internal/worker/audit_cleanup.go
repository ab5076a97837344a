package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/medrec/internal/repository"
)

// AuditCleanupWorker deletes audit log entries older than the retention
// window. It runs from the audit-cleanup command, typically on a cron schedule.
type AuditCleanupWorker struct {
	repo          repository.AuditRepository
	retentionDays int
	now           func() time.Time
}

func NewAuditCleanupWorker(repo repository.AuditRepository, retentionDays int) *AuditCleanupWorker {
	return &AuditCleanupWorker{
		repo:          repo,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// RunOnce removes expired entries and returns how many were deleted.
func (w *AuditCleanupWorker) RunOnce(ctx context.Context) (int64, error) {
	if w.retentionDays <= 0 {
		return 0, fmt.Errorf("retention must be at least one day, got %d", w.retentionDays)
	}
	cutoff := w.now().AddDate(0, 0, -w.retentionDays)

	rows, err := w.repo.Cleanup(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}

	log.Info().Int64("deleted", rows).Time("cutoff", cutoff).Msg("audit logs cleaned up")
	return rows, nil
}
