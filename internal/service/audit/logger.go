package audit

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Logger is the best-effort front of Service: a failed write is logged and
// never fails the request that triggered it.
type Logger struct {
	service *Service
}

func NewLogger(service *Service) *Logger {
	return &Logger{service: service}
}

func (l *Logger) Log(ctx context.Context, userID int64, action, entityType string, entityID int64, opts *LogOptions) {
	if l == nil || l.service == nil {
		return
	}
	if err := l.service.Log(ctx, userID, action, entityType, entityID, opts); err != nil {
		log.Error().Err(err).
			Int64("user_id", userID).
			Str("action", action).
			Str("entity_type", entityType).
			Int64("entity_id", entityID).
			Msg("audit log write failed")
	}
}

// LogSync surfaces the write error to the caller.
func (l *Logger) LogSync(ctx context.Context, userID int64, action, entityType string, entityID int64, opts *LogOptions) error {
	return l.service.Log(ctx, userID, action, entityType, entityID, opts)
}
