package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/repository"
)

type Service struct {
	repo repository.AuditRepository
	now  func() time.Time
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type LogOptions struct {
	Metadata  interface{}
	IPAddress string
	UserAgent string
}

type clientKey struct{}

type client struct {
	ip        string
	userAgent string
}

// WithClient attaches the caller's address and user agent to ctx so that
// entries logged further down the call chain carry them.
func WithClient(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientKey{}, client{ip: ip, userAgent: userAgent})
}

// Log creates an audit log entry
func (s *Service) Log(ctx context.Context, userID int64, action, entityType string, entityID int64, opts *LogOptions) error {
	if opts == nil {
		opts = &LogOptions{}
	}

	var metadata json.RawMessage
	if opts.Metadata != nil {
		raw, err := json.Marshal(opts.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
		metadata = raw
	}

	ipAddress, userAgent := opts.IPAddress, opts.UserAgent
	if ipAddress == "" {
		if gc, ok := ctx.(*gin.Context); ok {
			ipAddress = gc.ClientIP()
			userAgent = gc.GetHeader("User-Agent")
		} else if cl, ok := ctx.Value(clientKey{}).(client); ok {
			ipAddress = cl.ip
			userAgent = cl.userAgent
		}
	}

	log := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, log); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// History returns the entries recorded against one entity, newest first.
func (s *Service) History(ctx context.Context, entityType string, entityID int64) ([]*model.AuditLog, error) {
	return s.repo.ListByEntity(ctx, entityType, entityID)
}

// Cleanup purges entries older than retention and returns how many went.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("retention must be positive, got %s", retention)
	}
	return s.repo.Cleanup(ctx, s.now().Add(-retention))
}
