// Package retention implements the background sweep that prunes
// LookupExecutionAudit rows past their retention window.
package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/lookupengine/lookupengine/pkg/config"
)

// AuditPruner deletes audit rows older than a retention window. Satisfied by
// pkg/storage.AuditRepository and pkg/audit.Logger does not need to
// implement it — the sweep talks to storage directly since it has no
// Executor-facing write to fire-and-forget.
type AuditPruner interface {
	DeleteOlderThanDays(ctx context.Context, days int) (int64, error)
}

// Service periodically prunes audit rows past config.AuditRetentionConfig's
// retention window. All operations are idempotent and safe to run from
// multiple instances.
type Service struct {
	config *config.AuditRetentionConfig
	audit  AuditPruner
	logger *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a retention Service.
func New(cfg *config.AuditRetentionConfig, audit AuditPruner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{config: cfg, audit: audit, logger: logger}
}

// Start launches the background sweep loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	s.logger.Info("retention service started",
		"audit_retention_days", s.config.AuditRetentionDays,
		"interval", s.config.CleanupInterval)
}

// Stop signals the sweep loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.logger.Info("retention service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.sweep(ctx)

	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	count, err := s.audit.DeleteOlderThanDays(ctx, s.config.AuditRetentionDays)
	if err != nil {
		s.logger.Error("retention: audit prune failed", "error", err)
		return
	}
	if count > 0 {
		s.logger.Info("retention: pruned old audit rows", "count", count)
	}
}
