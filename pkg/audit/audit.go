// Package audit wraps pkg/storage.AuditRepository with the fire-and-forget
// write discipline spec §4.8 requires: a failed write is logged locally and
// never surfaced to the caller, and read paths pass straight through.
package audit

import (
	"context"
	"log/slog"

	"github.com/lookupengine/lookupengine/pkg/models"
	"github.com/lookupengine/lookupengine/pkg/storage"
)

// Logger is the Audit Logger collaborator: one durable write per Executor
// invocation, immutable once created, with summary read paths for the API
// layer.
type Logger struct {
	repo   storage.AuditRepository
	logger *slog.Logger
}

// New builds a Logger over repo.
func New(repo storage.AuditRepository, logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{repo: repo, logger: logger}
}

// Create persists one audit record. On failure it logs and returns nil,
// never an error — per spec §4.8 a write failure is fire-and-forget from
// the caller's perspective. Satisfies pkg/lookupexec.AuditWriter: the
// Executor still calls this like a normal fallible Create, but the error it
// sees is always nil.
func (l *Logger) Create(ctx context.Context, a *models.ExecutionAudit) error {
	if err := l.repo.Create(ctx, a); err != nil {
		l.logger.Error("audit: failed to persist execution record",
			"error", err, "execution_id", a.ExecutionID, "lookup_project_id", a.LookupProjectID)
	}
	return nil
}

// Get fetches one audit record by id.
func (l *Logger) Get(ctx context.Context, id string) (*models.ExecutionAudit, error) {
	return l.repo.Get(ctx, id)
}

// GetByExecutionID fetches the most recent audit record for a correlation id.
func (l *Logger) GetByExecutionID(ctx context.Context, executionID string) (*models.ExecutionAudit, error) {
	return l.repo.GetByExecutionID(ctx, executionID)
}

// ListByExecutionID returns every audit record sharing one execution_id,
// i.e. the full per-execution trail across every Look-Up project the
// orchestrator ran for that call.
func (l *Logger) ListByExecutionID(ctx context.Context, executionID string) ([]*models.ExecutionAudit, error) {
	return l.repo.ListByExecutionID(ctx, executionID)
}

// ListByProject returns up to limit recent audit records for a project.
func (l *Logger) ListByProject(ctx context.Context, projectID string, limit int) ([]*models.ExecutionAudit, error) {
	return l.repo.ListByProject(ctx, projectID, limit)
}

// ListByFileExecutionID returns every audit row sharing one caller-supplied
// file_execution_id correlation value.
func (l *Logger) ListByFileExecutionID(ctx context.Context, fileExecutionID string) ([]*models.ExecutionAudit, error) {
	return l.repo.ListByFileExecutionID(ctx, fileExecutionID)
}

// ProjectStats aggregates a project's audit history: success rate, average
// execution time, cache hit rate, and average confidence.
func (l *Logger) ProjectStats(ctx context.Context, projectID string) (*models.ProjectStats, error) {
	return l.repo.ProjectStats(ctx, projectID)
}
