package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lookupengine/lookupengine/pkg/models"
)

// AuditRepository persists LookupExecutionAudit rows. Writes are
// append-only — there is no Update, matching the audit trail's immutability
// invariant from spec §3.
type AuditRepository interface {
	Create(ctx context.Context, a *models.ExecutionAudit) error
	Get(ctx context.Context, id string) (*models.ExecutionAudit, error)
	GetByExecutionID(ctx context.Context, executionID string) (*models.ExecutionAudit, error)
	// ListByExecutionID returns every audit row sharing one execution_id —
	// the full per-execution trail across all Look-Up projects the
	// orchestrator fanned out to for that call.
	ListByExecutionID(ctx context.Context, executionID string) ([]*models.ExecutionAudit, error)
	ListByProject(ctx context.Context, projectID string, limit int) ([]*models.ExecutionAudit, error)
	// ListByFileExecutionID returns every audit row sharing one caller-supplied
	// file_execution_id correlation value, per spec §4.8's read paths.
	ListByFileExecutionID(ctx context.Context, fileExecutionID string) ([]*models.ExecutionAudit, error)
	// ProjectStats aggregates the audit history for one project, grounded
	// on AuditLogger.get_project_stats in original_source/.
	ProjectStats(ctx context.Context, projectID string) (*models.ProjectStats, error)
	// DeleteOlderThanDays prunes audit rows past the retention window
	// (pkg/config.AuditRetentionConfig), returning the number deleted.
	DeleteOlderThanDays(ctx context.Context, days int) (int64, error)
}

type auditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs an AuditRepository over db.
func NewAuditRepository(db *sqlx.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, a *models.ExecutionAudit) error {
	if err := a.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO lookup_execution_audit
			(execution_id, file_execution_id, prompt_studio_project_id, lookup_project_id, input_data,
			 reference_data_version, enriched_output, llm_provider, llm_model, llm_prompt, llm_response,
			 llm_response_cached, status, confidence_score, execution_time_ms, llm_call_time_ms, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, executed_at`
	return r.db.QueryRowContext(ctx, query,
		a.ExecutionID, a.FileExecutionID, a.PromptStudioProjectID, a.LookupProjectID, a.InputData,
		a.ReferenceDataVersion, a.EnrichedOutput, a.LLMProvider, a.LLMModel, a.LLMPrompt, a.LLMResponse,
		a.LLMResponseCached, a.Status, a.ConfidenceScore, a.ExecutionTimeMs, a.LLMCallTimeMs, a.ErrorMessage,
	).Scan(&a.ID, &a.ExecutedAt)
}

func (r *auditRepository) Get(ctx context.Context, id string) (*models.ExecutionAudit, error) {
	var a models.ExecutionAudit
	err := r.db.GetContext(ctx, &a, `SELECT * FROM lookup_execution_audit WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get audit %s: %w", id, err)
	}
	return &a, nil
}

func (r *auditRepository) GetByExecutionID(ctx context.Context, executionID string) (*models.ExecutionAudit, error) {
	var a models.ExecutionAudit
	query := `SELECT * FROM lookup_execution_audit WHERE execution_id = $1 ORDER BY executed_at DESC LIMIT 1`
	err := r.db.GetContext(ctx, &a, query, executionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get audit by execution_id %s: %w", executionID, err)
	}
	return &a, nil
}

func (r *auditRepository) ListByExecutionID(ctx context.Context, executionID string) ([]*models.ExecutionAudit, error) {
	var rows []*models.ExecutionAudit
	query := `
		SELECT * FROM lookup_execution_audit
		WHERE execution_id = $1
		ORDER BY executed_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query, executionID); err != nil {
		return nil, fmt.Errorf("list audit rows for execution_id %s: %w", executionID, err)
	}
	return rows, nil
}

func (r *auditRepository) ListByFileExecutionID(ctx context.Context, fileExecutionID string) ([]*models.ExecutionAudit, error) {
	var rows []*models.ExecutionAudit
	query := `
		SELECT * FROM lookup_execution_audit
		WHERE file_execution_id = $1
		ORDER BY executed_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, fileExecutionID); err != nil {
		return nil, fmt.Errorf("list audit rows for file_execution_id %s: %w", fileExecutionID, err)
	}
	return rows, nil
}

func (r *auditRepository) ListByProject(ctx context.Context, projectID string, limit int) ([]*models.ExecutionAudit, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []*models.ExecutionAudit
	query := `
		SELECT * FROM lookup_execution_audit
		WHERE lookup_project_id = $1
		ORDER BY executed_at DESC
		LIMIT $2`
	if err := r.db.SelectContext(ctx, &rows, query, projectID, limit); err != nil {
		return nil, fmt.Errorf("list audit rows for project %s: %w", projectID, err)
	}
	return rows, nil
}

func (r *auditRepository) ProjectStats(ctx context.Context, projectID string) (*models.ProjectStats, error) {
	var stats struct {
		TotalExecutions    int             `db:"total_executions"`
		Successful         int             `db:"successful"`
		Failed             int             `db:"failed"`
		Partial            int             `db:"partial"`
		AvgExecutionTimeMs sql.NullFloat64 `db:"avg_execution_time_ms"`
		CacheHits          int             `db:"cache_hits"`
		AvgConfidence      sql.NullFloat64 `db:"avg_confidence"`
	}
	query := `
		SELECT
			COUNT(*) AS total_executions,
			COUNT(*) FILTER (WHERE status = 'success') AS successful,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed,
			COUNT(*) FILTER (WHERE status = 'partial') AS partial,
			AVG(execution_time_ms) AS avg_execution_time_ms,
			COUNT(*) FILTER (WHERE llm_response_cached) AS cache_hits,
			AVG(confidence_score) AS avg_confidence
		FROM lookup_execution_audit
		WHERE lookup_project_id = $1`
	if err := r.db.GetContext(ctx, &stats, query, projectID); err != nil {
		return nil, fmt.Errorf("project stats for %s: %w", projectID, err)
	}

	result := &models.ProjectStats{
		TotalExecutions:    stats.TotalExecutions,
		Successful:         stats.Successful,
		Failed:             stats.Failed,
		Partial:            stats.Partial,
		AvgExecutionTimeMs: stats.AvgExecutionTimeMs.Float64,
		AvgConfidence:      stats.AvgConfidence.Float64,
	}
	if stats.TotalExecutions > 0 {
		result.SuccessRate = float64(stats.Successful) / float64(stats.TotalExecutions)
		result.CacheHitRate = float64(stats.CacheHits) / float64(stats.TotalExecutions)
	}
	return result, nil
}

func (r *auditRepository) DeleteOlderThanDays(ctx context.Context, days int) (int64, error) {
	query := `DELETE FROM lookup_execution_audit WHERE executed_at < NOW() - ($1 || ' days')::interval`
	res, err := r.db.ExecContext(ctx, query, days)
	if err != nil {
		return 0, fmt.Errorf("delete audit rows older than %d days: %w", days, err)
	}
	return res.RowsAffected()
}
