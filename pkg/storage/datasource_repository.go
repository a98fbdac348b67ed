package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/lookupengine/lookupengine/pkg/models"
)

// DataSourceRepository persists LookupDataSource rows and owns the
// version-increment invariant from spec §3: uploading a new file for a
// project clears is_latest on every prior row and inserts the new one at
// version_number = max+1, is_latest = true, atomically.
type DataSourceRepository interface {
	CreateNewVersion(ctx context.Context, d *models.DataSource) error
	Get(ctx context.Context, id string) (*models.DataSource, error)
	GetLatest(ctx context.Context, projectID string) (*models.DataSource, error)
	ListByProject(ctx context.Context, projectID string) ([]*models.DataSource, error)
	UpdateExtractionStatus(ctx context.Context, id string, status models.ExtractionStatus, extractedPath *string, extractionErr *string) error
}

type dataSourceRepository struct {
	db *sqlx.DB
}

// NewDataSourceRepository constructs a DataSourceRepository over db.
func NewDataSourceRepository(db *sqlx.DB) DataSourceRepository {
	return &dataSourceRepository{db: db}
}

// CreateNewVersion enforces "previous versions are superseded" in a single
// transaction: clear is_latest for the project, then insert the new row
// computing version_number from the prior max. BeginTxx, defer
// rollback-if-not-committed, explicit Commit.
func (r *dataSourceRepository) CreateNewVersion(ctx context.Context, d *models.DataSource) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin data source version transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.ErrorContext(ctx, "data source version transaction rollback failed", "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`UPDATE lookup_data_sources SET is_latest = false WHERE project_id = $1 AND is_latest`,
		d.ProjectID,
	); err != nil {
		return fmt.Errorf("clear is_latest for project %s: %w", d.ProjectID, err)
	}

	var maxVersion sql.NullInt64
	if err := tx.GetContext(ctx, &maxVersion,
		`SELECT MAX(version_number) FROM lookup_data_sources WHERE project_id = $1`,
		d.ProjectID,
	); err != nil {
		return fmt.Errorf("compute next version for project %s: %w", d.ProjectID, err)
	}
	d.VersionNumber = int(maxVersion.Int64) + 1
	d.IsLatest = true

	query := `
		INSERT INTO lookup_data_sources
			(project_id, file_name, file_path, file_size, file_type, extraction_status, version_number, is_latest)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	if err := tx.QueryRowContext(ctx, query,
		d.ProjectID, d.FileName, d.FilePath, d.FileSize, d.FileType, d.ExtractionStatus, d.VersionNumber, d.IsLatest,
	).Scan(&d.ID, &d.CreatedAt); err != nil {
		return fmt.Errorf("insert data source version: %w", err)
	}

	return tx.Commit()
}

func (r *dataSourceRepository) Get(ctx context.Context, id string) (*models.DataSource, error) {
	var d models.DataSource
	err := r.db.GetContext(ctx, &d, `SELECT * FROM lookup_data_sources WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get data source %s: %w", id, err)
	}
	return &d, nil
}

func (r *dataSourceRepository) GetLatest(ctx context.Context, projectID string) (*models.DataSource, error) {
	var d models.DataSource
	query := `SELECT * FROM lookup_data_sources WHERE project_id = $1 AND is_latest LIMIT 1`
	err := r.db.GetContext(ctx, &d, query, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest data source for project %s: %w", projectID, err)
	}
	return &d, nil
}

func (r *dataSourceRepository) ListByProject(ctx context.Context, projectID string) ([]*models.DataSource, error) {
	var sources []*models.DataSource
	query := `SELECT * FROM lookup_data_sources WHERE project_id = $1 ORDER BY version_number DESC`
	if err := r.db.SelectContext(ctx, &sources, query, projectID); err != nil {
		return nil, fmt.Errorf("list data sources for project %s: %w", projectID, err)
	}
	return sources, nil
}

func (r *dataSourceRepository) UpdateExtractionStatus(ctx context.Context, id string, status models.ExtractionStatus, extractedPath *string, extractionErr *string) error {
	query := `
		UPDATE lookup_data_sources
		SET extraction_status = $1, extracted_content_path = $2, extraction_error = $3
		WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, status, extractedPath, extractionErr, id)
	if err != nil {
		return fmt.Errorf("update extraction status for %s: %w", id, err)
	}
	return checkRowsAffected(res, id)
}
