package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lookupengine/lookupengine/pkg/models"
)

type indexManagerRow struct {
	ID               string          `db:"id"`
	DataSourceID     string          `db:"data_source_id"`
	ProfileID        string          `db:"profile_id"`
	RawIndexID       *string         `db:"raw_index_id"`
	IndexIDsHistory  json.RawMessage `db:"index_ids_history"`
	ExtractionStatus json.RawMessage `db:"extraction_status"`
	ReindexRequired  bool            `db:"reindex_required"`
}

// IndexManagerRepository persists LookupIndexManager rows: the vector-store
// index bookkeeping for one (data source, profile) pair.
type IndexManagerRepository interface {
	Upsert(ctx context.Context, m *models.IndexManager) error
	Get(ctx context.Context, dataSourceID, profileID string) (*models.IndexManager, error)
	ListByProfile(ctx context.Context, profileID string) ([]*models.IndexManager, error)
	Delete(ctx context.Context, id string) error
}

type indexManagerRepository struct {
	db *sqlx.DB
}

// NewIndexManagerRepository constructs an IndexManagerRepository over db.
func NewIndexManagerRepository(db *sqlx.DB) IndexManagerRepository {
	return &indexManagerRepository{db: db}
}

func (r *indexManagerRepository) Upsert(ctx context.Context, m *models.IndexManager) error {
	history, err := json.Marshal(m.IndexIDsHistory)
	if err != nil {
		return fmt.Errorf("marshal index_ids_history: %w", err)
	}
	status, err := m.MarshalExtractionStatus()
	if err != nil {
		return fmt.Errorf("marshal extraction_status: %w", err)
	}
	query := `
		INSERT INTO lookup_index_managers
			(data_source_id, profile_id, raw_index_id, index_ids_history, extraction_status, reindex_required)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (data_source_id, profile_id) DO UPDATE SET
			raw_index_id = EXCLUDED.raw_index_id,
			index_ids_history = EXCLUDED.index_ids_history,
			extraction_status = EXCLUDED.extraction_status,
			reindex_required = EXCLUDED.reindex_required
		RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		m.DataSourceID, m.ProfileID, m.RawIndexID, history, status, m.ReindexRequired,
	).Scan(&m.ID)
}

func (r *indexManagerRepository) Get(ctx context.Context, dataSourceID, profileID string) (*models.IndexManager, error) {
	var row indexManagerRow
	query := `SELECT * FROM lookup_index_managers WHERE data_source_id = $1 AND profile_id = $2`
	err := r.db.GetContext(ctx, &row, query, dataSourceID, profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get index manager for (%s, %s): %w", dataSourceID, profileID, err)
	}
	return rowToIndexManager(row)
}

func (r *indexManagerRepository) ListByProfile(ctx context.Context, profileID string) ([]*models.IndexManager, error) {
	var rows []indexManagerRow
	query := `SELECT * FROM lookup_index_managers WHERE profile_id = $1`
	if err := r.db.SelectContext(ctx, &rows, query, profileID); err != nil {
		return nil, fmt.Errorf("list index managers for profile %s: %w", profileID, err)
	}
	managers := make([]*models.IndexManager, 0, len(rows))
	for _, row := range rows {
		m, err := rowToIndexManager(row)
		if err != nil {
			return nil, err
		}
		managers = append(managers, m)
	}
	return managers, nil
}

// Delete removes the index manager row. The caller (pkg/indexer) is
// responsible for best-effort deletion of the underlying vector-store
// index before calling this — the row is the bookkeeping, not the index
// itself, per spec §4.6.
func (r *indexManagerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lookup_index_managers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete index manager %s: %w", id, err)
	}
	return checkRowsAffected(res, id)
}

func rowToIndexManager(row indexManagerRow) (*models.IndexManager, error) {
	var history []string
	if len(row.IndexIDsHistory) > 0 {
		if err := json.Unmarshal(row.IndexIDsHistory, &history); err != nil {
			return nil, fmt.Errorf("unmarshal index_ids_history for %s: %w", row.ID, err)
		}
	}
	var status map[string]models.IndexStatus
	if len(row.ExtractionStatus) > 0 {
		if err := json.Unmarshal(row.ExtractionStatus, &status); err != nil {
			return nil, fmt.Errorf("unmarshal extraction_status for %s: %w", row.ID, err)
		}
	}
	return &models.IndexManager{
		ID:               row.ID,
		DataSourceID:     row.DataSourceID,
		ProfileID:        row.ProfileID,
		RawIndexID:       row.RawIndexID,
		IndexIDsHistory:  history,
		ExtractionStatus: status,
		ReindexRequired:  row.ReindexRequired,
	}, nil
}
