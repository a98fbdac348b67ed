package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/lookupengine/lookupengine/pkg/lookuperr"
	"github.com/lookupengine/lookupengine/pkg/models"
)

// ProfileRepository persists LookupProfileManager rows and enforces the
// "at most one default profile per project" invariant via a partial unique
// index (idx_profiles_one_default_per_project, see
// pkg/database/migrations/000001_init_schema.up.sql) translated here into
// the domain's typed DefaultProfile error.
type ProfileRepository interface {
	Create(ctx context.Context, p *models.Profile) error
	Get(ctx context.Context, id string) (*models.Profile, error)
	GetDefault(ctx context.Context, projectID string) (*models.Profile, error)
	ListByProject(ctx context.Context, projectID string) ([]*models.Profile, error)
	Update(ctx context.Context, p *models.Profile) error
	Delete(ctx context.Context, id string) error
}

type profileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a ProfileRepository over db.
func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO lookup_profiles
			(project_id, profile_name, llm_adapter_id, embedding_adapter_id, vector_store_adapter_id,
			 text_extractor_adapter_id, chunk_size, chunk_overlap, similarity_top_k, is_default, reindex)
		VALUES (:project_id, :profile_name, :llm_adapter_id, :embedding_adapter_id, :vector_store_adapter_id,
		        :text_extractor_adapter_id, :chunk_size, :chunk_overlap, :similarity_top_k, :is_default, :reindex)
		RETURNING id`
	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare create profile: %w", err)
	}
	defer stmt.Close()
	if err := stmt.QueryRowContext(ctx, p).Scan(&p.ID); err != nil {
		if isUniqueViolation(err) {
			return &lookuperr.DefaultProfile{ProjectID: p.ProjectID}
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *profileRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.GetContext(ctx, &p, `SELECT * FROM lookup_profiles WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}
	return &p, nil
}

// GetDefault returns the project's default profile, or the typed
// DefaultProfile error (spec §7) if none is marked default.
func (r *profileRepository) GetDefault(ctx context.Context, projectID string) (*models.Profile, error) {
	var p models.Profile
	query := `SELECT * FROM lookup_profiles WHERE project_id = $1 AND is_default LIMIT 1`
	err := r.db.GetContext(ctx, &p, query, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &lookuperr.DefaultProfile{ProjectID: projectID}
		}
		return nil, fmt.Errorf("get default profile for project %s: %w", projectID, err)
	}
	return &p, nil
}

func (r *profileRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Profile, error) {
	var profiles []*models.Profile
	query := `SELECT * FROM lookup_profiles WHERE project_id = $1 ORDER BY profile_name ASC`
	if err := r.db.SelectContext(ctx, &profiles, query, projectID); err != nil {
		return nil, fmt.Errorf("list profiles for project %s: %w", projectID, err)
	}
	return profiles, nil
}

func (r *profileRepository) Update(ctx context.Context, p *models.Profile) error {
	query := `
		UPDATE lookup_profiles
		SET profile_name = :profile_name, llm_adapter_id = :llm_adapter_id,
		    embedding_adapter_id = :embedding_adapter_id, vector_store_adapter_id = :vector_store_adapter_id,
		    text_extractor_adapter_id = :text_extractor_adapter_id, chunk_size = :chunk_size,
		    chunk_overlap = :chunk_overlap, similarity_top_k = :similarity_top_k,
		    is_default = :is_default, reindex = :reindex
		WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		if isUniqueViolation(err) {
			return &lookuperr.DefaultProfile{ProjectID: p.ProjectID}
		}
		return fmt.Errorf("update profile %s: %w", p.ID, err)
	}
	return checkRowsAffected(res, p.ID)
}

func (r *profileRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lookup_profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profile %s: %w", id, err)
	}
	return checkRowsAffected(res, id)
}

// isUniqueViolation reports whether err is a Postgres unique_violation
// (SQLSTATE 23505), the error class the partial unique index raises when a
// second profile tries to become the project's default.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
