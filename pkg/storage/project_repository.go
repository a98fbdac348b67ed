package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lookupengine/lookupengine/pkg/models"
)

// ProjectRepository persists LookupProject rows.
type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	Get(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context, organization string) ([]*models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	// Delete removes a project. Callers must check LinkRepository for
	// existing Prompt-Studio links first — deletion-refusal is enforced
	// one layer up, in pkg/storage.LinkRepository, not here, since a
	// project has no FK back to its links.
	Delete(ctx context.Context, id string) error
}

type projectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository constructs a ProjectRepository over db.
func NewProjectRepository(db *sqlx.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, p *models.Project) error {
	query := `
		INSERT INTO lookup_projects (name, description, organization, is_active)
		VALUES (:name, :description, :organization, :is_active)
		RETURNING id, created_at, updated_at`
	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare create project: %w", err)
	}
	defer stmt.Close()
	return stmt.QueryRowContext(ctx, p).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *projectRepository) Get(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	err := r.db.GetContext(ctx, &p, `SELECT * FROM lookup_projects WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return &p, nil
}

func (r *projectRepository) List(ctx context.Context, organization string) ([]*models.Project, error) {
	var projects []*models.Project
	query := `SELECT * FROM lookup_projects WHERE ($1 = '' OR organization = $1) ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &projects, query, organization); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, p *models.Project) error {
	query := `
		UPDATE lookup_projects
		SET name = :name, description = :description, organization = :organization,
		    is_active = :is_active, updated_at = NOW()
		WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("update project %s: %w", p.ID, err)
	}
	return checkRowsAffected(res, p.ID)
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lookup_projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return checkRowsAffected(res, id)
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
