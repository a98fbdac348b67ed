package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lookupengine/lookupengine/pkg/models"
)

// templateRow is the wire shape for lookup_prompt_templates: llm_config is
// stored as JSONB, so it round-trips through json.RawMessage rather than
// the struct sqlx would otherwise try to bind column-by-column.
type templateRow struct {
	ID           string          `db:"id"`
	ProjectID    string          `db:"project_id"`
	TemplateText string          `db:"template_text"`
	LLMConfig    json.RawMessage `db:"llm_config"`
	IsActive     bool            `db:"is_active"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// TemplateRepository persists LookupPromptTemplate rows.
type TemplateRepository interface {
	Create(ctx context.Context, t *models.Template) error
	Get(ctx context.Context, id string) (*models.Template, error)
	ListActiveByProject(ctx context.Context, projectID string) ([]*models.Template, error)
	Update(ctx context.Context, t *models.Template) error
	Delete(ctx context.Context, id string) error
}

type templateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository constructs a TemplateRepository over db.
func NewTemplateRepository(db *sqlx.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, t *models.Template) error {
	cfg, err := json.Marshal(t.LLMConfig)
	if err != nil {
		return fmt.Errorf("marshal llm_config: %w", err)
	}
	query := `
		INSERT INTO lookup_prompt_templates (project_id, template_text, llm_config, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, t.ProjectID, t.TemplateText, cfg, t.IsActive).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *templateRepository) Get(ctx context.Context, id string) (*models.Template, error) {
	var row templateRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM lookup_prompt_templates WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get template %s: %w", id, err)
	}
	return rowToTemplate(row)
}

func (r *templateRepository) ListActiveByProject(ctx context.Context, projectID string) ([]*models.Template, error) {
	var rows []templateRow
	query := `SELECT * FROM lookup_prompt_templates WHERE project_id = $1 AND is_active ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query, projectID); err != nil {
		return nil, fmt.Errorf("list templates for project %s: %w", projectID, err)
	}
	templates := make([]*models.Template, 0, len(rows))
	for _, row := range rows {
		t, err := rowToTemplate(row)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func (r *templateRepository) Update(ctx context.Context, t *models.Template) error {
	cfg, err := json.Marshal(t.LLMConfig)
	if err != nil {
		return fmt.Errorf("marshal llm_config: %w", err)
	}
	query := `
		UPDATE lookup_prompt_templates
		SET template_text = $1, llm_config = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, t.TemplateText, cfg, t.IsActive, t.ID)
	if err != nil {
		return fmt.Errorf("update template %s: %w", t.ID, err)
	}
	return checkRowsAffected(res, t.ID)
}

func (r *templateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lookup_prompt_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	return checkRowsAffected(res, id)
}

func rowToTemplate(row templateRow) (*models.Template, error) {
	var cfg models.LLMConfig
	if len(row.LLMConfig) > 0 {
		if err := json.Unmarshal(row.LLMConfig, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal llm_config for template %s: %w", row.ID, err)
		}
	}
	return &models.Template{
		ID:           row.ID,
		ProjectID:    row.ProjectID,
		TemplateText: row.TemplateText,
		LLMConfig:    cfg,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}
