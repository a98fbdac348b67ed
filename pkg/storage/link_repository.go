package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lookupengine/lookupengine/pkg/models"
)

// LinkRepository persists PromptStudioLookupLink rows: the weak
// back-reference from an external Prompt-Studio project to one of our
// Look-Up projects, ordered by execution_order.
type LinkRepository interface {
	// Create auto-assigns ExecutionOrder to one past the current max for
	// the Prompt-Studio project, per spec §3, unless the caller already
	// set a non-zero value.
	Create(ctx context.Context, l *models.PromptStudioLink) error
	ListByPromptStudioProject(ctx context.Context, promptStudioProjectID string) ([]*models.PromptStudioLink, error)
	// DeleteLookupProject refuses (returns *LinkedProjectsError) if any
	// link still references lookupProjectID, enforcing the
	// deletion-refusal invariant from spec §3 before the caller's
	// ProjectRepository.Delete is attempted.
	DeleteLookupProject(ctx context.Context, lookupProjectID string) error
	Delete(ctx context.Context, id string) error
}

type linkRepository struct {
	db *sqlx.DB
}

// NewLinkRepository constructs a LinkRepository over db.
func NewLinkRepository(db *sqlx.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, l *models.PromptStudioLink) error {
	if l.ExecutionOrder == 0 {
		var maxOrder sql.NullInt64
		err := r.db.GetContext(ctx, &maxOrder,
			`SELECT MAX(execution_order) FROM prompt_studio_lookup_links WHERE prompt_studio_project_id = $1`,
			l.PromptStudioProjectID,
		)
		if err != nil {
			return fmt.Errorf("compute next execution_order: %w", err)
		}
		l.ExecutionOrder = int(maxOrder.Int64) + 1
	}

	query := `
		INSERT INTO prompt_studio_lookup_links (prompt_studio_project_id, lookup_project_id, execution_order)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, l.PromptStudioProjectID, l.LookupProjectID, l.ExecutionOrder).
		Scan(&l.ID, &l.CreatedAt)
}

func (r *linkRepository) ListByPromptStudioProject(ctx context.Context, promptStudioProjectID string) ([]*models.PromptStudioLink, error) {
	var links []*models.PromptStudioLink
	query := `
		SELECT * FROM prompt_studio_lookup_links
		WHERE prompt_studio_project_id = $1
		ORDER BY execution_order ASC`
	if err := r.db.SelectContext(ctx, &links, query, promptStudioProjectID); err != nil {
		return nil, fmt.Errorf("list links for prompt studio project %s: %w", promptStudioProjectID, err)
	}
	return links, nil
}

func (r *linkRepository) DeleteLookupProject(ctx context.Context, lookupProjectID string) error {
	var psProjectIDs []string
	err := r.db.SelectContext(ctx, &psProjectIDs,
		`SELECT prompt_studio_project_id FROM prompt_studio_lookup_links WHERE lookup_project_id = $1`,
		lookupProjectID,
	)
	if err != nil {
		return fmt.Errorf("list linked prompt studio projects for %s: %w", lookupProjectID, err)
	}
	if len(psProjectIDs) > 0 {
		return &LinkedProjectsError{LookupProjectID: lookupProjectID, PromptStudioProjectIDs: psProjectIDs}
	}
	return nil
}

func (r *linkRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM prompt_studio_lookup_links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete link %s: %w", id, err)
	}
	return checkRowsAffected(res, id)
}
