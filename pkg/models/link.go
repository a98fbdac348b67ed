package models

import "time"

// PromptStudioLink is a weak back-reference from an external Prompt-Studio
// project to one of our Look-Up projects: relation + lookup, never ownership.
type PromptStudioLink struct {
	ID                 string    `db:"id" json:"id"`
	PromptStudioProjectID string `db:"prompt_studio_project_id" json:"prompt_studio_project_id"`
	LookupProjectID    string    `db:"lookup_project_id" json:"lookup_project_id"`
	ExecutionOrder     int       `db:"execution_order" json:"execution_order"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
