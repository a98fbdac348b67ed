// Package models holds the Look-Up domain entities, grounded on
// original_source/backend/lookup/models/*.py.
package models

import "time"

// Project is a Look-Up project: a bound triple of template, reference corpus,
// and adapter profile, linked to zero or more Prompt-Studio projects.
type Project struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description,omitempty"`
	Organization string    `db:"organization" json:"organization"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
