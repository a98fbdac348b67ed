// Package storage holds the sqlx-backed repositories behind every entity
// in spec §3: thin CRUD plus the handful of invariant-enforcing queries
// (default-profile uniqueness, data-source version increments, audit
// append-only writes) that the Look-Up domain actually needs.
//
// Grounded on postgresStore in the example sevigo-code-warden repo's
// internal/storage/database.go: one *sqlx.DB per repository, named-query
// inserts/updates, sql.ErrNoRows translated to a local ErrNotFound
// sentinel, and ctx threaded through every call.
package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup by ID finds no row.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a uniqueness or referential invariant would
// be violated, such as deleting a linked project (see LinkedProjectsError).
// A second default profile is reported as *lookuperr.DefaultProfile instead.
var ErrConflict = errors.New("operation conflicts with an existing record")

// LinkedProjectsError reports that a LookupProject cannot be deleted
// because one or more Prompt-Studio projects still link to it. Unwraps to
// ErrConflict so generic errors.Is(err, ErrConflict) checks still match.
type LinkedProjectsError struct {
	LookupProjectID        string
	PromptStudioProjectIDs []string
}

func (e *LinkedProjectsError) Error() string {
	return fmt.Sprintf("project %s is linked from %d prompt studio project(s)", e.LookupProjectID, len(e.PromptStudioProjectIDs))
}

func (e *LinkedProjectsError) Unwrap() error { return ErrConflict }
