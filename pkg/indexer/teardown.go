package indexer

import (
	"context"
	"log/slog"

	"github.com/lookupengine/lookupengine/pkg/models"
)

// IndexManagerStore is the subset of pkg/storage.IndexManagerRepository the
// teardown path needs.
type IndexManagerStore interface {
	Get(ctx context.Context, dataSourceID, profileID string) (*models.IndexManager, error)
	Delete(ctx context.Context, id string) error
}

// VectorStoreDeleter deletes one indexed document by ref_doc_id. Satisfied
// by *pkg/vectorstore.Client.
type VectorStoreDeleter interface {
	Delete(ctx context.Context, refDocID string) error
}

// TeardownManager removes a LookupIndexManager's materialized vector-store
// indexes, best-effort, before deleting its bookkeeping row — spec §3's
// "on delete, every id in index_ids_history is removed from the vector
// store (best-effort, failures logged)".
type TeardownManager struct {
	managers IndexManagerStore
	vectors  VectorStoreDeleter
	logger   *slog.Logger
}

// NewTeardownManager builds a TeardownManager.
func NewTeardownManager(managers IndexManagerStore, vectors VectorStoreDeleter, logger *slog.Logger) *TeardownManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &TeardownManager{managers: managers, vectors: vectors, logger: logger}
}

// Teardown deletes every index in the manager's index_ids_history from the
// vector store, logging (not aborting on) individual failures, then deletes
// the bookkeeping row itself.
func (m *TeardownManager) Teardown(ctx context.Context, dataSourceID, profileID string) error {
	mgr, err := m.managers.Get(ctx, dataSourceID, profileID)
	if err != nil {
		return err
	}

	for _, refDocID := range mgr.IndexIDsHistory {
		if err := m.vectors.Delete(ctx, refDocID); err != nil {
			m.logger.Warn("indexer: failed to delete vector store index during teardown",
				"error", err, "ref_doc_id", refDocID, "index_manager_id", mgr.ID)
		}
	}

	return m.managers.Delete(ctx, mgr.ID)
}
