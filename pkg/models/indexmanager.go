package models

import "encoding/json"

// IndexStatus records, per profile-config fingerprint, whether extraction
// completed and whether highlighting is enabled.
type IndexStatus struct {
	Extracted        bool   `json:"extracted"`
	HighlightEnabled bool   `json:"highlight_enabled"`
	Error            string `json:"error,omitempty"`
}

// IndexManager tracks the vector-store indexes materialized for one
// (data source, profile) pair.
type IndexManager struct {
	ID               string                 `db:"id" json:"id"`
	DataSourceID     string                 `db:"data_source_id" json:"data_source_id"`
	ProfileID        string                 `db:"profile_id" json:"profile_id"`
	RawIndexID       *string                `db:"raw_index_id" json:"raw_index_id,omitempty"`
	IndexIDsHistory  []string               `db:"index_ids_history" json:"index_ids_history"`
	ExtractionStatus map[string]IndexStatus `db:"extraction_status" json:"extraction_status"`
	ReindexRequired  bool                   `db:"reindex_required" json:"reindex_required"`
}

// MarshalExtractionStatus encodes ExtractionStatus for storage as JSONB.
func (m *IndexManager) MarshalExtractionStatus() ([]byte, error) {
	if m.ExtractionStatus == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.ExtractionStatus)
}
