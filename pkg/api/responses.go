package api

import "time"

// LookupMetadataResponse is the `_lookup_metadata` block shared by both
// execution endpoints (spec §6).
type LookupMetadataResponse struct {
	ExecutionID          string               `json:"execution_id"`
	ExecutedAt           time.Time            `json:"executed_at"`
	TotalExecutionTimeMs int64                `json:"total_execution_time_ms"`
	LookupsExecuted      int                  `json:"lookups_executed"`
	LookupsSuccessful    int                  `json:"lookups_successful"`
	LookupsFailed        int                  `json:"lookups_failed"`
	ConflictsResolved    int                  `json:"conflicts_resolved"`
	Enrichments          []EnrichmentResponse `json:"enrichments"`
}

// EnrichmentResponse describes one project's contribution within
// `_lookup_metadata.enrichments`.
type EnrichmentResponse struct {
	ProjectID       string `json:"project_id"`
	ProjectName     string `json:"project_name"`
	Status          string `json:"status"`
	Error           string `json:"error,omitempty"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	Cached          bool   `json:"cached"`
}

// ExecuteResponse is returned by POST /lookup-projects/:id/execute.
type ExecuteResponse struct {
	LookupEnrichment map[string]any         `json:"lookup_enrichment"`
	LookupMetadata   LookupMetadataResponse `json:"_lookup_metadata"`
}

// EnrichPSOutputResponse is returned by POST /lookup-debug/enrich_ps_output.
type EnrichPSOutputResponse struct {
	OriginalData     map[string]any         `json:"original_data"`
	EnrichedData     map[string]any         `json:"enriched_data"`
	LookupEnrichment map[string]any         `json:"lookup_enrichment"`
	LookupMetadata   LookupMetadataResponse `json:"_lookup_metadata"`
}

// ErrorResponse is the standard per-Look-Up failure body. ErrorType carries
// one of pkg/lookuperr's discriminators; TokenCount/ContextLimit/Model are
// only populated for context_window_exceeded.
type ErrorResponse struct {
	Error                      string                  `json:"error"`
	ErrorType                  string                  `json:"error_type"`
	TokenCount                 int                     `json:"token_count,omitempty"`
	ContextLimit               int                     `json:"context_limit,omitempty"`
	Model                      string                  `json:"model,omitempty"`
	LinkedPromptStudioProjects []string                `json:"linked_prompt_studio_projects,omitempty"`
	LookupMetadata             *LookupMetadataResponse `json:"_lookup_metadata,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]HealthCheck `json:"checks"`
}

// HealthCheck represents the status of a single health check component.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// CacheStatsResponse is returned by GET /cache/stats.
type CacheStatsResponse struct {
	Backend       string `json:"backend"`
	TTL           string `json:"ttl"`
	KeyPrefix     string `json:"key_prefix"`
	MemoryEntries int    `json:"memory_entries"`
	Hits          int64  `json:"hits"`
	Misses        int64  `json:"misses"`
	Sets          int64  `json:"sets"`
	FallbackHits  int64  `json:"fallback_hits"`
}
