package models

import "time"

// AuditStatus is the terminal outcome of one Executor invocation.
type AuditStatus string

const (
	AuditSuccess AuditStatus = "success"
	AuditPartial AuditStatus = "partial"
	AuditFailed  AuditStatus = "failed"
)

// ExecutionAudit is one immutable, append-only record of a Look-Up Executor
// invocation, grounded on LookupExecutionAudit in the original source.
type ExecutionAudit struct {
	ID                    string      `db:"id" json:"id"`
	ExecutionID           string      `db:"execution_id" json:"execution_id"`
	FileExecutionID       *string     `db:"file_execution_id" json:"file_execution_id,omitempty"`
	PromptStudioProjectID *string     `db:"prompt_studio_project_id" json:"prompt_studio_project_id,omitempty"`
	LookupProjectID       string      `db:"lookup_project_id" json:"lookup_project_id"`
	InputData             []byte      `db:"input_data" json:"input_data"`
	ReferenceDataVersion  *int        `db:"reference_data_version" json:"reference_data_version,omitempty"`
	EnrichedOutput        []byte      `db:"enriched_output" json:"enriched_output,omitempty"`
	LLMProvider           string      `db:"llm_provider" json:"llm_provider,omitempty"`
	LLMModel              string      `db:"llm_model" json:"llm_model,omitempty"`
	LLMPrompt             string      `db:"llm_prompt" json:"llm_prompt,omitempty"`
	LLMResponse           *string     `db:"llm_response" json:"llm_response,omitempty"`
	LLMResponseCached     bool        `db:"llm_response_cached" json:"llm_response_cached"`
	Status                AuditStatus `db:"status" json:"status"`
	ConfidenceScore       *float64    `db:"confidence_score" json:"confidence_score,omitempty"`
	ExecutionTimeMs       int64       `db:"execution_time_ms" json:"execution_time_ms"`
	LLMCallTimeMs         *int64      `db:"llm_call_time_ms" json:"llm_call_time_ms,omitempty"`
	ErrorMessage          *string     `db:"error_message" json:"error_message,omitempty"`
	ExecutedAt            time.Time   `db:"executed_at" json:"executed_at"`
}

// WasSuccessful reports whether this record represents a successful execution.
func (a *ExecutionAudit) WasSuccessful() bool {
	return a.Status == AuditSuccess
}

// Validate enforces the audit invariants from spec §3:
// status=failed requires an error message, status=success requires output.
func (a *ExecutionAudit) Validate() error {
	if a.Status == AuditFailed && (a.ErrorMessage == nil || *a.ErrorMessage == "") {
		return &SyntaxError{Reason: "failed audit record requires error_message"}
	}
	if a.Status == AuditSuccess && len(a.EnrichedOutput) == 0 {
		return &SyntaxError{Reason: "successful audit record requires enriched_output"}
	}
	if a.ConfidenceScore != nil && (*a.ConfidenceScore < 0.0 || *a.ConfidenceScore > 1.0) {
		return &SyntaxError{Reason: "confidence_score must be within [0.00, 1.00]"}
	}
	return nil
}

// ProjectStats summarizes the audit history for one project, grounded on
// AuditLogger.get_project_stats in the original source.
type ProjectStats struct {
	TotalExecutions    int     `json:"total_executions"`
	Successful         int     `json:"successful"`
	Failed             int     `json:"failed"`
	Partial            int     `json:"partial"`
	SuccessRate        float64 `json:"success_rate"`
	AvgExecutionTimeMs float64 `json:"avg_execution_time_ms"`
	CacheHitRate       float64 `json:"cache_hit_rate"`
	AvgConfidence      float64 `json:"avg_confidence"`
}
