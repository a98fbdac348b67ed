// Package lookupexec implements the Look-Up Executor: the state machine that
// carries one Look-Up project's prompt template, reference corpus, and input
// record through resolution, caching, and LLM dispatch to a single
// enrichment result.
package lookupexec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lookupengine/lookupengine/pkg/lookuperr"
	"github.com/lookupengine/lookupengine/pkg/models"
	"github.com/lookupengine/lookupengine/pkg/referencedata"
	"github.com/lookupengine/lookupengine/pkg/resolver"
)

// ReferenceLoader loads a project's concatenated reference corpus text.
// Satisfied by *pkg/referencedata.Loader.
type ReferenceLoader interface {
	Load(ctx context.Context, projectID string, version *int) (*referencedata.ReferenceData, error)
}

// TemplateLister looks up a project's active prompt templates. Satisfied by
// pkg/storage.TemplateRepository.
type TemplateLister interface {
	ListActiveByProject(ctx context.Context, projectID string) ([]*models.Template, error)
}

// ResponseCache is the subset of pkg/cache.Cache the Executor needs.
type ResponseCache interface {
	Key(resolvedPrompt, referenceData string) string
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// Generator dispatches one resolved prompt to an LLM provider and returns a
// normalized JSON object. Satisfied by pkg/llmclient.Client.
type Generator interface {
	Generate(ctx context.Context, providerName, model, resolvedPrompt string, timeout time.Duration) (map[string]any, error)
}

// AuditWriter persists one terminal-transition record. Satisfied by both
// pkg/storage.AuditRepository and the fire-and-forget pkg/audit wrapper.
type AuditWriter interface {
	Create(ctx context.Context, a *models.ExecutionAudit) error
}

// Input is everything one Executor invocation needs: the project it is
// running for, the decoded input record, and the caller's correlation ids.
type Input struct {
	Project               *models.Project
	InputData             map[string]any
	InputDataRaw          []byte
	ReferenceVersion      *int
	ExecutionID           string
	FileExecutionID       *string
	PromptStudioProjectID *string
	Timeout               time.Duration
	CacheTTL              time.Duration
	// SkipCache bypasses both the cache read and the post-LLM cache write
	// for this invocation, e.g. the REST execute endpoint's use_cache=false.
	SkipCache bool
}

// Result is one Executor invocation's outcome, shaped per spec §4.5's
// success/failure result contracts.
type Result struct {
	Status          string
	ProjectID       string
	ProjectName     string
	Data            map[string]any
	Confidence      *float64
	Cached          bool
	ExecutionTimeMs int64
	Error           string
	ErrorType       lookuperr.ErrorType
	// TokenCount, ContextLimit, and Model are only populated when
	// ErrorType is context_window_exceeded.
	TokenCount   int
	ContextLimit int
	Model        string
}

// Status values for Result.Status, per spec §4.5's result contracts.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Executor runs the LOAD_REF → LOAD_TMPL → RESOLVE → CHECK_CACHE → CALL_LLM
// → PARSE state machine for one Look-Up project.
type Executor struct {
	referenceData ReferenceLoader
	templates     TemplateLister
	cache         ResponseCache
	llm           Generator
	audit         AuditWriter
	logger        *slog.Logger
}

// New constructs an Executor from its collaborators. audit may be nil, in
// which case audit records are simply not written (used by callers that
// wrap the Executor in their own audit discipline).
func New(referenceData ReferenceLoader, templates TemplateLister, cache ResponseCache, llm Generator, audit AuditWriter, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		referenceData: referenceData,
		templates:     templates,
		cache:         cache,
		llm:           llm,
		audit:         audit,
		logger:        logger,
	}
}

// run accumulates the state an audit record needs as the state machine
// progresses, so a failure at any stage can still write "as much populated
// state as reached" per spec §4.5.
type run struct {
	start        time.Time
	refVersion   *int
	resolved     string
	provider     string
	model        string
	llmResponse  *string
	cached       bool
	llmCallStart time.Time
	llmCallMs    *int64
}

// Execute runs one Look-Up project against one input record to completion.
func (e *Executor) Execute(ctx context.Context, in Input) *Result {
	r := &run{start: time.Now()}

	refData, err := e.referenceData.Load(ctx, in.Project.ID, in.ReferenceVersion)
	if err != nil {
		return e.fail(ctx, in, r, err)
	}
	r.refVersion = &refData.Version

	templates, err := e.templates.ListActiveByProject(ctx, in.Project.ID)
	if err != nil {
		return e.fail(ctx, in, r, &lookuperr.RetrievalError{Cause: err})
	}
	if len(templates) == 0 {
		return e.fail(ctx, in, r, &lookuperr.TemplateNotFound{ProjectID: in.Project.ID})
	}
	tmpl := templates[0]

	resolved, err := resolver.Resolve(tmpl.TemplateText, in.InputData, refData.Content)
	if err != nil {
		return e.fail(ctx, in, r, &lookuperr.LLMError{Cause: err})
	}
	r.resolved = resolved
	r.provider = providerKey(tmpl.LLMConfig)
	r.model = tmpl.LLMConfig.Model

	cacheKey := e.cache.Key(resolved, refData.Content)
	if !in.SkipCache {
		if cached, hit := e.cache.Get(ctx, cacheKey); hit {
			r.cached = true
			r.llmResponse = &cached
			data, perr := parseCached(cached)
			if perr != nil {
				return e.fail(ctx, in, r, &lookuperr.ParseError{Cause: perr})
			}
			return e.succeed(ctx, in, r, data)
		}
	}

	timeout := in.Timeout
	r.llmCallStart = time.Now()
	data, err := e.llm.Generate(ctx, r.provider, r.model, resolved, timeout)
	llmElapsed := time.Since(r.llmCallStart).Milliseconds()
	r.llmCallMs = &llmElapsed
	if err != nil {
		return e.fail(ctx, in, r, err)
	}

	if in.SkipCache {
		return e.succeed(ctx, in, r, data)
	}

	raw, merr := json.Marshal(data)
	if merr == nil {
		s := string(raw)
		r.llmResponse = &s
		ttl := in.CacheTTL
		e.cache.Set(ctx, cacheKey, s, ttl)
	} else {
		e.logger.Warn("lookupexec: failed to marshal LLM response for caching", "error", merr, "project_id", in.Project.ID)
	}

	return e.succeed(ctx, in, r, data)
}

// succeed extracts and clamps confidence, strips it from the data payload,
// writes the success audit record, and returns the success result shape.
func (e *Executor) succeed(ctx context.Context, in Input, r *run, data map[string]any) *Result {
	confidence := extractConfidence(data, e.logger, in.Project.ID)
	var elapsed int64
	if !r.cached {
		elapsed = time.Since(r.start).Milliseconds()
	}

	enriched, err := json.Marshal(data)
	if err != nil {
		return e.fail(ctx, in, r, &lookuperr.ParseError{Cause: err})
	}

	audit := &models.ExecutionAudit{
		ExecutionID:           in.ExecutionID,
		FileExecutionID:       in.FileExecutionID,
		PromptStudioProjectID: in.PromptStudioProjectID,
		LookupProjectID:       in.Project.ID,
		InputData:             in.InputDataRaw,
		ReferenceDataVersion:  r.refVersion,
		EnrichedOutput:        enriched,
		LLMProvider:           r.provider,
		LLMModel:              r.model,
		LLMPrompt:             r.resolved,
		LLMResponse:           r.llmResponse,
		LLMResponseCached:     r.cached,
		Status:                models.AuditSuccess,
		ConfidenceScore:       confidence,
		ExecutionTimeMs:       elapsed,
		LLMCallTimeMs:         r.llmCallMs,
	}
	e.writeAudit(ctx, audit)

	return &Result{
		Status:          StatusSuccess,
		ProjectID:       in.Project.ID,
		ProjectName:     in.Project.Name,
		Data:            data,
		Confidence:      confidence,
		Cached:          r.cached,
		ExecutionTimeMs: elapsed,
	}
}

// fail writes the failure audit record with whatever state was reached and
// returns the failure result shape, cached always false per spec §4.5.
func (e *Executor) fail(ctx context.Context, in Input, r *run, cause error) *Result {
	elapsed := time.Since(r.start).Milliseconds()
	errType := lookuperr.TypeOf(cause)
	msg := cause.Error()

	audit := &models.ExecutionAudit{
		ExecutionID:           in.ExecutionID,
		FileExecutionID:       in.FileExecutionID,
		PromptStudioProjectID: in.PromptStudioProjectID,
		LookupProjectID:       in.Project.ID,
		InputData:             in.InputDataRaw,
		ReferenceDataVersion:  r.refVersion,
		LLMProvider:           r.provider,
		LLMModel:              r.model,
		LLMPrompt:             r.resolved,
		LLMResponse:           r.llmResponse,
		LLMResponseCached:     false,
		Status:                models.AuditFailed,
		ExecutionTimeMs:       elapsed,
		LLMCallTimeMs:         r.llmCallMs,
		ErrorMessage:          &msg,
	}
	e.writeAudit(ctx, audit)

	result := &Result{
		Status:          StatusFailed,
		ProjectID:       in.Project.ID,
		ProjectName:     in.Project.Name,
		Cached:          false,
		ExecutionTimeMs: elapsed,
		Error:           msg,
		ErrorType:       errType,
	}
	var cwe *lookuperr.ContextWindowExceeded
	if errors.As(cause, &cwe) {
		result.TokenCount = cwe.TokenCount
		result.ContextLimit = cwe.Limit
		result.Model = cwe.Model
	}
	return result
}

// writeAudit is best-effort: a write failure is logged but never converts a
// successful execution into a failed one.
func (e *Executor) writeAudit(ctx context.Context, audit *models.ExecutionAudit) {
	if e.audit == nil {
		return
	}
	if err := e.audit.Create(ctx, audit); err != nil {
		e.logger.Error("lookupexec: failed to write audit record", "error", err, "project_id", audit.LookupProjectID, "execution_id", audit.ExecutionID)
	}
}

// providerKey picks the registry lookup key for a template's LLM config:
// the explicit provider name if set, else the adapter id.
func providerKey(cfg models.LLMConfig) string {
	if cfg.Provider != "" {
		return cfg.Provider
	}
	return cfg.AdapterID
}

// parseCached unmarshals a cache hit's stored JSON object. Cache entries are
// always written from an already-normalized LLM response, so failure here
// only happens on external cache corruption.
func parseCached(s string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		return nil, fmt.Errorf("cached response is not a JSON object: %w", err)
	}
	return data, nil
}

// extractConfidence pulls and removes the "confidence" field from data,
// clamping an out-of-range value to [0, 1] and logging a warning.
func extractConfidence(data map[string]any, logger *slog.Logger, projectID string) *float64 {
	raw, ok := data["confidence"]
	delete(data, "confidence")
	if !ok {
		return nil
	}
	f, ok := toFloat(raw)
	if !ok {
		return nil
	}
	switch {
	case f < 0.0:
		logger.Warn("lookupexec: confidence below 0, clamping", "project_id", projectID, "confidence", f)
		f = 0.0
	case f > 1.0:
		logger.Warn("lookupexec: confidence above 1, clamping", "project_id", projectID, "confidence", f)
		f = 1.0
	}
	return &f
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
