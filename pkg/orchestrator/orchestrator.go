// Package orchestrator fans one enrichment request out across its Look-Up
// projects' Executors, bounded by a worker cap and two timeout tiers, then
// merges their results, per spec §4.7. Grounded on the concurrency shape of
// the example sevigo-code-warden repo's RAGService.generateComparisons
// (errgroup.WithContext plus a buffered-channel semaphore gate), generalized
// from "fan out across LLM models" to "fan out across Look-Up projects."
package orchestrator

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lookupengine/lookupengine/pkg/config"
	"github.com/lookupengine/lookupengine/pkg/lookuperr"
	"github.com/lookupengine/lookupengine/pkg/lookupexec"
	"github.com/lookupengine/lookupengine/pkg/merge"
	"github.com/lookupengine/lookupengine/pkg/models"
)

// Executor runs one Look-Up project's enrichment for one input record.
// Satisfied by *pkg/lookupexec.Executor.
type Executor interface {
	Execute(ctx context.Context, in lookupexec.Input) *lookupexec.Result
}

// Request is one enrichment call: the input record and the priority-ordered
// Look-Up projects to run against it. Projects[0] has the highest priority.
type Request struct {
	InputData             map[string]any
	InputDataRaw          []byte
	Projects              []*models.Project
	ExecutionID           string
	FileExecutionID       *string
	PromptStudioProjectID *string
	ReferenceVersion      *int
	CacheTTL              time.Duration
	// SkipCache bypasses the Executor's response cache entirely for this
	// call, e.g. the REST execute endpoint's use_cache=false.
	SkipCache bool
	// ExecutionTimeout overrides the configured per-task timeout for this
	// call only, when non-zero (e.g. the REST execute endpoint's
	// timeout_seconds). Zero means use the Orchestrator's configured
	// default.
	ExecutionTimeout time.Duration
}

// Enrichment describes one project's contribution for the result metadata.
type Enrichment struct {
	ProjectID       string
	ProjectName     string
	Status          string
	Error           string
	ErrorType       lookuperr.ErrorType
	ExecutionTimeMs int64
	Cached          bool
	// TokenCount, ContextLimit, and Model are only populated when
	// ErrorType is context_window_exceeded.
	TokenCount   int
	ContextLimit int
	Model        string
}

// Metadata is the `_lookup_metadata` block emitted alongside merged data.
type Metadata struct {
	ExecutionID          string
	ExecutedAt           time.Time
	TotalExecutionTimeMs int64
	LookupsExecuted      int
	LookupsSuccessful    int
	LookupsFailed        int
	ConflictsResolved    int
	Enrichments          []Enrichment
}

// Output is the Orchestrator's full result: merged enrichment data plus
// metadata describing how it was produced.
type Output struct {
	LookupEnrichment map[string]any
	Metadata         Metadata
}

// Orchestrator runs the bounded, two-timeout-tier fan-out described in
// spec §4.7 over one Executor shared across all projects in a call.
type Orchestrator struct {
	executor Executor
	config   *config.OrchestratorConfig
	now      func() time.Time
}

// New builds an Orchestrator. cfg may be nil, in which case
// config.DefaultOrchestratorConfig applies.
func New(executor Executor, cfg *config.OrchestratorConfig) *Orchestrator {
	if cfg == nil {
		cfg = config.DefaultOrchestratorConfig()
	}
	return &Orchestrator{executor: executor, config: cfg, now: time.Now}
}

const (
	errExecutionTimeout = "Execution timeout"
	errQueueTimeout     = "Queue timeout"
)

// indexedResult pairs a task's original priority position with its outcome,
// so results can be sorted back into priority order after concurrent
// completion.
type indexedResult struct {
	index  int
	result *lookupexec.Result
}

// Run executes every project in req.Projects against req.InputData, bounded
// by the configured worker cap and timeout tiers, merges the successful
// results, and assembles the `_lookup_metadata` envelope.
func (o *Orchestrator) Run(ctx context.Context, req Request) *Output {
	startedAt := o.now()

	if len(req.Projects) == 0 {
		return &Output{
			LookupEnrichment: map[string]any{},
			Metadata: Metadata{
				ExecutionID: req.ExecutionID,
				ExecutedAt:  startedAt,
			},
		}
	}

	queueCtx, cancel := context.WithTimeout(ctx, o.config.QueueTimeout)
	defer cancel()

	execTimeout := o.config.ExecutionTimeout
	if req.ExecutionTimeout > 0 {
		execTimeout = req.ExecutionTimeout
	}

	results := make([]*indexedResult, len(req.Projects))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(queueCtx)
	sem := make(chan struct{}, o.config.MaxConcurrentExecutions)

	for i, project := range req.Projects {
		i, project := i, project
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				mu.Lock()
				results[i] = &indexedResult{index: i, result: o.timeoutResult(project, errQueueTimeout, o.config.QueueTimeout)}
				mu.Unlock()
				return nil
			}

			r := o.runOne(gctx, project, req, execTimeout)

			mu.Lock()
			results[i] = &indexedResult{index: i, result: r}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return o.assemble(req, startedAt, results)
}

// runOne applies the per-task timeout around a single Executor.Execute call.
// A per-task deadline exceeded is reported as "Execution timeout" per
// spec §4.7, unless the queue-wide deadline fired first (detected via the
// parent context), in which case it is reported as "Queue timeout" like
// any other task still waiting on the semaphore. The task's own in-flight
// I/O cannot be safely interrupted, so a late completion after the
// deadline is simply discarded by the caller.
func (o *Orchestrator) runOne(ctx context.Context, project *models.Project, req Request, execTimeout time.Duration) *lookupexec.Result {
	taskCtx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	done := make(chan *lookupexec.Result, 1)
	go func() {
		done <- o.executor.Execute(taskCtx, lookupexec.Input{
			Project:               project,
			InputData:             req.InputData,
			InputDataRaw:          req.InputDataRaw,
			ReferenceVersion:      req.ReferenceVersion,
			ExecutionID:           req.ExecutionID,
			FileExecutionID:       req.FileExecutionID,
			PromptStudioProjectID: req.PromptStudioProjectID,
			Timeout:               execTimeout,
			CacheTTL:              req.CacheTTL,
			SkipCache:             req.SkipCache,
		})
	}()

	select {
	case r := <-done:
		return r
	case <-taskCtx.Done():
		// taskCtx is a child of the queue-wide context: if the parent is
		// already done, the queue deadline fired, not this task's own
		// per-task timeout.
		if ctx.Err() != nil {
			return o.timeoutResult(project, errQueueTimeout, o.config.QueueTimeout)
		}
		return o.timeoutResult(project, errExecutionTimeout, execTimeout)
	}
}

func (o *Orchestrator) timeoutResult(project *models.Project, message string, timeout time.Duration) *lookupexec.Result {
	return &lookupexec.Result{
		Status:          lookupexec.StatusFailed,
		ProjectID:       project.ID,
		ProjectName:     project.Name,
		Cached:          false,
		ExecutionTimeMs: timeout.Milliseconds(),
		Error:           message,
	}
}

// assemble partitions results into successful/failed, sorts successful by
// original priority order, filters each to its changed fields, merges them,
// and builds the `_lookup_metadata` block.
func (o *Orchestrator) assemble(req Request, startedAt time.Time, results []*indexedResult) *Output {
	var successful []indexedResult
	enrichments := make([]Enrichment, 0, len(results))

	for _, r := range results {
		if r == nil || r.result == nil {
			continue
		}
		res := r.result
		enrichments = append(enrichments, Enrichment{
			ProjectID:       res.ProjectID,
			ProjectName:     res.ProjectName,
			Status:          res.Status,
			Error:           res.Error,
			ErrorType:       res.ErrorType,
			ExecutionTimeMs: res.ExecutionTimeMs,
			Cached:          res.Cached,
			TokenCount:      res.TokenCount,
			ContextLimit:    res.ContextLimit,
			Model:           res.Model,
		})
		if res.Status == lookupexec.StatusSuccess {
			successful = append(successful, *r)
		}
	}

	sort.SliceStable(successful, func(a, b int) bool { return successful[a].index < successful[b].index })

	mergeResults := make([]merge.Result, 0, len(successful))
	for _, s := range successful {
		data := merge.FilterChangedFields(s.result.Data, req.InputData)
		mergeResults = append(mergeResults, merge.Result{
			ProjectID:       s.result.ProjectID,
			ProjectName:     s.result.ProjectName,
			Data:            data,
			Confidence:      s.result.Confidence,
			ExecutionTimeMS: s.result.ExecutionTimeMs,
			Cached:          s.result.Cached,
		})
	}

	merged := merge.Merge(mergeResults)

	return &Output{
		LookupEnrichment: merged.Data,
		Metadata: Metadata{
			ExecutionID:          req.ExecutionID,
			ExecutedAt:           startedAt,
			TotalExecutionTimeMs: time.Since(startedAt).Milliseconds(),
			LookupsExecuted:      len(req.Projects),
			LookupsSuccessful:    len(successful),
			LookupsFailed:        len(results) - len(successful),
			ConflictsResolved:    merged.ConflictsResolved,
			Enrichments:          enrichments,
		},
	}
}
