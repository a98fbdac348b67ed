// Package api is the thin, core-driven REST surface: project execution,
// Prompt-Studio debug enrichment, audit/cache introspection, and project
// teardown. Built gin-first: a Server struct wrapping a router, gin.Context
// handlers, ErrorResponse error bodies, and a gin.Default()/router.Run() startup
// idiom.
package api

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/lookupengine/lookupengine/pkg/cache"
	"github.com/lookupengine/lookupengine/pkg/lookupexec"
	"github.com/lookupengine/lookupengine/pkg/models"
	"github.com/lookupengine/lookupengine/pkg/orchestrator"
)

// Orchestrator runs one enrichment request across its Look-Up projects.
// Satisfied by *pkg/orchestrator.Orchestrator.
type Orchestrator interface {
	Run(ctx context.Context, req orchestrator.Request) *orchestrator.Output
}

// ProjectStore is the subset of pkg/storage.ProjectRepository the API needs.
type ProjectStore interface {
	Get(ctx context.Context, id string) (*models.Project, error)
	Delete(ctx context.Context, id string) error
}

// LinkStore is the subset of pkg/storage.LinkRepository the API needs.
type LinkStore interface {
	ListByPromptStudioProject(ctx context.Context, promptStudioProjectID string) ([]*models.PromptStudioLink, error)
	DeleteLookupProject(ctx context.Context, lookupProjectID string) error
}

// AuditReader is the subset of pkg/audit.Logger the API needs for its
// read-only introspection endpoints.
type AuditReader interface {
	ProjectStats(ctx context.Context, projectID string) (*models.ProjectStats, error)
	ListByExecutionID(ctx context.Context, executionID string) ([]*models.ExecutionAudit, error)
}

// CacheStore is the subset of pkg/cache.Cache the API needs.
type CacheStore interface {
	Key(resolvedPrompt, referenceData string) string
	Warmup(ctx context.Context, projectID string, entries map[string]string)
	Stats() cache.Stats
}

// Pinger checks the backing store is reachable. Satisfied directly by
// *sqlx.DB (it embeds *sql.DB, which implements PingContext).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server is the composition root for the REST surface: one gin.Engine plus
// the collaborators every handler needs.
type Server struct {
	router       *gin.Engine
	orchestrator Orchestrator
	projects     ProjectStore
	links        LinkStore
	audit        AuditReader
	cache        CacheStore
	db           Pinger
	logger       *slog.Logger
}

// NewServer builds a Server and registers its routes. db may be nil, in
// which case the health check skips the database probe.
func NewServer(orch Orchestrator, projects ProjectStore, links LinkStore, audit AuditReader, cacheStore CacheStore, db Pinger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router:       gin.Default(),
		orchestrator: orch,
		projects:     projects,
		links:        links,
		audit:        audit,
		cache:        cacheStore,
		db:           db,
		logger:       logger,
	}
	s.registerRoutes()
	return s
}

// Router exposes the underlying gin.Engine, mainly for tests that drive
// requests through httptest without a listening socket.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server on addr, blocking until it exits or errors.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.health)

	s.router.POST("/lookup-projects/:id/execute", s.executeProject)
	s.router.DELETE("/lookup-projects/:id", s.deleteProject)
	s.router.GET("/lookup-projects/:id/audit-stats", s.projectAuditStats)

	s.router.GET("/lookup-executions/:execution_id/audit", s.executionAuditTrail)

	s.router.POST("/lookup-debug/enrich_ps_output", s.enrichPromptStudioOutput)

	s.router.GET("/cache/stats", s.cacheStats)
	s.router.POST("/cache/warmup", s.cacheWarmup)
}

func toMetadataResponse(m orchestrator.Metadata) LookupMetadataResponse {
	enrichments := make([]EnrichmentResponse, 0, len(m.Enrichments))
	for _, e := range m.Enrichments {
		enrichments = append(enrichments, EnrichmentResponse{
			ProjectID:       e.ProjectID,
			ProjectName:     e.ProjectName,
			Status:          e.Status,
			Error:           e.Error,
			ExecutionTimeMs: e.ExecutionTimeMs,
			Cached:          e.Cached,
		})
	}
	return LookupMetadataResponse{
		ExecutionID:          m.ExecutionID,
		ExecutedAt:           m.ExecutedAt,
		TotalExecutionTimeMs: m.TotalExecutionTimeMs,
		LookupsExecuted:      m.LookupsExecuted,
		LookupsSuccessful:    m.LookupsSuccessful,
		LookupsFailed:        m.LookupsFailed,
		ConflictsResolved:    m.ConflictsResolved,
		Enrichments:          enrichments,
	}
}

// firstFailureEnrichment returns the first failed enrichment, and whether
// every Look-Up in the call failed — per spec §7: "the response is not an
// error unless every Look-Up failed."
func firstFailureEnrichment(m orchestrator.Metadata) (orchestrator.Enrichment, bool) {
	if m.LookupsExecuted == 0 || m.LookupsFailed < m.LookupsExecuted {
		return orchestrator.Enrichment{}, false
	}
	for _, e := range m.Enrichments {
		if e.Status != lookupexec.StatusSuccess {
			return e, true
		}
	}
	return orchestrator.Enrichment{}, false
}
