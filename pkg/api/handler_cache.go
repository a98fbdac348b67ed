package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// cacheStats handles GET /cache/stats.
func (s *Server) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.cache.Stats())
}

// cacheWarmup handles POST /cache/warmup: pre-populates the response cache
// from precomputed resolved-prompt/reference-data/value triples, keyed the
// same way the Executor derives its own cache keys.
func (s *Server) cacheWarmup(c *gin.Context) {
	var req CacheWarmupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), ErrorType: "invalid_request"})
		return
	}

	entries := make(map[string]string, len(req.Entries))
	for _, e := range req.Entries {
		entries[s.cache.Key(e.ResolvedPrompt, e.ReferenceData)] = e.Value
	}

	s.cache.Warmup(c.Request.Context(), req.ProjectID, entries)
	c.JSON(http.StatusOK, gin.H{"project_id": req.ProjectID, "entries_warmed": len(entries)})
}
