package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lookupengine/lookupengine/pkg/lookuperr"
	"github.com/lookupengine/lookupengine/pkg/models"
	"github.com/lookupengine/lookupengine/pkg/orchestrator"
)

// executeProject handles POST /lookup-projects/:id/execute: runs the one
// named Look-Up project against input_data and returns its enrichment.
func (s *Server) executeProject(c *gin.Context) {
	projectID := c.Param("id")

	project, err := s.projects.Get(c.Request.Context(), projectID)
	if err != nil {
		status, body := MapError(err)
		c.JSON(status, body)
		return
	}

	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), ErrorType: "invalid_request"})
		return
	}

	orchReq := orchestrator.Request{
		InputData:   req.InputData,
		Projects:    []*models.Project{project},
		ExecutionID: uuid.NewString(),
	}
	if raw, merr := json.Marshal(req.InputData); merr == nil {
		orchReq.InputDataRaw = raw
	}
	if req.TimeoutSeconds != nil {
		orchReq.ExecutionTimeout = time.Duration(*req.TimeoutSeconds) * time.Second
	}
	if req.UseCache != nil && !*req.UseCache {
		orchReq.SkipCache = true
	}

	out := s.orchestrator.Run(c.Request.Context(), orchReq)
	metadata := toMetadataResponse(out.Metadata)

	if enrichment, allFailed := firstFailureEnrichment(out.Metadata); allFailed {
		body := ErrorResponse{Error: enrichment.Error, ErrorType: string(enrichment.ErrorType), LookupMetadata: &metadata}
		if body.ErrorType == "" {
			body.ErrorType = "execution_failed"
		}
		if enrichment.ErrorType == lookuperr.ErrorTypeContextWindowExceeded {
			body.TokenCount = enrichment.TokenCount
			body.ContextLimit = enrichment.ContextLimit
			body.Model = enrichment.Model
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	c.JSON(http.StatusOK, ExecuteResponse{
		LookupEnrichment: out.LookupEnrichment,
		LookupMetadata:   metadata,
	})
}

