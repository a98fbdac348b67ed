package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lookupengine/lookupengine/pkg/models"
	"github.com/lookupengine/lookupengine/pkg/orchestrator"
)

// enrichPromptStudioOutput handles POST /lookup-debug/enrich_ps_output: runs
// every Look-Up project linked to a Prompt-Studio project, in the link's
// execution_order, against extracted_data and returns both the raw merged
// enrichment and the full enriched record, for Prompt-Studio's own debug UI.
func (s *Server) enrichPromptStudioOutput(c *gin.Context) {
	var req EnrichPSOutputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), ErrorType: "invalid_request"})
		return
	}

	ctx := c.Request.Context()

	links, err := s.links.ListByPromptStudioProject(ctx, req.PromptStudioProjectID)
	if err != nil {
		status, body := MapError(err)
		c.JSON(status, body)
		return
	}
	if len(links) == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no lookup projects linked to this prompt studio project", ErrorType: "not_found"})
		return
	}

	projects := make([]*models.Project, 0, len(links))
	for _, link := range links {
		project, err := s.projects.Get(ctx, link.LookupProjectID)
		if err != nil {
			status, body := MapError(err)
			c.JSON(status, body)
			return
		}
		projects = append(projects, project)
	}

	psProjectID := req.PromptStudioProjectID
	orchReq := orchestrator.Request{
		InputData:             req.ExtractedData,
		Projects:              projects,
		ExecutionID:           uuid.NewString(),
		PromptStudioProjectID: &psProjectID,
	}
	if raw, merr := json.Marshal(req.ExtractedData); merr == nil {
		orchReq.InputDataRaw = raw
	}
	out := s.orchestrator.Run(ctx, orchReq)

	enriched := make(map[string]any, len(req.ExtractedData)+len(out.LookupEnrichment))
	for k, v := range req.ExtractedData {
		enriched[k] = v
	}
	for k, v := range out.LookupEnrichment {
		enriched[k] = v
	}

	c.JSON(http.StatusOK, EnrichPSOutputResponse{
		OriginalData:     req.ExtractedData,
		EnrichedData:     enriched,
		LookupEnrichment: out.LookupEnrichment,
		LookupMetadata:   toMetadataResponse(out.Metadata),
	})
}
