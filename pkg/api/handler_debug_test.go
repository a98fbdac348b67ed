package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookupengine/lookupengine/pkg/models"
	"github.com/lookupengine/lookupengine/pkg/orchestrator"
)

func TestEnrichPromptStudioOutput_NoLinksReturns404(t *testing.T) {
	s := newTestServer(&stubOrchestrator{}, &stubProjectStore{}, &stubLinkStore{}, &stubAuditReader{}, &stubCacheStore{}, nil)

	rec := doJSON(t, s, "POST", "/lookup-debug/enrich_ps_output", EnrichPSOutputRequest{
		PromptStudioProjectID: "ps-1",
		ExtractedData:         map[string]any{"sku": "ABC"},
	})

	assert.Equal(t, 404, rec.Code)
}

func TestEnrichPromptStudioOutput_MergesEnrichmentOverOriginalData(t *testing.T) {
	links := []*models.PromptStudioLink{{LookupProjectID: "p1", ExecutionOrder: 0}}
	projects := map[string]*models.Project{"p1": {ID: "p1", Name: "p1"}}
	out := &orchestrator.Output{
		LookupEnrichment: map[string]any{"vendor": "Acme"},
		Metadata:         orchestrator.Metadata{LookupsExecuted: 1, LookupsSuccessful: 1},
	}
	s := newTestServer(&stubOrchestrator{out: out}, &stubProjectStore{projects: projects}, &stubLinkStore{links: links}, &stubAuditReader{}, &stubCacheStore{}, nil)

	rec := doJSON(t, s, "POST", "/lookup-debug/enrich_ps_output", EnrichPSOutputRequest{
		PromptStudioProjectID: "ps-1",
		ExtractedData:         map[string]any{"sku": "ABC"},
	})

	require.Equal(t, 200, rec.Code)
	var resp EnrichPSOutputResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ABC", resp.EnrichedData["sku"])
	assert.Equal(t, "Acme", resp.EnrichedData["vendor"])
	assert.Equal(t, "ABC", resp.OriginalData["sku"])
	assert.NotContains(t, resp.OriginalData, "vendor")
}

func TestEnrichPromptStudioOutput_UnknownLinkedProjectPropagatesError(t *testing.T) {
	links := []*models.PromptStudioLink{{LookupProjectID: "missing", ExecutionOrder: 0}}
	s := newTestServer(&stubOrchestrator{}, &stubProjectStore{projects: map[string]*models.Project{}}, &stubLinkStore{links: links}, &stubAuditReader{}, &stubCacheStore{}, nil)

	rec := doJSON(t, s, "POST", "/lookup-debug/enrich_ps_output", EnrichPSOutputRequest{
		PromptStudioProjectID: "ps-1",
		ExtractedData:         map[string]any{},
	})

	assert.Equal(t, 404, rec.Code)
}
