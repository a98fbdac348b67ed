package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookupengine/lookupengine/pkg/lookuperr"
	"github.com/lookupengine/lookupengine/pkg/models"
	"github.com/lookupengine/lookupengine/pkg/orchestrator"
)

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestExecuteProject_UnknownProjectReturns404(t *testing.T) {
	s := newTestServer(&stubOrchestrator{}, &stubProjectStore{projects: map[string]*models.Project{}}, &stubLinkStore{}, &stubAuditReader{}, &stubCacheStore{}, nil)

	rec := doJSON(t, s, "POST", "/lookup-projects/missing/execute", ExecuteRequest{InputData: map[string]any{}})

	assert.Equal(t, 404, rec.Code)
}

func TestExecuteProject_SuccessReturnsMergedEnrichment(t *testing.T) {
	out := &orchestrator.Output{
		LookupEnrichment: map[string]any{"vendor": "Acme"},
		Metadata: orchestrator.Metadata{
			ExecutionID:       "exec-1",
			LookupsExecuted:   1,
			LookupsSuccessful: 1,
			Enrichments:       []orchestrator.Enrichment{{ProjectID: "p1", Status: "success"}},
		},
	}
	s := newTestServer(
		&stubOrchestrator{out: out},
		&stubProjectStore{projects: map[string]*models.Project{"p1": {ID: "p1", Name: "p1"}}},
		&stubLinkStore{}, &stubAuditReader{}, &stubCacheStore{}, nil,
	)

	rec := doJSON(t, s, "POST", "/lookup-projects/p1/execute", ExecuteRequest{InputData: map[string]any{"sku": "ABC"}})

	require.Equal(t, 200, rec.Code)
	var resp ExecuteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Acme", resp.LookupEnrichment["vendor"])
	assert.Equal(t, 1, resp.LookupMetadata.LookupsSuccessful)
}

func TestExecuteProject_AllFailedReturnsBadRequestWithErrorType(t *testing.T) {
	out := &orchestrator.Output{
		LookupEnrichment: map[string]any{},
		Metadata: orchestrator.Metadata{
			LookupsExecuted: 1,
			LookupsFailed:   1,
			Enrichments: []orchestrator.Enrichment{
				{ProjectID: "p1", Status: "failed", Error: "template not found", ErrorType: lookuperr.ErrorTypeTemplateMissing},
			},
		},
	}
	s := newTestServer(
		&stubOrchestrator{out: out},
		&stubProjectStore{projects: map[string]*models.Project{"p1": {ID: "p1", Name: "p1"}}},
		&stubLinkStore{}, &stubAuditReader{}, &stubCacheStore{}, nil,
	)

	rec := doJSON(t, s, "POST", "/lookup-projects/p1/execute", ExecuteRequest{InputData: map[string]any{}})

	require.Equal(t, 400, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(lookuperr.ErrorTypeTemplateMissing), resp.ErrorType)
	require.NotNil(t, resp.LookupMetadata)
}

func TestExecuteProject_TimeoutSecondsOverridesExecutionTimeout(t *testing.T) {
	var captured orchestrator.Request
	orch := &capturingOrchestrator{capture: &captured}
	s := newTestServer(orch, &stubProjectStore{projects: map[string]*models.Project{"p1": {ID: "p1", Name: "p1"}}}, &stubLinkStore{}, &stubAuditReader{}, &stubCacheStore{}, nil)

	timeout := 7
	doJSON(t, s, "POST", "/lookup-projects/p1/execute", ExecuteRequest{InputData: map[string]any{}, TimeoutSeconds: &timeout})

	assert.Equal(t, 7*time.Second, captured.ExecutionTimeout)
}

func TestExecuteProject_UseCacheFalseSkipsCache(t *testing.T) {
	var captured orchestrator.Request
	orch := &capturingOrchestrator{capture: &captured}
	s := newTestServer(orch, &stubProjectStore{projects: map[string]*models.Project{"p1": {ID: "p1", Name: "p1"}}}, &stubLinkStore{}, &stubAuditReader{}, &stubCacheStore{}, nil)

	useCache := false
	doJSON(t, s, "POST", "/lookup-projects/p1/execute", ExecuteRequest{InputData: map[string]any{}, UseCache: &useCache})

	assert.True(t, captured.SkipCache)
}

func TestExecuteProject_ContextWindowExceededCarriesTokenDetails(t *testing.T) {
	out := &orchestrator.Output{
		LookupEnrichment: map[string]any{},
		Metadata: orchestrator.Metadata{
			LookupsExecuted: 1,
			LookupsFailed:   1,
			Enrichments: []orchestrator.Enrichment{
				{
					ProjectID:    "p1",
					Status:       "failed",
					Error:        "context window exceeded",
					ErrorType:    lookuperr.ErrorTypeContextWindowExceeded,
					TokenCount:   9000,
					ContextLimit: 6000,
					Model:        "gpt-4o",
				},
			},
		},
	}
	s := newTestServer(
		&stubOrchestrator{out: out},
		&stubProjectStore{projects: map[string]*models.Project{"p1": {ID: "p1", Name: "p1"}}},
		&stubLinkStore{}, &stubAuditReader{}, &stubCacheStore{}, nil,
	)

	rec := doJSON(t, s, "POST", "/lookup-projects/p1/execute", ExecuteRequest{InputData: map[string]any{}})

	require.Equal(t, 400, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(lookuperr.ErrorTypeContextWindowExceeded), resp.ErrorType)
	assert.Equal(t, 9000, resp.TokenCount)
	assert.Equal(t, 6000, resp.ContextLimit)
	assert.Equal(t, "gpt-4o", resp.Model)
}

func TestExecuteProject_PopulatesInputDataRawForAudit(t *testing.T) {
	var captured orchestrator.Request
	orch := &capturingOrchestrator{capture: &captured}
	s := newTestServer(orch, &stubProjectStore{projects: map[string]*models.Project{"p1": {ID: "p1", Name: "p1"}}}, &stubLinkStore{}, &stubAuditReader{}, &stubCacheStore{}, nil)

	doJSON(t, s, "POST", "/lookup-projects/p1/execute", ExecuteRequest{InputData: map[string]any{"sku": "ABC"}})

	require.NotNil(t, captured.InputDataRaw)
	var roundtrip map[string]any
	require.NoError(t, json.Unmarshal(captured.InputDataRaw, &roundtrip))
	assert.Equal(t, "ABC", roundtrip["sku"])
}

type capturingOrchestrator struct {
	capture *orchestrator.Request
}

func (c *capturingOrchestrator) Run(ctx context.Context, req orchestrator.Request) *orchestrator.Output {
	*c.capture = req
	return &orchestrator.Output{LookupEnrichment: map[string]any{}}
}
