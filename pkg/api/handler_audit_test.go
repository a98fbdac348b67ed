package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookupengine/lookupengine/pkg/models"
)

func TestProjectAuditStats_ReturnsStats(t *testing.T) {
	stats := &models.ProjectStats{TotalExecutions: 10, Successful: 8, SuccessRate: 0.8}
	s := newTestServer(&stubOrchestrator{}, &stubProjectStore{}, &stubLinkStore{}, &stubAuditReader{stats: stats}, &stubCacheStore{}, nil)

	rec := doJSON(t, s, "GET", "/lookup-projects/p1/audit-stats", nil)

	require.Equal(t, 200, rec.Code)
	var resp models.ProjectStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.TotalExecutions)
}

func TestExecutionAuditTrail_ReturnsEveryRowForExecutionID(t *testing.T) {
	rows := []*models.ExecutionAudit{
		{ExecutionID: "exec-5", LookupProjectID: "p1"},
		{ExecutionID: "exec-5", LookupProjectID: "p2"},
	}
	s := newTestServer(&stubOrchestrator{}, &stubProjectStore{}, &stubLinkStore{}, &stubAuditReader{trail: rows}, &stubCacheStore{}, nil)

	rec := doJSON(t, s, "GET", "/lookup-executions/exec-5/audit", nil)

	require.Equal(t, 200, rec.Code)
	var resp []*models.ExecutionAudit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestExecutionAuditTrail_EmptyReturns404(t *testing.T) {
	s := newTestServer(&stubOrchestrator{}, &stubProjectStore{}, &stubLinkStore{}, &stubAuditReader{trail: nil}, &stubCacheStore{}, nil)

	rec := doJSON(t, s, "GET", "/lookup-executions/exec-missing/audit", nil)

	assert.Equal(t, 404, rec.Code)
}
