package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStats_ReturnsBackendCounters(t *testing.T) {
	s := newTestServer(&stubOrchestrator{}, &stubProjectStore{}, &stubLinkStore{}, &stubAuditReader{}, &stubCacheStore{}, nil)

	rec := doJSON(t, s, "GET", "/cache/stats", nil)

	require.Equal(t, 200, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "redis", resp["backend"])
	assert.Equal(t, float64(3), resp["hits"])
}

func TestCacheWarmup_DerivesKeysAndCallsWarmup(t *testing.T) {
	cacheStore := &stubCacheStore{}
	s := newTestServer(&stubOrchestrator{}, &stubProjectStore{}, &stubLinkStore{}, &stubAuditReader{}, cacheStore, nil)

	rec := doJSON(t, s, "POST", "/cache/warmup", CacheWarmupRequest{
		ProjectID: "proj-1",
		Entries: []CacheWarmupEntry{
			{ResolvedPrompt: "prompt-a", ReferenceData: "ref-a", Value: `{"vendor":"Acme"}`},
		},
	})

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "proj-1", cacheStore.warmedProject)
	require.Len(t, cacheStore.warmedEntries, 1)
	assert.Equal(t, `{"vendor":"Acme"}`, cacheStore.warmedEntries[cacheStore.Key("prompt-a", "ref-a")])
}
