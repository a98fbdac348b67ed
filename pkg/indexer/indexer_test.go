package indexer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_SuccessDecodesResponse(t *testing.T) {
	var gotReq ExtractRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extract", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ExtractResponse{ExtractedText: "hello world"})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	resp, err := c.Extract(context.Background(), ExtractRequest{X2TextID: "x2t-1", FilePath: "/data/a.pdf"})

	require.NoError(t, err)
	assert.Equal(t, "hello world", resp.ExtractedText)
	assert.Equal(t, "x2t-1", gotReq.X2TextID)
}

func TestExtract_NonOKStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"extraction failed"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	_, err := c.Extract(context.Background(), ExtractRequest{FilePath: "/data/a.pdf"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "extraction failed")
}

func TestIndex_SuccessReturnsDocID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/index", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(IndexResponse{DocID: "doc-9"})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	resp, err := c.Index(context.Background(), IndexRequest{FilePath: "/data/a.pdf", ChunkSize: 512})

	require.NoError(t, err)
	assert.Equal(t, "doc-9", resp.DocID)
}

func TestIndex_MalformedResponseIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	_, err := c.Index(context.Background(), IndexRequest{FilePath: "/data/a.pdf"})

	require.Error(t, err)
}
