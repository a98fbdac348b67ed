// Package indexer is the HTTP client for the out-of-process indexer
// service: extract(...) turns a raw file into text, index(...) embeds
// that text into the vector store. Both are out-of-process calls this
// core drives but does not implement — a thin net/http.Client wrapper
// with context-carrying requests and typed request/response structs.
package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ExtractRequest drives the indexer's extraction step for one data source
// file, per spec §6.
type ExtractRequest struct {
	X2TextID        string `json:"x2text_id"`
	FilePath        string `json:"file_path"`
	OutputFilePath  string `json:"output_file_path"`
	EnableHighlight bool   `json:"enable_highlight"`
}

// ExtractResponse carries back the extracted plain text.
type ExtractResponse struct {
	ExtractedText string `json:"extracted_text"`
}

// IndexRequest drives the indexer's embedding step for previously extracted
// text, per spec §6.
type IndexRequest struct {
	ToolID        string `json:"tool_id"`
	EmbeddingID   string `json:"embedding_id"`
	VectorDBID    string `json:"vector_db_id"`
	X2TextID      string `json:"x2text_id"`
	FilePath      string `json:"file_path"`
	ChunkSize     int    `json:"chunk_size"`
	ChunkOverlap  int    `json:"chunk_overlap"`
	Reindex       bool   `json:"reindex"`
	ExtractedText string `json:"extracted_text"`
}

// IndexResponse carries back the vector store's document id for the
// freshly materialized index, recorded into IndexManager.IndexIDsHistory.
type IndexResponse struct {
	DocID string `json:"doc_id"`
}

// Client calls the indexer HTTP service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds an indexer Client. httpClient may be nil, in which case
// a client with a 60s timeout is used — extraction of large documents can
// run long.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, logger: logger}
}

// Extract turns one data source file into plain text via the indexer's
// /extract endpoint.
func (c *Client) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	var out ExtractResponse
	if err := c.post(ctx, "/extract", req, &out); err != nil {
		return nil, fmt.Errorf("extract %s: %w", req.FilePath, err)
	}
	return &out, nil
}

// Index embeds already-extracted text into the vector store via the
// indexer's /index endpoint, returning the doc id to append to the index
// manager's history.
func (c *Client) Index(ctx context.Context, req IndexRequest) (*IndexResponse, error) {
	var out IndexResponse
	if err := c.post(ctx, "/index", req, &out); err != nil {
		return nil, fmt.Errorf("index %s: %w", req.FilePath, err)
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("indexer returned HTTP %d for %s: %s", resp.StatusCode, path, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}
