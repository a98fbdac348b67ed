// Package llmclient implements the Look-Up LLM Client: a mandatory token
// pre-flight check, single-call dispatch to the profile's configured
// provider, and response normalization that never lets an unparseable
// string reach the Executor. Dispatch uses a *http.Client with no
// client-level timeout; each request carries a context whose deadline is the
// per-call timeout. Provider lookup goes through
// pkg/config's LLMProviderRegistry.
package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/lookupengine/lookupengine/pkg/config"
	"github.com/lookupengine/lookupengine/pkg/lookuperr"
	"github.com/lookupengine/lookupengine/pkg/tokencount"
)

// DefaultRequestTimeout is applied to a dispatch when the caller supplies
// zero, per spec §4.4 ("defaults to 30 s").
const DefaultRequestTimeout = 30 * time.Second

// Adapter dispatches a single prompt to a specific LLM provider's wire
// protocol and returns the raw response text. Implementations must respect
// ctx's deadline.
type Adapter interface {
	Generate(ctx context.Context, provider config.LLMProviderConfig, model, prompt string) (string, error)
}

// Client is the LLM Client described in spec §4.4.
type Client struct {
	registry *config.LLMProviderRegistry
	token    *config.TokenConfig
	counter  tokencount.Counter
	adapters map[config.LLMProviderType]Adapter
}

// New builds a Client wired to registry for provider lookup and tokenCfg for
// the context-window pre-flight check. A FallbackCounter is used until
// WithCounter installs a model-aware one.
func New(registry *config.LLMProviderRegistry, tokenCfg *config.TokenConfig) *Client {
	return &Client{
		registry: registry,
		token:    tokenCfg,
		counter:  tokencount.FallbackCounter{},
		adapters: map[config.LLMProviderType]Adapter{
			config.LLMProviderTypeOpenAI:    NewHTTPAdapter(),
			config.LLMProviderTypeAnthropic: NewHTTPAdapter(),
			config.LLMProviderTypeGoogle:    NewHTTPAdapter(),
			config.LLMProviderTypeVertexAI:  NewHTTPAdapter(),
			config.LLMProviderTypeAzure:     NewHTTPAdapter(),
		},
	}
}

// WithCounter installs a model-aware token counter, replacing the default
// length-based estimator.
func (c *Client) WithCounter(counter tokencount.Counter) *Client {
	c.counter = counter
	return c
}

// WithAdapter overrides the Adapter used for a given provider type, e.g. to
// inject a test double or a richer SDK-backed implementation.
func (c *Client) WithAdapter(t config.LLMProviderType, a Adapter) *Client {
	c.adapters[t] = a
	return c
}

// Generate runs the full §4.4 pipeline: token pre-flight, single dispatch to
// providerName's adapter, and response normalization. It never returns a
// *lookuperr.ParseError — an unparseable response becomes a synthetic
// warning object instead.
func (c *Client) Generate(ctx context.Context, providerName, model, resolvedPrompt string, timeout time.Duration) (map[string]any, error) {
	provider, err := c.registry.Get(providerName)
	if err != nil {
		return nil, &lookuperr.LLMError{Cause: err}
	}

	if err := c.checkContextWindow(model, resolvedPrompt); err != nil {
		return nil, err
	}

	adapter, ok := c.adapters[provider.Type]
	if !ok {
		return nil, &lookuperr.LLMError{Cause: fmt.Errorf("no adapter registered for provider type %q", provider.Type)}
	}

	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	dispatchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := adapter.Generate(dispatchCtx, *provider, model, resolvedPrompt)
	if err != nil {
		if errors.Is(dispatchCtx.Err(), context.DeadlineExceeded) {
			return nil, &lookuperr.LLMTimeout{Timeout: timeout.String()}
		}
		return nil, &lookuperr.LLMError{Cause: err}
	}

	return normalize(raw), nil
}

// checkContextWindow applies spec §4.4's mandatory pre-flight: count tokens,
// reserve the configured output budget, and fail fast rather than dispatch.
func (c *Client) checkContextWindow(model, prompt string) error {
	count := tokencount.Count(c.counter, model, prompt)
	limit := c.token.DefaultContextWindow - c.token.ReservedOutputTokens
	if count > limit {
		return &lookuperr.ContextWindowExceeded{TokenCount: count, Limit: limit, Model: model}
	}
	return nil
}

// normalize implements spec §4.4's response-normalization ladder: direct
// JSON-object parse, then a parse of the substring between the first "{"
// and the last "}", then a synthetic fallback object.
func normalize(raw string) map[string]any {
	if obj, ok := parseObject(raw); ok {
		return obj
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start >= 0 && end > start {
		if obj, ok := parseObject(raw[start : end+1]); ok {
			return obj
		}
	}

	const truncateAt = 500
	truncated := raw
	if len(truncated) > truncateAt {
		truncated = truncated[:truncateAt]
	}
	slog.Warn("llmclient: response did not parse as a JSON object, returning synthetic fallback", "length", len(raw))
	return map[string]any{
		"raw_response": truncated,
		"confidence":   0.3,
		"warning":      "response could not be parsed as a JSON object",
	}
}

func parseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// NewHTTPAdapter builds the default net/http-based Adapter shared by every
// provider type. Generate sends the same request shape whatever the
// provider's Type; see HTTPAdapter.
func NewHTTPAdapter() *HTTPAdapter {
	return &HTTPAdapter{httpClient: &http.Client{}}
}

// HTTPAdapter speaks an OpenAI-chat-completions-compatible wire format,
// which every provider's profile is expected to present via BaseURL (an
// OpenAI-compatible gateway, or the provider's own compatible endpoint).
type HTTPAdapter struct {
	httpClient *http.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate implements Adapter.
func (a *HTTPAdapter) Generate(ctx context.Context, provider config.LLMProviderConfig, model, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(provider.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey := resolveEnv(provider.APIKeyEnv); apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("dispatch to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("provider returned HTTP %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("provider returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// resolveEnv returns the value of the named environment variable, or the
// empty string when name is empty.
func resolveEnv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
