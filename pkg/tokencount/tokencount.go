// Package tokencount implements the LLM Client's pluggable token-counting
// abstraction (spec §4.4), mirroring the original's litellm.token_counter
// pluggability: a real, model-aware counter can be injected without
// changing the client's contract, and a length-based estimator is the
// always-available fallback.
package tokencount

import "math"

// Counter counts tokens for a given model and text. Implementations that
// wrap a real tokenizer should return an error when the model is unknown so
// callers can fall back to EstimateTokens.
type Counter interface {
	CountTokens(model, text string) (int, error)
}

// EstimateTokens applies the adapter-agnostic ⌈len(text)/4⌉ heuristic used
// when no model-specific tokenizer is available.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return int(math.Ceil(float64(len(text)) / 4))
}

// FallbackCounter always uses EstimateTokens, ignoring the model name. It is
// the default Counter wired into the LLM Client when no tokenizer-backed
// implementation is configured for a provider.
type FallbackCounter struct{}

// CountTokens implements Counter.
func (FallbackCounter) CountTokens(_ string, text string) (int, error) {
	return EstimateTokens(text), nil
}

// Count counts tokens for text using c if non-nil, falling back to
// EstimateTokens when c is nil or returns an error.
func Count(c Counter, model, text string) int {
	if c == nil {
		return EstimateTokens(text)
	}
	n, err := c.CountTokens(model, text)
	if err != nil {
		return EstimateTokens(text)
	}
	return n
}
