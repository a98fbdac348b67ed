package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Defaults:     &Defaults{LLMProvider: "default"},
		Orchestrator: DefaultOrchestratorConfig(),
		Cache:        DefaultCacheConfig(),
		AuditRetain:  DefaultAuditRetentionConfig(),
		Token:        DefaultTokenConfig(),
		LLMProviderRegistry: NewLLMProviderRegistry(map[string]*LLMProviderConfig{
			"default": {Type: LLMProviderTypeOpenAI, Model: "gpt-4o"},
		}),
	}
}

func TestValidator_ValidConfigPasses(t *testing.T) {
	require.NoError(t, NewValidator(validConfig()).ValidateAll())
}

func TestValidator_RejectsZeroMaxConcurrentExecutions(t *testing.T) {
	cfg := validConfig()
	cfg.Orchestrator.MaxConcurrentExecutions = 0

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_executions")
}

func TestValidator_RejectsExecutionTimeoutExceedingQueueTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Orchestrator.ExecutionTimeout = cfg.Orchestrator.QueueTimeout + 1

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execution_timeout")
}

func TestValidator_RejectsInvalidCacheBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Backend = "memcached"

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend")
}

func TestValidator_RejectsReservedTokensExceedingContextWindow(t *testing.T) {
	cfg := validConfig()
	cfg.Token.ReservedOutputTokens = cfg.Token.DefaultContextWindow

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved_output_tokens")
}

func TestValidator_RejectsMissingModel(t *testing.T) {
	cfg := validConfig()
	cfg.LLMProviderRegistry = NewLLMProviderRegistry(map[string]*LLMProviderConfig{
		"default": {Type: LLMProviderTypeOpenAI},
	})

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model")
}
