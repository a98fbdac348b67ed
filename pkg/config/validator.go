package config

import (
	"fmt"
	"os"
)

// Validator validates a fully-merged Config, failing fast on the first
// invalid section.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll validates every section in dependency order: LLM providers
// first since the orchestrator and cache sections don't reference them.
func (v *Validator) ValidateAll() error {
	if err := v.validateLLMProviders(); err != nil {
		return fmt.Errorf("LLM provider validation failed: %w", err)
	}
	if err := v.validateOrchestrator(); err != nil {
		return fmt.Errorf("orchestrator validation failed: %w", err)
	}
	if err := v.validateCache(); err != nil {
		return fmt.Errorf("cache validation failed: %w", err)
	}
	if err := v.validateAuditRetention(); err != nil {
		return fmt.Errorf("audit retention validation failed: %w", err)
	}
	if err := v.validateToken(); err != nil {
		return fmt.Errorf("token validation failed: %w", err)
	}
	return nil
}

func (v *Validator) validateLLMProviders() error {
	for name, provider := range v.cfg.LLMProviderRegistry.GetAll() {
		if !provider.Type.IsValid() {
			return NewValidationError("llm_provider", name, "type", fmt.Errorf("invalid provider type: %s", provider.Type))
		}
		if provider.Model == "" {
			return NewValidationError("llm_provider", name, "model", ErrMissingRequiredField)
		}
		if provider.APIKeyEnv != "" {
			if value := os.Getenv(provider.APIKeyEnv); value == "" {
				return NewValidationError("llm_provider", name, "api_key_env", fmt.Errorf("environment variable %s is not set", provider.APIKeyEnv))
			}
		}
		if provider.Type == LLMProviderTypeVertexAI {
			if provider.ProjectEnv != "" && os.Getenv(provider.ProjectEnv) == "" {
				return NewValidationError("llm_provider", name, "project_env", fmt.Errorf("environment variable %s is not set", provider.ProjectEnv))
			}
			if provider.LocationEnv != "" && os.Getenv(provider.LocationEnv) == "" {
				return NewValidationError("llm_provider", name, "location_env", fmt.Errorf("environment variable %s is not set", provider.LocationEnv))
			}
		}
	}
	return nil
}

func (v *Validator) validateOrchestrator() error {
	oc := v.cfg.Orchestrator
	if oc == nil {
		return fmt.Errorf("orchestrator configuration is nil")
	}
	if oc.MaxConcurrentExecutions < 1 {
		return NewValidationError("orchestrator", "", "max_concurrent_executions", fmt.Errorf("must be at least 1, got %d", oc.MaxConcurrentExecutions))
	}
	if oc.QueueTimeout <= 0 {
		return NewValidationError("orchestrator", "", "queue_timeout", fmt.Errorf("must be positive, got %v", oc.QueueTimeout))
	}
	if oc.ExecutionTimeout <= 0 {
		return NewValidationError("orchestrator", "", "execution_timeout", fmt.Errorf("must be positive, got %v", oc.ExecutionTimeout))
	}
	if oc.ExecutionTimeout > oc.QueueTimeout {
		return NewValidationError("orchestrator", "", "execution_timeout", fmt.Errorf("must not exceed queue_timeout (%v > %v)", oc.ExecutionTimeout, oc.QueueTimeout))
	}
	return nil
}

func (v *Validator) validateCache() error {
	c := v.cfg.Cache
	if c == nil {
		return fmt.Errorf("cache configuration is nil")
	}
	if !c.Backend.IsValid() {
		return NewValidationError("cache", "", "backend", fmt.Errorf("invalid backend: %s", c.Backend))
	}
	if c.Backend == CacheBackendRedis && c.RedisAddr == "" {
		return NewValidationError("cache", "", "redis_addr", ErrMissingRequiredField)
	}
	if c.TTL <= 0 {
		return NewValidationError("cache", "", "ttl", fmt.Errorf("must be positive, got %v", c.TTL))
	}
	if c.FallbackTTL <= 0 {
		return NewValidationError("cache", "", "fallback_ttl", fmt.Errorf("must be positive, got %v", c.FallbackTTL))
	}
	return nil
}

func (v *Validator) validateAuditRetention() error {
	r := v.cfg.AuditRetain
	if r == nil {
		return fmt.Errorf("audit retention configuration is nil")
	}
	if r.AuditRetentionDays < 1 {
		return NewValidationError("audit_retention", "", "audit_retention_days", fmt.Errorf("must be at least 1, got %d", r.AuditRetentionDays))
	}
	if r.CleanupInterval <= 0 {
		return NewValidationError("audit_retention", "", "cleanup_interval", fmt.Errorf("must be positive, got %v", r.CleanupInterval))
	}
	return nil
}

func (v *Validator) validateToken() error {
	t := v.cfg.Token
	if t == nil {
		return fmt.Errorf("token configuration is nil")
	}
	if t.DefaultContextWindow < 1 {
		return NewValidationError("token", "", "default_context_window", fmt.Errorf("must be at least 1, got %d", t.DefaultContextWindow))
	}
	if t.ReservedOutputTokens < 0 {
		return NewValidationError("token", "", "reserved_output_tokens", fmt.Errorf("must be non-negative, got %d", t.ReservedOutputTokens))
	}
	if t.ReservedOutputTokens >= t.DefaultContextWindow {
		return NewValidationError("token", "", "reserved_output_tokens", fmt.Errorf("must be less than default_context_window"))
	}
	return nil
}
