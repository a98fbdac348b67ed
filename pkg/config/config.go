package config

import "fmt"

// Config is the fully-resolved, immutable-after-load configuration for one
// lookupengine process: built-in defaults merged with user YAML overrides,
// plus the LLM provider registry every Look-Up Executor consults.
type Config struct {
	configDir string

	Defaults      *Defaults
	Orchestrator  *OrchestratorConfig
	Cache         *CacheConfig
	AuditRetain   *AuditRetentionConfig
	Token         *TokenConfig

	LLMProviderRegistry *LLMProviderRegistry
}

// ConfigStats summarizes a loaded configuration for startup logging.
type ConfigStats struct {
	LLMProviderCount int
}

// Stats returns a snapshot of the loaded configuration's size, for startup
// logging the way Initialize logs it.
func (c *Config) Stats() ConfigStats {
	return ConfigStats{
		LLMProviderCount: c.LLMProviderRegistry.Len(),
	}
}

// GetLLMProvider resolves a provider name through the registry, returning
// ErrLLMProviderNotFound if it isn't registered.
func (c *Config) GetLLMProvider(name string) (*LLMProviderConfig, error) {
	return c.LLMProviderRegistry.Get(name)
}

// ConfigDir returns the directory this configuration was loaded from.
func (c *Config) ConfigDir() string {
	return c.configDir
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{dir=%s, llm_providers=%d}", c.configDir, c.LLMProviderRegistry.Len())
}
