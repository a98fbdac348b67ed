package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// lookupYAMLConfig mirrors the top-level shape of lookup.yaml: the
// sections a deployer can override. Every field is a pointer/zero-value so
// an absent section falls back to its Default*Config.
type lookupYAMLConfig struct {
	Defaults     *Defaults            `yaml:"defaults"`
	Orchestrator *OrchestratorConfig  `yaml:"orchestrator"`
	Cache        *CacheConfig         `yaml:"cache"`
	AuditRetain  *AuditRetentionConfig `yaml:"audit_retention"`
	Token        *TokenConfig         `yaml:"token"`
}

// llmProvidersYAMLConfig mirrors llm-providers.yaml: a flat map of named
// provider profiles, kept in its own file so credentials-adjacent
// configuration can be managed and access-controlled separately from the
// orchestrator/cache knobs in lookup.yaml.
type llmProvidersYAMLConfig struct {
	Providers map[string]LLMProviderConfig `yaml:"providers"`
}

const (
	lookupConfigFile       = "lookup.yaml"
	llmProvidersConfigFile = "llm-providers.yaml"
)

// Initialize loads, merges, and validates the configuration rooted at
// configDir, logging a one-line summary on success. This is the only
// exported entry point callers (cmd/lookupengine/main.go) use.
func Initialize(configDir string) (*Config, error) {
	cfg, err := load(configDir)
	if err != nil {
		return nil, err
	}
	if err := NewValidator(cfg).ValidateAll(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	stats := cfg.Stats()
	slog.Info("configuration loaded", "config_dir", configDir, "llm_providers", stats.LLMProviderCount)
	return cfg, nil
}

type configLoader struct {
	configDir string
}

func load(configDir string) (*Config, error) {
	l := &configLoader{configDir: configDir}

	var lookupYAML lookupYAMLConfig
	if err := l.loadYAML(lookupConfigFile, &lookupYAML, false); err != nil {
		return nil, err
	}

	var providersYAML llmProvidersYAMLConfig
	if err := l.loadYAML(llmProvidersConfigFile, &providersYAML, false); err != nil {
		return nil, err
	}

	cfg := &Config{
		configDir:    configDir,
		Defaults:     resolveDefaults(lookupYAML.Defaults),
		Orchestrator: resolveOrchestratorConfig(lookupYAML.Orchestrator),
		Cache:        resolveCacheConfig(lookupYAML.Cache),
		AuditRetain:  resolveAuditRetentionConfig(lookupYAML.AuditRetain),
		Token:        resolveTokenConfig(lookupYAML.Token),
		LLMProviderRegistry: NewLLMProviderRegistry(
			mergeLLMProviders(nil, providersYAML.Providers),
		),
	}

	return cfg, nil
}

// loadYAML reads and unmarshals one YAML file under the loader's configDir,
// expanding {{.VAR}} environment references first. A missing optional file is not an
// error — out is left at its zero value and every field falls back to its
// Default*Config. A missing required file returns ErrConfigNotFound.
func (l *configLoader) loadYAML(name string, out interface{}, required bool) error {
	path := filepath.Join(l.configDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if required {
				return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return nil
		}
		return NewLoadError(path, err)
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, out); err != nil {
		return NewLoadError(path, fmt.Errorf("%w: %w", ErrInvalidYAML, err))
	}
	return nil
}

// resolveDefaults, resolveOrchestratorConfig, resolveCacheConfig,
// resolveAuditRetentionConfig, and resolveTokenConfig each deep-merge an
// optional user override onto the section's built-in default, using mergo
// so a YAML section that sets only one field doesn't wipe the others back
// to zero values.

func resolveDefaults(override *Defaults) *Defaults {
	d := &Defaults{LLMProvider: "default"}
	mergeOverride(d, override)
	return d
}

func resolveOrchestratorConfig(override *OrchestratorConfig) *OrchestratorConfig {
	d := DefaultOrchestratorConfig()
	mergeOverride(d, override)
	return d
}

func resolveCacheConfig(override *CacheConfig) *CacheConfig {
	d := DefaultCacheConfig()
	mergeOverride(d, override)
	return d
}

func resolveAuditRetentionConfig(override *AuditRetentionConfig) *AuditRetentionConfig {
	d := DefaultAuditRetentionConfig()
	mergeOverride(d, override)
	return d
}

func resolveTokenConfig(override *TokenConfig) *TokenConfig {
	d := DefaultTokenConfig()
	mergeOverride(d, override)
	return d
}

// mergeOverride merges src onto dst in place, letting any non-zero field
// in src win. A nil src (section absent from the YAML file) is a no-op.
func mergeOverride[T any](dst *T, src *T) {
	if src == nil {
		return
	}
	if err := mergo.Merge(dst, *src, mergo.WithOverride); err != nil {
		slog.Warn("config override merge failed, using defaults", "error", err)
	}
}
