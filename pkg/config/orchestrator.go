package config

import "time"

// OrchestratorConfig bounds one Orchestrator.Run call: how many Look-Up
// Executors may run concurrently for a single enrichment request, and the
// two timeout tiers (per-execution and overall-queue).
type OrchestratorConfig struct {
	MaxConcurrentExecutions int           `yaml:"max_concurrent_executions"`
	QueueTimeout            time.Duration `yaml:"queue_timeout"`
	ExecutionTimeout        time.Duration `yaml:"execution_timeout"`
}

// DefaultOrchestratorConfig returns the defaults named in spec §4.7:
// 10 concurrent executions, a 120s overall queue timeout, and a 30s
// per-execution timeout.
func DefaultOrchestratorConfig() *OrchestratorConfig {
	return &OrchestratorConfig{
		MaxConcurrentExecutions: 10,
		QueueTimeout:            120 * time.Second,
		ExecutionTimeout:        30 * time.Second,
	}
}
