package config

import "time"

// AuditRetentionConfig governs the background sweep that prunes old
// LookupExecutionAudit rows.
type AuditRetentionConfig struct {
	AuditRetentionDays int           `yaml:"audit_retention_days"`
	CleanupInterval    time.Duration `yaml:"cleanup_interval"`
}

// DefaultAuditRetentionConfig returns a one-year retention window swept
// every 12 hours.
func DefaultAuditRetentionConfig() *AuditRetentionConfig {
	return &AuditRetentionConfig{
		AuditRetentionDays: 365,
		CleanupInterval:    12 * time.Hour,
	}
}
