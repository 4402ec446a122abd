package config

import "time"

const (
	defaultRetentionInterval  = time.Hour
	defaultRetentionMaxAge    = 90 * 24 * time.Hour
	defaultRetentionBatchSize = 1000
)

// AuditRetentionConfig controls the background pruning of old audit entries.
// Pruning only runs when an audit database is configured.
type AuditRetentionConfig struct {
	Enabled   bool          `env:"ENABLED"    envDefault:"true"`
	Interval  time.Duration `env:"INTERVAL"   envDefault:"1h"`
	MaxAge    time.Duration `env:"MAX_AGE"    envDefault:"2160h"`
	BatchSize int           `env:"BATCH_SIZE" envDefault:"1000"`
}

// Sanitize applies guardrails to retention values.
func (c *AuditRetentionConfig) Sanitize() {
	if c.Interval <= 0 {
		c.Interval = defaultRetentionInterval
	}
	if c.MaxAge <= 0 {
		c.MaxAge = defaultRetentionMaxAge
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultRetentionBatchSize
	}
}
