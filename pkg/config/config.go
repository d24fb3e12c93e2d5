package config

import "time"

// Config is the root configuration for the atlas server and CLI.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Rulesets RulesetsConfig `yaml:"rulesets"`
	Engine   EngineConfig   `yaml:"engine"`
	Audit    AuditConfig    `yaml:"audit"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// ListenAddress is the host:port the server binds to.
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds reading the request, including the body.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing the response.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout bounds keep-alive connections.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes caps the request body size. 0 means 1 MiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// RulesetsConfig configures where named rulesets are loaded from.
type RulesetsConfig struct {
	// Path is a ruleset YAML file or a directory of them.
	// Empty disables named rulesets; inline requests still work.
	Path string `yaml:"path"`

	// Watch enables hot reload on file changes.
	Watch bool `yaml:"watch"`

	// DebounceInterval coalesces rapid file events during a reload.
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// EngineConfig configures the validation pipeline.
type EngineConfig struct {
	// MaxConcurrent caps concurrently running validations.
	// 0 means no cap.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// AuditConfig configures the decision log.
type AuditConfig struct {
	// Enabled turns the decision log on.
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "sqlite" or "memory".
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`

	// RetentionDays is how long records are kept. 0 keeps them forever.
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for scheduled pruning.
	PruneSchedule string `yaml:"prune_schedule"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled exposes /metrics.
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	Namespace string `yaml:"namespace"`
}
