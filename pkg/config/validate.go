package config

import "fmt"

// Validate checks the configuration for invalid values. Defaults must be
// applied first.
func Validate(cfg *Config) error {
	if cfg.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address must not be empty")
	}
	if cfg.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must not be negative")
	}

	if cfg.Rulesets.Watch && cfg.Rulesets.Path == "" {
		return fmt.Errorf("rulesets.watch requires rulesets.path")
	}

	if cfg.Engine.MaxConcurrent < 0 {
		return fmt.Errorf("engine.max_concurrent must not be negative")
	}

	switch cfg.Audit.Backend {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("audit.backend must be %q or %q, got %q", "sqlite", "memory", cfg.Audit.Backend)
	}
	if cfg.Audit.RetentionDays < 0 {
		return fmt.Errorf("audit.retention_days must not be negative")
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be %q or %q, got %q", "json", "text", cfg.Logging.Format)
	}

	return nil
}
