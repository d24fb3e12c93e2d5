package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"summonmind/atlas/pkg/audit"
	"summonmind/atlas/pkg/config"
	"summonmind/atlas/pkg/engine"
	"summonmind/atlas/pkg/ruleset"
	"summonmind/atlas/pkg/server"
	"summonmind/atlas/pkg/telemetry/logging"
	"summonmind/atlas/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	rulesetsPath  string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the validation server",
	Long: `Start the HTTP validation server with the specified configuration.

Examples:
  # Start with defaults
  atlas run

  # Start with a custom config
  atlas run --config /etc/atlas/atlas.yaml

  # Override the listen address
  atlas run --listen 0.0.0.0:8080

  # Serve rulesets from a directory with hot reload
  atlas run --rulesets /etc/atlas/rulesets

  # Validate config without starting the server
  atlas run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&runFlags.rulesetsPath, "rulesets", "", "override ruleset file or directory")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}
	if runFlags.rulesetsPath != "" {
		cfg.Rulesets.Path = runFlags.rulesetsPath
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Named rulesets are optional; inline requests always work.
	var manager *ruleset.Manager
	if cfg.Rulesets.Path != "" {
		manager, err = ruleset.NewManager(ruleset.NewFileSource(cfg.Rulesets.Path, logger), logger)
		if err != nil {
			return fmt.Errorf("failed to load rulesets: %w", err)
		}
		defer manager.Close()

		if cfg.Rulesets.Watch {
			if err := manager.StartWatching(ctx); err != nil {
				return fmt.Errorf("failed to start ruleset watcher: %w", err)
			}
		}
	}

	var store audit.Storage
	if cfg.Audit.Enabled {
		switch cfg.Audit.Backend {
		case "memory":
			store = audit.NewMemoryStorage()
		default:
			sqlite, err := audit.NewSQLiteStorage(&audit.SQLiteConfig{
				Path:         cfg.Audit.SQLitePath,
				MaxOpenConns: 10,
				MaxIdleConns: 5,
				WALMode:      true,
				BusyTimeout:  audit.DefaultSQLiteConfig().BusyTimeout,
			}, logger)
			if err != nil {
				return fmt.Errorf("failed to open audit storage: %w", err)
			}
			store = sqlite
		}
		defer store.Close()

		pruner := audit.NewPruner(store, &audit.RetentionConfig{
			RetentionDays: cfg.Audit.RetentionDays,
			PruneSchedule: cfg.Audit.PruneSchedule,
		}, logger)
		if err := pruner.Start(ctx); err != nil {
			return fmt.Errorf("failed to start retention scheduler: %w", err)
		}
		defer pruner.Stop()
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(&metrics.Config{Namespace: cfg.Metrics.Namespace})
	}

	srv := server.New(server.Options{
		Config:     cfg,
		Validator:  engine.NewValidator(logger),
		Rulesets:   manager,
		AuditStore: store,
		Metrics:    m,
		Logger:     logger,
	})

	return srv.Start(ctx)
}
