package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/audit"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/config"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/processing/conversation"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers/deepseek"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/proxy/handlers"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/routing"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/server"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the proxy server",
	Long: `Start the proxy server with the specified configuration.

The server listens on the configured address and forwards chat completion
requests through truncation, the model fallback chain, and response
normalization.

Examples:
  # Start with defaults and environment overrides
  deepseek-proxy run

  # Start with a config file
  deepseek-proxy run --config /etc/deepseek-proxy/config.yaml

  # Override listen address
  deepseek-proxy run --listen 0.0.0.0:8080

  # Validate config without starting
  deepseek-proxy run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	setupLogging(&cfg.Telemetry.Logging)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Upstream client
	client, err := deepseek.NewClient(deepseek.Config{
		BaseURL: cfg.Upstream.BaseURL,
		APIKey:  cfg.Upstream.APIKey,
		Timeout: cfg.Upstream.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create upstream client: %w", err)
	}
	if !client.HasAPIKey() {
		slog.Warn("no upstream API key configured; requests will be refused",
			"hint", "set "+config.EnvPrefix+"_UPSTREAM_API_KEY")
	}

	// Metrics
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(nil)
	}

	// Routing chain
	state := routing.NewModelState(cfg.Models.Primary, cfg.Models.Fallbacks)
	var dispatchOpts []routing.Option
	if collector != nil {
		dispatchOpts = append(dispatchOpts, routing.WithObserver(collector))
	}
	dispatcher := routing.NewDispatcher(state, client, dispatchOpts...)

	slog.Info("model chain configured",
		"primary", cfg.Models.Primary,
		"fallbacks", cfg.Models.Fallbacks,
	)

	// Truncation
	truncator := newReloadableTruncator(cfg.Truncation.Tiers)

	// Audit ledger
	var auditor handlers.Auditor
	var scheduler *audit.Scheduler
	if cfg.Audit.Enabled {
		storeCfg := audit.DefaultStoreConfig()
		storeCfg.Path = cfg.Audit.Path
		store, err := audit.NewStore(storeCfg)
		if err != nil {
			return fmt.Errorf("failed to open audit store: %w", err)
		}
		defer store.Close()

		auditor = audit.NewRecorder(store)

		scheduler = audit.NewScheduler(store, cfg.Audit.PruneSchedule, cfg.Audit.RetentionDays)
		if err := scheduler.Start(ctx); err != nil {
			slog.Warn("failed to start audit retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
		}

		slog.Info("audit ledger enabled", "path", cfg.Audit.Path, "retention_days", cfg.Audit.RetentionDays)
	}

	// Handlers
	var recorder handlers.MetricsRecorder
	if collector != nil {
		recorder = collector
	}

	chatHandler := handlers.NewChatHandler(dispatcher, truncator, client, handlers.ChatOptions{
		ShowReasoning:     cfg.Models.ShowReasoning,
		StreamingEnabled:  cfg.Streaming.Enabled,
		TruncationEnabled: cfg.Truncation.Enabled,
	}, recorder, auditor)

	routes := server.Routes{
		Chat:     chatHandler,
		Health:   handlers.NewHealthHandler(state, client),
		Models:   handlers.NewModelsHandler(state),
		NotFound: handlers.NewNotFoundHandler(),
	}
	if collector != nil {
		routes.Metrics = collector.Handler()
		routes.MetricsPath = cfg.Telemetry.Metrics.Path
	}

	srv := server.NewServer(&cfg.Server, routes)

	// Hot reload of fallback list and tier table
	if cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, slog.Default())
		if err != nil {
			slog.Warn("config watcher unavailable", "error", err)
		} else {
			go func() {
				_ = watcher.Watch(ctx, func(next *config.Config) {
					state.SetFallbacks(next.Models.Fallbacks)
					truncator.setTiers(next.Truncation.Tiers)
					slog.Info("applied configuration changes",
						"fallbacks", next.Models.Fallbacks,
						"tiers", len(next.Truncation.Tiers),
					)
				})
			}()
			defer func() { _ = watcher.Stop() }()
		}
	}

	fmt.Printf("deepseek-proxy v%s\n", Version)
	fmt.Printf("✓ Listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if collector != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}

	// Blocks until signal or context cancellation.
	return srv.Start(ctx)
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		cfg, err := config.LoadConfigFromEnv()
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func setupLogging(cfg *config.LoggingConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	slog.SetDefault(slog.New(handler))
}

// reloadableTruncator wraps a conversation.Truncator behind a lock so the
// config watcher can swap the tier table without restarting.
type reloadableTruncator struct {
	mu    sync.RWMutex
	inner *conversation.Truncator
}

func newReloadableTruncator(tiers []conversation.Tier) *reloadableTruncator {
	return &reloadableTruncator{inner: conversation.NewTruncator(tiers)}
}

func (r *reloadableTruncator) setTiers(tiers []conversation.Tier) {
	if err := conversation.ValidateTiers(tiers); err != nil {
		slog.Error("rejecting tier table update", "error", err)
		return
	}
	r.mu.Lock()
	r.inner = conversation.NewTruncator(tiers)
	r.mu.Unlock()
}

func (r *reloadableTruncator) Truncate(history []providers.Message) []providers.Message {
	r.mu.RLock()
	inner := r.inner
	r.mu.RUnlock()
	return inner.Truncate(history)
}

func (r *reloadableTruncator) Dropped(length int) int {
	r.mu.RLock()
	inner := r.inner
	r.mu.RUnlock()
	return inner.Dropped(length)
}
