package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/snoutly/trackwatch/internal/api"
	"github.com/snoutly/trackwatch/internal/evaluator"
	"github.com/snoutly/trackwatch/internal/logging"
	"github.com/snoutly/trackwatch/internal/metrics"
	"github.com/snoutly/trackwatch/internal/scheduler"
	"github.com/snoutly/trackwatch/internal/storage"
	"github.com/snoutly/trackwatch/pkg/version"
)

var (
	configFile string
	httpAddr   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "trackwatch",
	Short: "Trackwatch - Tracker alert evaluation engine",
	Long: `Trackwatch evaluates tracker positions against geofences and
scheduled alert rules, and records the alerts it raises.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the evaluation service",
	RunE:  runServe,
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run a single evaluation pass and print the summary",
	RunE:  runEvaluate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if verbose {
			out, _ := json.MarshalIndent(version.GetBuildInfo(), "", "  ")
			fmt.Println(string(out))
			return
		}
		fmt.Println(version.VersionString())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	serveCmd.Flags().StringVarP(&httpAddr, "address", "a", "", "HTTP listen address")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves configuration from file or defaults, plus CLI
// flag overrides.
func loadConfig() (*Config, error) {
	var cfg *Config
	if configFile != "" {
		var err error
		cfg, err = LoadConfig(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = DefaultConfig()
	}

	if httpAddr != "" {
		cfg.Server.Address = httpAddr
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// openStorage creates the data directory, opens the database and runs
// migrations.
func openStorage(cfg *Config) (storage.Storage, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	store := storage.NewSQLiteStorage(cfg.Database.Path)
	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return store, nil
}

func newDispatcher(cfg *Config, store storage.Storage, log zerolog.Logger) (*evaluator.Dispatcher, error) {
	window, err := cfg.SuppressionWindow()
	if err != nil {
		return nil, err
	}
	return evaluator.NewDispatcher(store, evaluator.Options{
		Workers:           cfg.Evaluation.Workers,
		SuppressionWindow: window,
	}, log), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Pretty)

	secret := os.Getenv("TRACKWATCH_CHECK_SECRET")
	if secret == "" {
		return fmt.Errorf("TRACKWATCH_CHECK_SECRET environment variable is required")
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info().Str("path", cfg.Database.Path).Msg("database initialized")

	dispatcher, err := newDispatcher(cfg, store, log)
	if err != nil {
		return err
	}

	evaluateTimeout, err := cfg.EvaluateTimeout()
	if err != nil {
		return err
	}
	apiCfg := &api.Config{
		Address:            cfg.Server.Address,
		CheckSecret:        secret,
		EvaluateTimeout:    evaluateTimeout,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	}
	srv, err := api.New(apiCfg, store, dispatcher, log)
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 2)

	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	var metricsSrv *metrics.Server
	if cfg.Metrics.Enabled {
		metricsSrv = metrics.NewServer(cfg.Metrics.Address, log)
		go func() {
			if err := metricsSrv.Start(); err != nil {
				errChan <- err
			}
		}()
	}

	var runner *scheduler.Runner
	if cfg.Scheduler.Enabled {
		runTimeout, err := cfg.SchedulerRunTimeout()
		if err != nil {
			return err
		}
		runner = scheduler.New(scheduler.Config{RunTimeout: runTimeout}, dispatcher, log)
		if err := runner.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	var watcher *configWatcher
	if configFile != "" {
		watcher, err = watchConfig(configFile, dispatcher, log)
		if err != nil {
			log.Warn().Err(err).Msg("config watching disabled")
		}
	}

	log.Info().Str("version", version.ShortVersionString()).Str("addr", cfg.Server.Address).Msg("trackwatch started")

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errChan:
		log.Error().Err(err).Msg("server failed")
	}

	if watcher != nil {
		watcher.Close()
	}
	if runner != nil {
		runner.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("api shutdown failed")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("metrics shutdown failed")
		}
	}

	log.Info().Msg("trackwatch stopped")
	return nil
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Pretty)

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	dispatcher, err := newDispatcher(cfg, store, log)
	if err != nil {
		return err
	}

	summary := dispatcher.RunEvaluationPass(context.Background(), time.Now())

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	fmt.Println(string(out))

	if summary.HasErrors() {
		return fmt.Errorf("evaluation pass finished with errors")
	}
	return nil
}
