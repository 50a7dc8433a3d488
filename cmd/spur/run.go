package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"switchyard-hq/spur/pkg/config"
	"switchyard-hq/spur/pkg/credential"
	"switchyard-hq/spur/pkg/server"
	"switchyard-hq/spur/pkg/target"
	"switchyard-hq/spur/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the spur relay server",
	Long: `Start the spur relay server with the specified configuration.

The server listens on the configured address, serves the admin API under
/api/, and relays everything under the proxy prefix to the configured
upstream target.

Examples:
  # Start with default config
  spur run

  # Start with custom config
  spur run --config /etc/spur/config.yaml

  # Override listen address
  spur run --listen 0.0.0.0:8080

  # Validate config without starting server
  spur run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
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

	fmt.Printf("Spur v%s\n", Version)
	fmt.Println("✓ Configuration loaded")

	// Resolve the admin credential for the configured mode.
	creds := credential.NewStore()
	settings := credential.NewSettingsFile(cfg.Auth.SettingsPath)
	envToken, _ := config.AdminTokenFromEnv()

	switch cfg.Auth.Mode {
	case config.ModeStrict:
		if envToken == "" {
			return fmt.Errorf("auth mode is %q but the %s environment variable is not set; "+
				"export %s or switch auth.mode to %q or %q",
				config.ModeStrict, config.AdminTokenEnvVar,
				config.AdminTokenEnvVar, config.ModeDegraded, config.ModeFileFallback)
		}
		creds.Initialize(envToken, "")

	case config.ModeDegraded:
		creds.Initialize(envToken, "")
		if !creds.IsActive() {
			slog.Warn("no admin token configured; admin operations are unavailable until one is provisioned",
				"setup_endpoint", "/api/setup")
		}

	case config.ModeFileFallback:
		fileToken, err := settings.LoadToken()
		if err != nil {
			return fmt.Errorf("failed to read settings file %q: %w", settings.Path, err)
		}
		fallback := fileToken
		if fallback == "" {
			fallback = credential.DefaultFallbackToken
		}
		creds.Initialize(envToken, fallback)

		if _, provenance, _ := creds.Current(); provenance == credential.FileFallback && fileToken == "" {
			slog.Warn("using the built-in default admin token; anyone who reads the docs knows it",
				"settings_path", settings.Path)
		}

	default:
		return fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}

	_, provenance, _ := creds.Current()
	slog.Info("admin credential resolved",
		"mode", cfg.Auth.Mode,
		"provenance", provenance.String(),
	)
	fmt.Printf("✓ Admin credential: %s\n", provenance)

	// Watch the settings file so an edit rotates a file-provided credential
	// without a restart. The store ignores edits while an environment or
	// runtime-override credential is active.
	if cfg.Auth.Mode != config.ModeStrict && *cfg.Auth.WatchSettings {
		watcher, err := credential.WatchSettings(settings, creds)
		if err != nil {
			slog.Warn("settings file watching disabled", "error", err)
		} else {
			defer watcher.Close()
			fmt.Printf("✓ Watching settings file: %s\n", settings.Path)
		}
	}

	var collector *metrics.Collector
	if *cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics)
		fmt.Printf("✓ Metrics endpoint: %s\n", cfg.Telemetry.Metrics.Path)
	}

	srv := server.NewServer(cfg, creds, target.NewStore(), settings.SaveToken, collector)

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Proxy prefix: %s\n", cfg.Forward.Prefix)
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until a shutdown signal or a fatal server error.
	if err := srv.Start(context.Background()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// setupLogging installs the process-wide slog handler per configuration.
func setupLogging(cfg *config.LoggingConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
