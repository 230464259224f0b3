package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"lexiclaire/gateway/pkg/cli"
	"lexiclaire/gateway/pkg/config"
	"lexiclaire/gateway/pkg/server"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watch         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway server",
	Long: `Start the gateway server with the specified configuration.

The server accepts uploads and chat requests, forwards them to the Analysis
Backend with retries, and records every completed request.

Examples:
  # Start with default config
  lexiclaire run

  # Start with custom config
  lexiclaire run --config /etc/lexiclaire/config.yaml

  # Override listen address
  lexiclaire run --listen 0.0.0.0:8080

  # Validate config without starting server
  lexiclaire run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", true, "reload the log level when the config file changes")
}

func runServer(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return configError(err)
	}

	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	fmt.Fprintf(out, "Lexiclaire v%s\n", Version)
	fmt.Fprintf(out, "Loading configuration from: %s\n", cfgFile)

	app, err := server.NewApp(cfg, buildInfo())
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := app.Close(ctx); err != nil {
			slog.Error("failed to close gateway components", "error", err)
		}
	}()

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	if err := app.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	if runFlags.watch && cfgFile != "" {
		watcher := config.NewWatcher(cfgFile, func(next *config.Config) {
			if runFlags.logLevel != "" {
				return
			}
			if err := app.Logger.SetLevel(next.Telemetry.Logging.Level); err != nil {
				slog.Warn("ignoring reloaded log level", "error", err)
				return
			}
			slog.Info("log level reloaded", "level", next.Telemetry.Logging.Level)
		})
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				slog.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	fmt.Fprintf(out, "✓ Upstream: %s\n", cfg.Upstream.BaseURL)
	fmt.Fprintf(out, "✓ Results backend: %s\n", resultsBackend(cfg))
	fmt.Fprintf(out, "✓ Listening on %s\n", cfg.Server.ListenAddress)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	srv := server.NewServer(app)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

func resultsBackend(cfg *config.Config) string {
	if !config.BoolValue(cfg.Results.Enabled, true) {
		return "disabled"
	}
	return cfg.Results.Backend
}
