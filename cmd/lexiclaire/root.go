package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lexiclaire/gateway/pkg/cli"
	"lexiclaire/gateway/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "lexiclaire",
	Short: "Lexiclaire - resilient gateway for the contract Analysis Backend",
	Long: `Lexiclaire sits between clients and the contract Analysis Backend.

It provides:
  - Upload buffering with a per-file size ceiling
  - Retries with a fixed delay schedule while the backend warms up
  - Normalized client-facing failures
  - Best-effort records of every completed request
  - Keep-warm probes, health, metrics and tracing`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a status that tells
// configuration errors apart from runtime failures.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads cfgFile with environment overrides. Callers pass the
// result down explicitly.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, configError(err)
	}
	return cfg, nil
}

// configError reports the first invalid field when there is one.
func configError(err error) error {
	var verr config.ValidationError
	if errors.As(err, &verr) && len(verr.Errors) > 0 {
		first := verr.Errors[0]
		if len(verr.Errors) == 1 {
			return cli.NewConfigError(first.Field, first.Message)
		}
		return cli.NewConfigError(first.Field, fmt.Sprintf("%s (and %d more)", first.Message, len(verr.Errors)-1))
	}
	return cli.NewConfigError("", err.Error())
}
