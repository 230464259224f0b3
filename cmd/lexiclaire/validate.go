package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lexiclaire/gateway/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file with environment overrides and check every
field. All problems are listed; the exit status is 2 when any are found.

Examples:
  lexiclaire validate --config config.yaml
  UPSTREAM_BASE_URL=http://analysis:8000 lexiclaire validate`,
	Args: cobra.NoArgs,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(out, "✗ %s: %d problem(s)\n", cfgFile, len(verr.Errors))
			for _, fe := range verr.Errors {
				fmt.Fprintf(out, "  - %s\n", fe.Error())
			}
		}
		return configError(err)
	}

	fmt.Fprintf(out, "✓ %s is valid\n", cfgFile)
	if verbose {
		fmt.Fprintf(out, "  server:   %s\n", cfg.Server.ListenAddress)
		fmt.Fprintf(out, "  upstream: %s (%d attempts)\n", cfg.Upstream.BaseURL, len(cfg.Upstream.RetrySchedule))
		fmt.Fprintf(out, "  results:  %s\n", resultsBackend(cfg))
	}
	return nil
}
