package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lexiclaire/gateway/pkg/cli"
	"lexiclaire/gateway/pkg/gateway"
	"lexiclaire/gateway/pkg/server"
)

var wakeFlags struct {
	attempts int
	interval time.Duration
	baseURL  string
}

var wakeCmd = &cobra.Command{
	Use:   "wake",
	Short: "Probe the Analysis Backend until it answers",
	Long: `Send wake probes to the Analysis Backend root until one succeeds or the
attempts run out. Useful to warm a scaled-to-zero backend before traffic.

Examples:
  # One probe with the configured wake timeout
  lexiclaire wake

  # Up to 10 probes, 15s apart
  lexiclaire wake --attempts 10 --interval 15s`,
	Args: cobra.NoArgs,
	RunE: wakeBackend,
}

func init() {
	rootCmd.AddCommand(wakeCmd)

	wakeCmd.Flags().IntVar(&wakeFlags.attempts, "attempts", 1, "maximum number of probes")
	wakeCmd.Flags().DurationVar(&wakeFlags.interval, "interval", 10*time.Second, "delay between probes")
	wakeCmd.Flags().StringVar(&wakeFlags.baseURL, "upstream", "", "override upstream base URL")
}

func wakeBackend(cmd *cobra.Command, args []string) error {
	if wakeFlags.attempts < 1 {
		return cli.NewConfigError("attempts", "must be at least 1")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gwCfg := server.GatewayConfig(cfg)
	if wakeFlags.baseURL != "" {
		gwCfg.BaseURL = wakeFlags.baseURL
	}
	gwCfg.KeepWarmSchedule = ""

	client, err := gateway.New(gwCfg)
	if err != nil {
		return cli.NewCommandError("wake", err)
	}
	defer client.Close()

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	out := cmd.OutOrStdout()
	progress := cli.NewProgressReporter(cmd.ErrOrStderr(), cli.WithLabel("Waking"))
	progress.Start(int64(wakeFlags.attempts))

	attempts, err := probe(ctx, client, wakeFlags.attempts, wakeFlags.interval, progress.Update)
	if err != nil {
		progress.Error(err)
		return cli.NewCommandError("wake", fmt.Errorf("backend did not answer after %d probe(s): %w", attempts, err))
	}
	progress.Finish()

	fmt.Fprintf(out, "✓ Analysis Backend is warm (%d probe(s))\n", attempts)
	return nil
}

type waker interface {
	Wake(ctx context.Context) error
}

// probe calls Wake up to max times, waiting interval between failures. It
// returns the number of probes made and the last error.
func probe(ctx context.Context, w waker, max int, interval time.Duration, onAttempt func(int64)) (int, error) {
	var err error
	for n := 1; n <= max; n++ {
		err = w.Wake(ctx)
		onAttempt(int64(n))
		if err == nil {
			return n, nil
		}
		if n == max {
			return n, err
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return n, ctx.Err()
		case <-timer.C:
		}
	}
	return max, err
}
