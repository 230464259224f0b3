/*
Package cli provides command-line interface utilities for the lexiclaire
command.

Output Formatting:

Command results can be printed as text, JSON or CSV. Results that implement
Table render as aligned columns in text mode and as rows in CSV mode:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(os.Stdout, records)

Progress Reporting:

The wake command reports repeated probes while the backend starts:

	progress := cli.NewProgressReporter(os.Stderr, cli.WithLabel("Waking"))
	progress.Start(attempts)
	for i := 1; i <= attempts; i++ {
		// probe
		progress.Update(int64(i))
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

Errors:

ConfigError and CommandError classify failures; ExitCode maps them to the
process exit status (2 for configuration problems, 1 otherwise).
*/
package cli
