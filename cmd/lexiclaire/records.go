package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lexiclaire/gateway/pkg/cli"
	"lexiclaire/gateway/pkg/results"
	"lexiclaire/gateway/pkg/results/storage"
	"lexiclaire/gateway/pkg/server"
)

var recordsFlags struct {
	limit     int
	status    string
	operation string
	since     time.Duration
	output    string
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect result records",
	Long: `Inspect the result records written for completed requests.

Records are read from the backend configured under results.`,
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent result records",
	Long: `List result records, newest first.

Examples:
  # Last 20 records
  lexiclaire records list

  # Failed analyses in the last hour, as JSON
  lexiclaire records list --status failed --operation analyze --since 1h --output json`,
	Args: cobra.NoArgs,
	RunE: listRecords,
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsListCmd)

	recordsListCmd.Flags().IntVar(&recordsFlags.limit, "limit", 20, "maximum records to show")
	recordsListCmd.Flags().StringVar(&recordsFlags.status, "status", "", "filter by status: analyzed, analyzing, failed")
	recordsListCmd.Flags().StringVar(&recordsFlags.operation, "operation", "", "filter by operation: analyze, compare, chat")
	recordsListCmd.Flags().DurationVar(&recordsFlags.since, "since", 0, "only records newer than this age")
	recordsListCmd.Flags().StringVarP(&recordsFlags.output, "output", "o", "text", "output format: text, json, csv")
}

func listRecords(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(recordsFlags.output)
	if err != nil {
		return cli.NewConfigError("output", err.Error())
	}

	query := &results.Query{
		Operation: recordsFlags.operation,
		Status:    results.Status(recordsFlags.status),
		Limit:     recordsFlags.limit,
		SortOrder: "desc",
	}
	if recordsFlags.since > 0 {
		start := time.Now().Add(-recordsFlags.since)
		query.StartTime = &start
	}
	if err := query.Validate(); err != nil {
		return cli.NewConfigError("records", err.Error())
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(server.StorageConfig(cfg))
	if err != nil {
		return cli.NewCommandError("records list", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("records list", err)
	}

	if format == cli.FormatText && len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No result records found.")
		return nil
	}
	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), records)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), recordTable(records))
}

// recordTable renders records as rows for text and CSV output.
type recordTable []*results.Record

func (t recordTable) Header() []string {
	return []string{"CREATED", "OPERATION", "TITLE", "STATUS", "RISK", "ATTEMPTS", "ERROR", "REQUEST ID"}
}

func (t recordTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		risk := string(r.RiskLevel)
		if risk == "" {
			risk = "-"
		}
		errCol := r.ErrorKind
		if errCol == "" {
			errCol = "-"
		}
		rows = append(rows, []string{
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.Operation,
			strings.ReplaceAll(r.Title, "\t", " "),
			string(r.Status),
			risk,
			strconv.Itoa(r.Attempts),
			errCol,
			r.RequestID,
		})
	}
	return rows
}
