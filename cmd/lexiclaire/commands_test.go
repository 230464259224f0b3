package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"lexiclaire/gateway/internal/upstreamtest"
	"lexiclaire/gateway/pkg/cli"
	"lexiclaire/gateway/pkg/results"
	"lexiclaire/gateway/pkg/results/storage"
)

// execute runs the root command with args and returns its stdout. Flag
// values are reset first because cobra keeps them between runs.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var reset func(*cobra.Command)
	reset = func(c *cobra.Command) {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func sqliteConfig(t *testing.T, upstream string) (cfgPath, dbPath string) {
	t.Helper()
	dbPath = filepath.Join(t.TempDir(), "results.db")
	cfgPath = writeConfig(t, fmt.Sprintf(`
upstream:
  base_url: %q
results:
  backend: sqlite
  sqlite:
    path: %q
    driver: sqlite
telemetry:
  logging:
    level: error
`, upstream, dbPath))
	return cfgPath, dbPath
}

func TestValidateCommand(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := writeConfig(t, "upstream:\n  base_url: http://analysis:8000\n")

		out, err := execute(t, "validate", "--config", path)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if !strings.Contains(out, "is valid") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("missing base url", func(t *testing.T) {
		path := writeConfig(t, "server:\n  listen_address: 127.0.0.1:9000\n")

		out, err := execute(t, "validate", "--config", path)
		if cli.ExitCode(err) != cli.ExitConfig {
			t.Fatalf("ExitCode = %d (%v), want %d", cli.ExitCode(err), err, cli.ExitConfig)
		}
		var cfgErr *cli.ConfigError
		if !errors.As(err, &cfgErr) || cfgErr.Field != "upstream.base_url" {
			t.Errorf("err = %#v, want field upstream.base_url", err)
		}
		if !strings.Contains(out, "upstream.base_url") {
			t.Errorf("problems not listed: %q", out)
		}
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, err := execute(t, "validate", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
		if cli.ExitCode(err) != cli.ExitConfig {
			t.Errorf("ExitCode = %d, want %d", cli.ExitCode(err), cli.ExitConfig)
		}
	})
}

func TestRunDryRun(t *testing.T) {
	path := writeConfig(t, "upstream:\n  base_url: http://analysis:8000\n")

	out, err := execute(t, "run", "--config", path, "--dry-run", "--log-level", "debug")
	if err != nil {
		t.Fatalf("run --dry-run: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Errorf("output = %q", out)
	}

	_, err = execute(t, "run", "--config", path, "--dry-run", "--log-level", "chatty")
	if cli.ExitCode(err) != cli.ExitConfig {
		t.Errorf("bad --log-level: ExitCode = %d (%v), want %d", cli.ExitCode(err), err, cli.ExitConfig)
	}
}

func TestRecordsList(t *testing.T) {
	cfgPath, dbPath := sqliteConfig(t, "http://analysis:8000")

	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{Path: dbPath, Driver: storage.DriverPureGo})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	now := time.Now()
	seed := []*results.Record{
		{ID: "r1", RequestID: "req-1", Operation: "analyze", Title: "lease.pdf", Status: results.StatusAnalyzed,
			RiskLevel: results.RiskHigh, Tags: []string{"lease"}, Attempts: 1, CreatedAt: now.Add(-2 * time.Minute)},
		{ID: "r2", RequestID: "req-2", Operation: "analyze", Title: "nda.pdf", Status: results.StatusFailed,
			ErrorKind: "retries_exhausted", Attempts: 4, CreatedAt: now.Add(-time.Minute)},
	}
	for _, r := range seed {
		if err := store.Store(context.Background(), r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	store.Close()

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, "records", "list", "--config", cfgPath)
		if err != nil {
			t.Fatalf("records list: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 3 {
			t.Fatalf("lines = %d, want 3:\n%s", len(lines), out)
		}
		if !strings.Contains(lines[1], "nda.pdf") || !strings.Contains(lines[2], "lease.pdf") {
			t.Errorf("records not newest first:\n%s", out)
		}
	})

	t.Run("status filter as json", func(t *testing.T) {
		out, err := execute(t, "records", "list", "--config", cfgPath, "--status", "failed", "-o", "json")
		if err != nil {
			t.Fatalf("records list: %v", err)
		}
		var got []results.Record
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if len(got) != 1 || got[0].ID != "r2" || got[0].ErrorKind != "retries_exhausted" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("csv", func(t *testing.T) {
		out, err := execute(t, "records", "list", "--config", cfgPath, "--limit", "1", "--output", "csv")
		if err != nil {
			t.Fatalf("records list: %v", err)
		}
		if !strings.HasPrefix(out, "CREATED,OPERATION,TITLE") || !strings.Contains(out, "nda.pdf") {
			t.Errorf("csv = %q", out)
		}
	})

	t.Run("bad status", func(t *testing.T) {
		_, err := execute(t, "records", "list", "--config", cfgPath, "--status", "pending")
		if cli.ExitCode(err) != cli.ExitConfig {
			t.Errorf("ExitCode = %d, want %d", cli.ExitCode(err), cli.ExitConfig)
		}
	})
}

func TestWakeCommand(t *testing.T) {
	backend := upstreamtest.New()
	defer backend.Close()
	cfgPath, _ := sqliteConfig(t, backend.URL())

	out, err := execute(t, "wake", "--config", cfgPath)
	if err != nil {
		t.Fatalf("wake: %v", err)
	}
	if !strings.Contains(out, "is warm (1 probe(s))") {
		t.Errorf("output = %q", out)
	}
	if n := backend.Count("/"); n != 1 {
		t.Errorf("probes = %d, want 1", n)
	}
}

func TestWakeCommand_Unavailable(t *testing.T) {
	backend := upstreamtest.New()
	defer backend.Close()
	backend.Statuses("/", nil, http.StatusServiceUnavailable)
	cfgPath, _ := sqliteConfig(t, backend.URL())

	_, err := execute(t, "wake", "--config", cfgPath, "--attempts", "2", "--interval", "1ms")
	if err == nil {
		t.Fatal("expected wake to fail")
	}
	if cli.ExitCode(err) != cli.ExitFailure {
		t.Errorf("ExitCode = %d, want %d", cli.ExitCode(err), cli.ExitFailure)
	}
	if n := backend.Count("/"); n != 2 {
		t.Errorf("probes = %d, want 2", n)
	}
}

type scriptedWaker struct {
	errs  []error
	calls int
}

func (w *scriptedWaker) Wake(ctx context.Context) error {
	err := w.errs[min(w.calls, len(w.errs)-1)]
	w.calls++
	return err
}

func TestProbe(t *testing.T) {
	cold := errors.New("503")

	t.Run("succeeds after cold probes", func(t *testing.T) {
		w := &scriptedWaker{errs: []error{cold, cold, nil}}
		var seen []int64

		n, err := probe(context.Background(), w, 5, 0, func(i int64) { seen = append(seen, i) })
		if err != nil || n != 3 {
			t.Errorf("probe = %d, %v; want 3, nil", n, err)
		}
		if len(seen) != 3 || seen[2] != 3 {
			t.Errorf("progress = %v", seen)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		w := &scriptedWaker{errs: []error{cold}}

		n, err := probe(context.Background(), w, 2, 0, func(int64) {})
		if !errors.Is(err, cold) || n != 2 || w.calls != 2 {
			t.Errorf("probe = %d, %v after %d calls", n, err, w.calls)
		}
	})

	t.Run("stops on cancel", func(t *testing.T) {
		w := &scriptedWaker{errs: []error{cold}}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := probe(ctx, w, 5, time.Hour, func(int64) {})
		if !errors.Is(err, context.Canceled) || w.calls != 1 {
			t.Errorf("err = %v after %d calls", err, w.calls)
		}
	})
}
