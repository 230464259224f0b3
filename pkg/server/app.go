package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"lexiclaire/gateway/pkg/config"
	"lexiclaire/gateway/pkg/gateway"
	"lexiclaire/gateway/pkg/orchestrator"
	"lexiclaire/gateway/pkg/results"
	"lexiclaire/gateway/pkg/results/recorder"
	"lexiclaire/gateway/pkg/results/retention"
	"lexiclaire/gateway/pkg/results/storage"
	"lexiclaire/gateway/pkg/telemetry/health"
	"lexiclaire/gateway/pkg/telemetry/logging"
	"lexiclaire/gateway/pkg/telemetry/metrics"
	"lexiclaire/gateway/pkg/telemetry/tracing"
)

// BuildInfo identifies the running binary on /version and in traces.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// App holds every long-lived component of the gateway, wired together.
type App struct {
	Config *config.Config
	Build  BuildInfo

	Logger       *logging.Logger
	Metrics      *metrics.Collector
	Tracer       *tracing.Tracer
	Gateway      *gateway.Client
	Store        results.Store
	Recorder     *recorder.Recorder
	Pruner       *retention.Pruner
	Orchestrator *orchestrator.Orchestrator
	Health       *health.Checker
}

// AppOption configures NewApp.
type AppOption func(*appOptions)

type appOptions struct {
	logWriter    io.Writer
	spanExporter sdktrace.SpanExporter
	gatewayOpts  []gateway.Option
}

// WithLogWriter sends logs to w instead of stdout.
func WithLogWriter(w io.Writer) AppOption {
	return func(o *appOptions) { o.logWriter = w }
}

// WithSpanExporter replaces the OTLP exporter.
func WithSpanExporter(e sdktrace.SpanExporter) AppOption {
	return func(o *appOptions) { o.spanExporter = e }
}

// WithGatewayOptions passes extra options to the gateway client, e.g. a
// zero-delay clock in tests.
func WithGatewayOptions(opts ...gateway.Option) AppOption {
	return func(o *appOptions) { o.gatewayOpts = append(o.gatewayOpts, opts...) }
}

// NewApp builds the gateway from a validated configuration. The logger is
// installed as the slog default first so that every component logger
// derived from slog.Default carries the configured handler.
//
// On error, everything built so far is closed.
func NewApp(cfg *config.Config, info BuildInfo, opts ...AppOption) (app *App, err error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	app = &App{Config: cfg, Build: info}
	defer func() {
		if err != nil {
			_ = app.Close(context.Background())
			app = nil
		}
	}()

	logCfg := logging.ConfigFrom(cfg.Telemetry.Logging)
	logCfg.Writer = o.logWriter
	if app.Logger, err = logging.New(logCfg); err != nil {
		return app, fmt.Errorf("failed to create logger: %w", err)
	}
	app.Logger.SetDefault()

	app.Metrics = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	traceOpts := []tracing.Option{tracing.WithServiceVersion(info.Version)}
	if o.spanExporter != nil {
		traceOpts = append(traceOpts, tracing.WithExporter(o.spanExporter))
	}
	if app.Tracer, err = tracing.New(&cfg.Telemetry.Tracing, traceOpts...); err != nil {
		return app, fmt.Errorf("failed to create tracer: %w", err)
	}

	gwOpts := append([]gateway.Option{
		gateway.WithMetrics(app.Metrics),
		gateway.WithTracer(app.Tracer),
	}, o.gatewayOpts...)
	if app.Gateway, err = gateway.New(GatewayConfig(cfg), gwOpts...); err != nil {
		return app, fmt.Errorf("failed to create gateway client: %w", err)
	}

	recording := config.BoolValue(cfg.Results.Enabled, true)
	if recording {
		if app.Store, err = storage.Open(StorageConfig(cfg)); err != nil {
			return app, fmt.Errorf("failed to open results store: %w", err)
		}
		app.Recorder = recorder.NewRecorder(app.Store, RecorderConfig(cfg), recorder.WithMetrics(app.Metrics))
		app.Pruner = retention.NewPruner(app.Store, RetentionConfig(cfg))
	}

	// A nil *Recorder must not become a non-nil interface.
	var rec orchestrator.Recorder
	if app.Recorder != nil {
		rec = app.Recorder
	}
	app.Orchestrator = orchestrator.New(app.Gateway, rec, OrchestratorConfig(cfg),
		orchestrator.WithMetrics(app.Metrics))

	app.Health = health.New(cfg.Telemetry.Health.CheckTimeout)
	if app.Store != nil {
		app.Health.RegisterCheck("results_store", app.Store.Ping)
	}
	if cfg.Telemetry.Health.RequireWarmUpstream {
		app.Health.RegisterCheck("upstream", app.Gateway.CheckWarm)
	} else {
		app.Health.RegisterAdvisory("upstream", app.Gateway.CheckWarm)
	}

	slog.Info("gateway components initialized",
		"upstream", cfg.Upstream.BaseURL,
		"results_backend", cfg.Results.Backend,
		"recording", recording,
		"tracing", app.Tracer.Enabled(),
	)
	return app, nil
}

// Start launches the background schedulers and an initial wake probe so
// that readiness reflects the backend soon after startup. Schedulers stop
// when ctx is done or Close is called.
func (a *App) Start(ctx context.Context) error {
	if kw := a.Gateway.KeepWarm(); kw != nil {
		if err := kw.Start(ctx); err != nil {
			return fmt.Errorf("failed to start keep-warm: %w", err)
		}
	}
	if a.Pruner != nil {
		if err := a.Pruner.Start(ctx); err != nil {
			return fmt.Errorf("failed to start retention scheduler: %w", err)
		}
		if next := a.Pruner.NextPruning(); next != nil {
			slog.Debug("results retention scheduler started", "next_pruning", next)
		}
	}
	a.Gateway.WakeAsync()
	return nil
}

// Close stops background work and releases resources in dependency order:
// no new upstream calls, pending records flushed, then the store and the
// span pipeline.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.Pruner != nil {
		a.Pruner.Stop()
	}
	if a.Gateway != nil {
		errs = append(errs, a.Gateway.Close())
	}
	if a.Recorder != nil {
		errs = append(errs, a.Recorder.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.Tracer != nil {
		errs = append(errs, a.Tracer.Shutdown(ctx))
	}

	return errors.Join(errs...)
}
