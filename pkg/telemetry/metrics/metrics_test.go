package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lexiclaire/gateway/pkg/config"
	"lexiclaire/gateway/pkg/retry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Helper function to create test config
func testConfig() *config.MetricsConfig {
	enabled := true
	return &config.MetricsConfig{
		Enabled:                &enabled,
		Namespace:              "test",
		Subsystem:              "metrics",
		RequestDurationBuckets: []float64{0.1, 0.5, 1.0, 5.0},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(testConfig(), registry)

	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
	if !collector.enabled {
		t.Error("Collector should be enabled")
	}
}

func TestCollector_NewCollector_DefaultRegistry(t *testing.T) {
	collector := NewCollector(&config.MetricsConfig{}, nil)

	if collector.Registry() == nil {
		t.Fatal("Expected a registry")
	}
	if !collector.enabled {
		t.Error("Unset enabled should default to true")
	}

	families, err := collector.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "go_") {
			found = true
		}
	}
	if !found {
		t.Error("Expected Go runtime metrics in the default registry")
	}
}

func TestCollector_RecordRequest(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordRequest("analyze", 200, 1200*time.Millisecond)
	collector.RecordRequest("analyze", 200, 800*time.Millisecond)
	collector.RecordRequest("analyze", 502, 7*time.Second)
	collector.RecordRequest("chat", 400, 10*time.Millisecond)

	rm := collector.requestMetrics
	if got := testutil.ToFloat64(rm.requestsTotal.WithLabelValues("analyze", "200")); got != 2 {
		t.Errorf("analyze 200 = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rm.requestsTotal.WithLabelValues("analyze", "502")); got != 1 {
		t.Errorf("analyze 502 = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(rm.requestDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestCollector_RecordUploadBytes(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordUploadBytes("compare", 3)
	collector.RecordUploadBytes("compare", 0)

	if got := testutil.CollectAndCount(collector.requestMetrics.uploadBytes); got != 1 {
		t.Errorf("upload series = %d, want 1", got)
	}
}

func TestCollector_RetryObserver(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	var observer retry.Observer = collector
	observer.OnAttempt(retry.Report{Op: "analyze", Attempt: 1, Kind: retry.TransientFailure, Err: errors.New("503")})
	observer.OnDelay("analyze", 2, 2*time.Second)
	observer.OnAttempt(retry.Report{Op: "analyze", Attempt: 2, Kind: retry.TransientFailure, Err: errors.New("503")})
	observer.OnDelay("analyze", 3, 5*time.Second)
	observer.OnAttempt(retry.Report{Op: "analyze", Attempt: 3, Kind: retry.Success})

	um := collector.upstreamMetrics
	if got := testutil.ToFloat64(um.attemptsTotal.WithLabelValues("analyze", "transient")); got != 2 {
		t.Errorf("transient attempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(um.attemptsTotal.WithLabelValues("analyze", "success")); got != 1 {
		t.Errorf("success attempts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(um.retriesTotal.WithLabelValues("analyze")); got != 2 {
		t.Errorf("retries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(um.retryDelay.WithLabelValues("analyze")); got != 7 {
		t.Errorf("retry delay = %v, want 7", got)
	}
}

func TestCollector_RecordWake(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	um := collector.upstreamMetrics

	collector.RecordWake("ok", 50*time.Millisecond)
	if got := testutil.ToFloat64(um.warm); got != 1 {
		t.Errorf("warm after ok = %v, want 1", got)
	}

	collector.RecordWake("error", time.Second)
	if got := testutil.ToFloat64(um.warm); got != 0 {
		t.Errorf("warm after error = %v, want 0", got)
	}
	if got := testutil.ToFloat64(um.wakesTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok wakes = %v, want 1", got)
	}
}

func TestCollector_RecordWrite(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordWrite("ok", 2*time.Millisecond)
	collector.RecordWrite("error", 5*time.Second)
	collector.RecordWrite("ok", time.Millisecond)

	rm := collector.resultsMetrics
	if got := testutil.ToFloat64(rm.writesTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("ok writes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rm.writesTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("error writes = %v, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	disabled := false
	cfg.Enabled = &disabled
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordRequest("analyze", 200, time.Second)
	collector.OnAttempt(retry.Report{Op: "analyze", Kind: retry.Success})
	collector.RecordWrite("ok", time.Millisecond)

	if got := testutil.CollectAndCount(collector.requestMetrics.requestsTotal); got != 0 {
		t.Errorf("disabled collector recorded %d request series", got)
	}
	if got := testutil.CollectAndCount(collector.upstreamMetrics.attemptsTotal); got != 0 {
		t.Errorf("disabled collector recorded %d attempt series", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordRequest("chat", 200, 300*time.Millisecond)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `test_metrics_requests_total{operation="chat",status="200"} 1`) {
		t.Errorf("metrics output missing request counter:\n%s", body)
	}
}
