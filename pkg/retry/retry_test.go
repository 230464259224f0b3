package retry

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"lexiclaire/gateway/pkg/failure"
)

// fakeClock records requested waits without sleeping.
type fakeClock struct {
	mu     sync.Mutex
	delays []time.Duration
	err    error
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delays = append(c.delays, d)
	if c.err != nil {
		return c.err
	}
	return ctx.Err()
}

type recordingObserver struct {
	mu      sync.Mutex
	reports []Report
	delays  []time.Duration
}

func (o *recordingObserver) OnAttempt(r Report) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reports = append(o.reports, r)
}

func (o *recordingObserver) OnDelay(_ string, _ int, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.delays = append(o.delays, d)
}

func statusErr(code int) error {
	class := failure.ClassifyStatus(code)
	kind := failure.PermanentUpstream
	if class == failure.Transient {
		kind = failure.TransientUpstream
	}
	return &failure.Error{Kind: kind, Op: "analyze", StatusCode: code, Message: http.StatusText(code)}
}

func newTestScheduler() (*Scheduler, *fakeClock, *recordingObserver) {
	clock := &fakeClock{}
	obs := &recordingObserver{}
	s := New(DefaultSchedule())
	s.Clock = clock
	s.Observer = obs
	return s, clock, obs
}

func equalDurations(a, b []time.Duration) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDo_TransientThenSuccess(t *testing.T) {
	s, clock, obs := newTestScheduler()

	statuses := []int{503, 503, 200}
	calls := 0
	got, err := Do(context.Background(), s, "analyze", func(ctx context.Context, n int) (string, error) {
		code := statuses[calls]
		calls++
		if n != calls {
			t.Errorf("attempt number = %d, want %d", n, calls)
		}
		if code != 200 {
			return "", statusErr(code)
		}
		return `{"summary":"ok"}`, nil
	})

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != `{"summary":"ok"}` {
		t.Errorf("Do() = %q", got)
	}
	if calls != 3 {
		t.Errorf("attempts = %d, want 3", calls)
	}
	if want := []time.Duration{2 * time.Second, 5 * time.Second}; !equalDurations(clock.delays, want) {
		t.Errorf("delays = %v, want %v", clock.delays, want)
	}
	if len(obs.reports) != 3 || obs.reports[2].Kind != Success || obs.reports[0].Kind != TransientFailure {
		t.Errorf("reports = %+v", obs.reports)
	}
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	s, clock, _ := newTestScheduler()

	calls := 0
	_, err := Do(context.Background(), s, "analyze", func(ctx context.Context, n int) (struct{}, error) {
		calls++
		return struct{}{}, statusErr(http.StatusNotFound)
	})

	if calls != 1 {
		t.Errorf("attempts = %d, want 1", calls)
	}
	if len(clock.delays) != 0 {
		t.Errorf("delays = %v, want none", clock.delays)
	}

	var fe *failure.Error
	if !errors.As(err, &fe) {
		t.Fatalf("Do() error = %v, want *failure.Error", err)
	}
	if fe.Kind != failure.PermanentUpstream || fe.Attempts != 1 || fe.StatusCode != http.StatusNotFound {
		t.Errorf("error = %+v", fe)
	}
	if fe.ClientStatus() != http.StatusBadRequest {
		t.Errorf("ClientStatus() = %d, want 400", fe.ClientStatus())
	}
}

func TestDo_Exhausted(t *testing.T) {
	s, clock, _ := newTestScheduler()

	refused := os.NewSyscallError("connect", syscall.ECONNREFUSED)
	calls := 0
	_, err := Do(context.Background(), s, "compare", func(ctx context.Context, n int) (int, error) {
		calls++
		return 0, refused
	})

	if calls != 3 {
		t.Errorf("attempts = %d, want 3", calls)
	}
	if len(clock.delays) != 2 {
		t.Errorf("delays = %v, want 2 waits", clock.delays)
	}

	var fe *failure.Error
	if !errors.As(err, &fe) || fe.Kind != failure.RetriesExhausted {
		t.Fatalf("Do() error = %v, want RetriesExhausted", err)
	}
	if fe.Attempts != 3 || fe.Code != "connection_refused" {
		t.Errorf("error = %+v", fe)
	}
	if !errors.Is(err, syscall.ECONNREFUSED) {
		t.Error("exhausted error should wrap the last failure")
	}
	if fe.ClientStatus() != http.StatusBadGateway || fe.ClientMessage() != failure.MessageWarmingUp {
		t.Errorf("client mapping = %d %q", fe.ClientStatus(), fe.ClientMessage())
	}
}

func TestDo_AttemptsUntilSuccess(t *testing.T) {
	tests := []struct {
		name         string
		failures     int
		wantAttempts int
		wantErr      bool
	}{
		{"first succeeds", 0, 1, false},
		{"one transient", 1, 2, false},
		{"two transient", 2, 3, false},
		{"always transient", 10, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, clock, _ := newTestScheduler()

			calls := 0
			_, err := Do(context.Background(), s, "chat", func(ctx context.Context, n int) (int, error) {
				calls++
				if calls <= tt.failures {
					return 0, context.DeadlineExceeded
				}
				return n, nil
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("Do() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", calls, tt.wantAttempts)
			}
			want := DefaultSchedule()[1:tt.wantAttempts]
			if !equalDurations(clock.delays, want) {
				t.Errorf("delays = %v, want %v", clock.delays, want)
			}
		})
	}
}

func TestDo_CanceledDuringDelay(t *testing.T) {
	s, clock, _ := newTestScheduler()
	clock.err = context.Canceled

	calls := 0
	_, err := Do(context.Background(), s, "analyze", func(ctx context.Context, n int) (int, error) {
		calls++
		return 0, statusErr(http.StatusServiceUnavailable)
	})

	if calls != 1 {
		t.Errorf("attempts = %d, want 1", calls)
	}
	if failure.KindOf(err) != failure.PermanentUpstream {
		t.Errorf("Do() error = %v, want PermanentUpstream", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("error should wrap context.Canceled")
	}
}

func TestDo_EmptyScheduleMakesOneAttempt(t *testing.T) {
	s := &Scheduler{Clock: &fakeClock{}}
	calls := 0
	_, err := Do(context.Background(), s, "wake", func(ctx context.Context, n int) (int, error) {
		calls++
		return 0, statusErr(http.StatusServiceUnavailable)
	})

	if calls != 1 {
		t.Errorf("attempts = %d, want 1", calls)
	}
	if failure.KindOf(err) != failure.RetriesExhausted {
		t.Errorf("Do() error = %v, want RetriesExhausted", err)
	}
}

func TestRealClock_Sleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := RealClock().Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep() error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep() did not return on cancellation")
	}

	if err := RealClock().Sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("Sleep() error = %v", err)
	}
}

func TestScheduler_Bounds(t *testing.T) {
	s := New(DefaultSchedule())
	if s.MaxAttempts() != 3 {
		t.Errorf("MaxAttempts() = %d", s.MaxAttempts())
	}
	if s.MaxDelay() != 7*time.Second {
		t.Errorf("MaxDelay() = %v", s.MaxDelay())
	}
}
