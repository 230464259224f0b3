package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lexiclaire/gateway/pkg/failure"
)

// DefaultSchedule returns the default delay table: an immediate attempt,
// then waits of 2s and 5s.
func DefaultSchedule() []time.Duration {
	return []time.Duration{0, 2 * time.Second, 5 * time.Second}
}

// OutcomeKind tags the result of one attempt.
type OutcomeKind int

const (
	// Success means the attempt produced a usable response.
	Success OutcomeKind = iota

	// TransientFailure means the attempt failed and may be retried.
	TransientFailure

	// PermanentFailure means the attempt failed and must not be retried.
	PermanentFailure
)

// String returns the outcome name used in logs and metric labels.
func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case TransientFailure:
		return "transient"
	case PermanentFailure:
		return "permanent"
	default:
		return "unknown"
	}
}

// Outcome is the result of one attempt. Exactly one of Value or Err is meaningful.
type Outcome[T any] struct {
	Kind  OutcomeKind
	Value T
	Err   error
}

// State is the progress of one attempt chain. It lives only for the
// duration of a single Do call.
type State struct {
	// Attempt is the 1-based index of the current attempt
	Attempt int

	// Remaining holds the delays not yet consumed
	Remaining []time.Duration

	// LastFailure is the most recent attempt failure
	LastFailure error
}

// Report describes one finished attempt for observers.
type Report struct {
	Op      string
	Attempt int
	Kind    OutcomeKind
	Err     error
	Elapsed time.Duration
}

// Observer receives attempt and delay notifications. Implementations must be
// safe for concurrent use.
type Observer interface {
	OnAttempt(r Report)
	OnDelay(op string, attempt int, delay time.Duration)
}

// Clock waits for a duration or until ctx is done.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RealClock returns a Clock backed by time.Timer.
func RealClock() Clock {
	return realClock{}
}

// Scheduler holds an immutable retry policy and can be shared by any number
// of concurrent Do calls.
type Scheduler struct {
	// Schedule is the wait before each attempt; its length bounds the attempts
	Schedule []time.Duration

	// Classify decides retry eligibility; failure.Classify when nil
	Classify func(error) failure.Class

	// Clock performs the waits; a real timer when nil
	Clock Clock

	// Observer is notified of every attempt and wait (optional)
	Observer Observer
}

// New creates a Scheduler using failure.Classify and the real clock.
func New(schedule []time.Duration) *Scheduler {
	return &Scheduler{
		Schedule: schedule,
		Classify: failure.Classify,
		Clock:    RealClock(),
	}
}

// MaxAttempts returns the number of attempts the schedule allows.
func (s *Scheduler) MaxAttempts() int {
	if len(s.Schedule) == 0 {
		return 1
	}
	return len(s.Schedule)
}

// MaxDelay returns the sum of scheduled waits.
func (s *Scheduler) MaxDelay() time.Duration {
	var total time.Duration
	for i, d := range s.Schedule {
		if i > 0 {
			total += d
		}
	}
	return total
}

func (s *Scheduler) schedule() []time.Duration {
	if len(s.Schedule) == 0 {
		return []time.Duration{0}
	}
	return s.Schedule
}

func (s *Scheduler) classify(err error) failure.Class {
	if s.Classify != nil {
		return s.Classify(err)
	}
	return failure.Classify(err)
}

func (s *Scheduler) clock() Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return realClock{}
}

// Do runs attempt until it succeeds, fails permanently, or the schedule is
// exhausted. n is the 1-based attempt number. Attempts never overlap.
//
// Every returned error is a *failure.Error of kind PermanentUpstream or
// RetriesExhausted with Attempts set.
func Do[T any](ctx context.Context, s *Scheduler, op string, attempt func(ctx context.Context, n int) (T, error)) (T, error) {
	var zero T
	schedule := s.schedule()
	state := State{Remaining: schedule}

	for i, delay := range schedule {
		state.Attempt = i + 1
		state.Remaining = schedule[i+1:]

		if i > 0 && delay > 0 {
			slog.Debug("retrying upstream request",
				"operation", op,
				"attempt", state.Attempt,
				"max_attempts", len(schedule),
				"delay", delay,
				"last_error", state.LastFailure,
			)
			if s.Observer != nil {
				s.Observer.OnDelay(op, state.Attempt, delay)
			}
			if err := s.clock().Sleep(ctx, delay); err != nil {
				return zero, canceled(op, i, state.LastFailure, err)
			}
		}

		if err := ctx.Err(); err != nil {
			return zero, canceled(op, i, state.LastFailure, err)
		}

		start := time.Now()
		out := run(ctx, s, state.Attempt, attempt)
		s.report(Report{
			Op:      op,
			Attempt: state.Attempt,
			Kind:    out.Kind,
			Err:     out.Err,
			Elapsed: time.Since(start),
		})

		switch out.Kind {
		case Success:
			return out.Value, nil
		case PermanentFailure:
			return zero, terminal(failure.PermanentUpstream, op, state.Attempt, out.Err)
		}

		state.LastFailure = out.Err
	}

	return zero, terminal(failure.RetriesExhausted, op, len(schedule), state.LastFailure)
}

// run executes one attempt and classifies its failure once.
func run[T any](ctx context.Context, s *Scheduler, n int, attempt func(ctx context.Context, n int) (T, error)) Outcome[T] {
	v, err := attempt(ctx, n)
	if err == nil {
		return Outcome[T]{Kind: Success, Value: v}
	}
	if s.classify(err) == failure.Transient {
		return Outcome[T]{Kind: TransientFailure, Err: err}
	}
	return Outcome[T]{Kind: PermanentFailure, Err: err}
}

func (s *Scheduler) report(r Report) {
	if r.Kind != Success {
		slog.Warn("upstream attempt failed",
			"operation", r.Op,
			"attempt", r.Attempt,
			"outcome", r.Kind.String(),
			"elapsed", r.Elapsed,
			"error", r.Err,
		)
	}
	if s.Observer != nil {
		s.Observer.OnAttempt(r)
	}
}

// terminal converts the final attempt failure into the error Do returns.
// Status, code and upstream message are carried over from a *failure.Error.
func terminal(kind failure.Kind, op string, attempts int, cause error) *failure.Error {
	e := &failure.Error{Kind: kind, Op: op, Attempts: attempts, Cause: cause}

	var fe *failure.Error
	if errors.As(cause, &fe) {
		e.StatusCode = fe.StatusCode
		e.Code = fe.Code
		e.Message = fe.Message
	} else {
		e.Code = failure.Code(cause)
	}
	if e.Message == "" && cause != nil {
		e.Message = cause.Error()
	}
	return e
}

// canceled reports a chain stopped by ctx before its next attempt.
func canceled(op string, attempts int, last, ctxErr error) *failure.Error {
	cause := ctxErr
	if last != nil {
		cause = errors.Join(ctxErr, last)
	}
	return &failure.Error{
		Kind:     failure.PermanentUpstream,
		Op:       op,
		Code:     failure.Code(ctxErr),
		Message:  "request abandoned before completion",
		Attempts: attempts,
		Cause:    cause,
	}
}
