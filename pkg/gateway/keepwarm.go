package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// KeepWarm probes the backend on a cron schedule so it does not scale to
// zero during working hours.
type KeepWarm struct {
	client   *Client
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewKeepWarm validates schedule and returns a stopped KeepWarm.
//
// Common cron expressions:
//   - "*/10 * * * *"      - every 10 minutes
//   - "*/5 8-18 * * 1-5"  - every 5 minutes during office hours
func NewKeepWarm(client *Client, schedule string) (*KeepWarm, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid keep-warm schedule %q: %w", schedule, err)
	}
	return &KeepWarm{
		client:   client,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "gateway.keepwarm"),
	}, nil
}

// Start registers the probe and starts the scheduler. It stops when ctx is done.
func (k *KeepWarm) Start(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.running {
		return nil
	}

	if _, err := k.cron.AddFunc(k.schedule, func() {
		k.client.WakeAsync()
	}); err != nil {
		return fmt.Errorf("failed to schedule keep-warm probe: %w", err)
	}

	k.cron.Start()
	k.running = true
	k.logger.Info("keep-warm scheduler started", "schedule", k.schedule)

	go func() {
		<-ctx.Done()
		k.Stop()
	}()

	return nil
}

// Stop halts the scheduler and waits for a running probe trigger to return.
func (k *KeepWarm) Stop() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.running {
		return
	}

	<-k.cron.Stop().Done()
	k.running = false
	k.logger.Info("keep-warm scheduler stopped")
}

// KeepWarm returns the client's keep-warm scheduler, or nil when no
// schedule is configured.
func (c *Client) KeepWarm() *KeepWarm {
	return c.keepWarm
}
