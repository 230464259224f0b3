package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"lexiclaire/gateway/pkg/results"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to keep records.
	// 0 keeps records forever.
	RetentionDays int

	// PruneSchedule is a cron expression for scheduled pruning.
	// Empty disables the scheduler.
	PruneSchedule string

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 30,
		PruneSchedule: "0 3 * * *",
		MaxRecords:    0,
	}
}

// oldestDeleter is implemented by stores that can trim to a count natively.
type oldestDeleter interface {
	DeleteOldest(ctx context.Context, keep int64) (int64, error)
}

// Pruner enforces retention on result records.
type Pruner struct {
	store     results.Store
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
	now       func() time.Time
}

// NewPruner creates a new retention pruner.
func NewPruner(store results.Store, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Pruner{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "results.retention"),
		now:    time.Now,
	}
	p.scheduler = NewScheduler(p)
	return p
}

// Prune deletes records older than the retention period, then trims the
// remainder to MaxRecords. Returns the total number deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return total, fmt.Errorf("prune by age failed: %w", err)
		}
		total += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return total, fmt.Errorf("prune by count failed: %w", err)
		}
		total += deleted
	}

	if total == 0 {
		p.logger.Debug("no records pruned",
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Info("result pruning completed",
			"total_deleted", total,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}

	return total, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)
	return p.store.Delete(ctx, &results.Query{EndTime: &cutoff})
}

func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	if d, ok := p.store.(oldestDeleter); ok {
		return d.DeleteOldest(ctx, p.config.MaxRecords)
	}

	count, err := p.store.Count(ctx, &results.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}

	records, err := p.store.Query(ctx, &results.Query{SortOrder: "asc", Limit: int(count)})
	if err != nil {
		return 0, fmt.Errorf("failed to query records: %w", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	excess := len(records) - int(p.config.MaxRecords)
	if excess <= 0 {
		return 0, nil
	}

	cutoff := records[excess-1].CreatedAt
	p.logger.Info("record count exceeds limit, pruning oldest",
		"current_count", count,
		"max_records", p.config.MaxRecords,
		"cutoff_time", cutoff,
	)
	return p.store.Delete(ctx, &results.Query{EndTime: &cutoff})
}

// Start starts the pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
