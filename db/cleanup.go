package db

import (
	"context"
	"fmt"
	"time"
)

// PruneResult reports one pruning pass over call_history.
type PruneResult struct {
	Deleted  int64
	Duration time.Duration
}

// PruneHistory deletes call_history rows older than retentionDays.
func (s *Store) PruneHistory(ctx context.Context, retentionDays int) (PruneResult, error) {
	start := time.Now()
	if retentionDays < 0 {
		return PruneResult{}, fmt.Errorf("retentionDays must be non-negative, got %d", retentionDays)
	}
	conn, err := s.conn()
	if err != nil {
		return PruneResult{}, err
	}

	query := fmt.Sprintf(
		"DELETE FROM call_history WHERE created_at < datetime('now', '-%d days')", retentionDays)
	res, err := conn.ExecContext(ctx, query)
	if err != nil {
		return PruneResult{}, fmt.Errorf("failed to prune call history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return PruneResult{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return PruneResult{Deleted: n, Duration: time.Since(start)}, nil
}

// PruneSchedulerConfig configures StartPruneScheduler.
type PruneSchedulerConfig struct {
	RetentionDays int
	Interval      time.Duration
	// OnPrune is called after every pass (optional).
	OnPrune func(result PruneResult, err error)
}

// DefaultPruneSchedulerConfig keeps a week of history and prunes hourly.
func DefaultPruneSchedulerConfig() PruneSchedulerConfig {
	return PruneSchedulerConfig{
		RetentionDays: 7,
		Interval:      time.Hour,
	}
}

// StartPruneScheduler prunes immediately and then every Interval until ctx
// is cancelled.
func (s *Store) StartPruneScheduler(ctx context.Context, config PruneSchedulerConfig) {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	run := func() {
		result, err := s.PruneHistory(ctx, config.RetentionDays)
		if config.OnPrune != nil {
			config.OnPrune(result, err)
		}
	}
	go func() {
		run()
		ticker := time.NewTicker(config.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()
}
