package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Purger is the store-side operation the sweeper drives.
// Satisfied by LibSQLStore.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically removes expired snapshots from the store on a cron
// schedule. Retention enforcement is background housekeeping; pipeline
// correctness never depends on it.
type Sweeper struct {
	purger   Purger
	schedule cron.Schedule
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
}

// NewSweeper creates a Sweeper from a standard 5-field cron expression.
func NewSweeper(purger Purger, cronExpr string, logger *slog.Logger) (*Sweeper, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("parse sweep cron expression %q: %w", cronExpr, err)
	}
	return &Sweeper{purger: purger, schedule: schedule, logger: logger}, nil
}

// Start launches the background sweep loop.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return fmt.Errorf("sweeper already started")
	}
	sweepCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.loop(sweepCtx)
	s.logger.Info("retention sweeper started")
	return nil
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			removed, err := s.purger.PurgeExpired(ctx)
			if err != nil {
				s.logger.Error("retention sweep failed", slog.String("error", err.Error()))
				continue
			}
			if removed > 0 {
				s.logger.Info("retention sweep removed expired snapshots", slog.Int64("count", removed))
			}
		}
	}
}

// Stop gracefully shuts down the sweeper.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	s.logger.Info("retention sweeper stopped")
}
