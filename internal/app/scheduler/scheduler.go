// Package scheduler runs the periodic ingest of the watchlist.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultJobTimeout bounds a single scheduled ingest run.
const DefaultJobTimeout = 30 * time.Minute

// SymbolLister returns the codes to ingest.
type SymbolLister interface {
	ActiveCodes(ctx context.Context) ([]string, error)
}

// Ingester ingests a batch of symbols and reports how many failed.
type Ingester interface {
	IngestAll(ctx context.Context, symbols []string) (failed int, err error)
}

// Scheduler triggers watchlist ingests on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	lister   SymbolLister
	ingester Ingester
	timeout  time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

// New registers the ingest job under schedule (standard 5-field cron syntax).
func New(schedule string, lister SymbolLister, ingester Ingester) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:     cron.New(),
		lister:   lister,
		ingester: ingester,
		timeout:  DefaultJobTimeout,
		ctx:      ctx,
		cancel:   cancel,
	}
	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid ingest schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("ingest scheduler started", "next_run", s.cron.Entries()[0].Next)
}

// Stop cancels a running job and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	slog.Info("ingest scheduler stopped")
}

// RunOnce ingests every active watchlist symbol. Failures are logged, not returned.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	codes, err := s.lister.ActiveCodes(ctx)
	if err != nil {
		slog.Error("scheduled ingest: failed to list symbols", "error", err)
		return
	}
	if len(codes) == 0 {
		slog.Info("scheduled ingest: watchlist is empty")
		return
	}

	failed, err := s.ingester.IngestAll(ctx, codes)
	if err != nil {
		slog.Error("scheduled ingest aborted", "error", err, "failed", failed)
		return
	}
	slog.Info("scheduled ingest finished",
		"symbols", len(codes),
		"failed", failed,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
}
