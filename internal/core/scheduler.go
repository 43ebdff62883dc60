package core

// scheduler.go runs background maintenance for the dataset store.
//
// The sweeper removes expired datasets on a fixed interval so memory is
// released even when nobody asks for the stale ids again. It is
// context-aware and stops when the context is cancelled.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is used when StartSweeper gets a non-positive interval.
const DefaultSweepInterval = time.Minute

// StartSweeper evicts expired datasets every interval until ctx is done.
// It blocks; run it in its own goroutine.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("dataset sweeper started",
		"interval", interval.String(),
		"ttl", s.cfg.SessionTTL.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("dataset sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep performs one eviction pass.
func (s *Service) sweep() int {
	start := time.Now()
	n := s.store.Sweep()
	if n == 0 {
		return 0
	}

	s.observer.DatasetsEvicted(n)
	s.observer.DatasetsStored(s.store.Len())
	slog.Info("expired datasets evicted",
		"count", n,
		"remaining", s.store.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return n
}
