package events

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// expireStore is the slice of Repository the sweeper needs.
type expireStore interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

// Sweeper periodically flips overdue events to expired. A failed cycle logs
// and retries on the next tick; it never stops the process.
type Sweeper struct {
	store    expireStore
	interval time.Duration
	logger   *zap.Logger
}

// NewSweeper creates an expiry sweeper.
func NewSweeper(store expireStore, interval time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{store: store, interval: interval, logger: logger}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopping")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.store.ExpireOverdue(ctx)
	if err != nil {
		s.logger.Error("expiry sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("expired overdue events", zap.Int64("count", n))
	}
}
