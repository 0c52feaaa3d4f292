package services

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically expires pending transactions whose payment
// window has closed. The sweep is idempotent so overlapping processes
// running their own sweepers is harmless.
type Sweeper struct {
	payments PaymentService
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewSweeper creates a sweeper running at the given interval.
func NewSweeper(payments PaymentService, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		payments: payments,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (s *Sweeper) Start() {
	go s.run()
	slog.Info("payment expiry sweeper started", "interval", s.interval)
}

// Stop signals the loop to exit and waits for the in-flight sweep to
// finish.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := s.payments.ExpirePending(ctx); err != nil {
				slog.Error("expiry sweep failed", "error", err)
			}
			cancel()
		case <-s.stop:
			return
		}
	}
}
