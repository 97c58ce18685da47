// Package worker runs background jobs alongside the HTTP server.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driven"
	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driving"
)

// refreshLockName is the distributed lock guarding a refresh cycle.
const refreshLockName = "mailbox-refresh"

// Refresher periodically re-fetches the mailbox and rebuilds the
// retrieval index, so interactive questions hit warm data.
type Refresher struct {
	assistant driving.AssistantService
	lock      driven.DistributedLock
	logger    *slog.Logger
	interval  time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// RefresherConfig holds configuration for the refresher.
type RefresherConfig struct {
	Assistant driving.AssistantService
	// Lock is optional; without it every replica refreshes on its own.
	Lock     driven.DistributedLock
	Logger   *slog.Logger
	Interval time.Duration
}

// NewRefresher creates a background mailbox refresher.
func NewRefresher(cfg RefresherConfig) *Refresher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Refresher{
		assistant: cfg.Assistant,
		lock:      cfg.Lock,
		logger:    logger,
		interval:  interval,
	}
}

// Start begins the refresh loop. It runs until Stop is called or the
// context is cancelled. The first cycle runs immediately.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.mu.Unlock()

	r.logger.Info("refresher starting", "interval", r.interval)

	go func() {
		defer close(r.doneCh)

		r.refresh(ctx)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.logger.Info("refresher context cancelled")
				return
			case <-r.stopCh:
				r.logger.Info("refresher stop signal received")
				return
			case <-ticker.C:
				r.refresh(ctx)
			}
		}
	}()
}

// Stop gracefully stops the refresher and waits for the loop to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	close(r.stopCh)
	r.mu.Unlock()

	<-r.doneCh

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	r.logger.Info("refresher stopped")
}

// Running reports whether the loop is active.
func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// refresh runs one fetch-and-reindex cycle. Failures are logged, never
// fatal: the next tick retries.
func (r *Refresher) refresh(ctx context.Context) {
	if r.lock != nil {
		acquired, err := r.lock.Acquire(ctx, refreshLockName, r.interval)
		if err != nil {
			r.logger.Error("failed to acquire refresh lock", "error", err)
			return
		}
		if !acquired {
			r.logger.Debug("refresh running on another instance")
			return
		}
		defer func() {
			if err := r.lock.Release(ctx, refreshLockName); err != nil {
				r.logger.Warn("failed to release refresh lock", "error", err)
			}
		}()
	}

	start := time.Now()

	fetched, err := r.assistant.FetchToday(ctx)
	if err != nil {
		r.logger.Error("refresh fetch failed", "error", err)
		return
	}

	indexed, err := r.assistant.BuildIndex(ctx)
	if err != nil {
		r.logger.Error("refresh reindex failed", "error", err)
		return
	}

	r.logger.Info("refresh cycle completed",
		"fetched", fetched,
		"indexed", indexed,
		"duration", time.Since(start),
	)
}
