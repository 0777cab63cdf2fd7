package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultPurgeInterval is how often expired cache rows are removed.
const DefaultPurgeInterval = 10 * time.Minute

// Purger removes expired cache entries.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// CachePurge deletes expired result cache rows on a timer. Backends with
// native expiry do not need it.
type CachePurge struct {
	purger   Purger
	logger   *slog.Logger
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewCachePurge creates a CachePurge. A non-positive interval uses
// DefaultPurgeInterval.
func NewCachePurge(purger Purger, interval time.Duration, logger *slog.Logger) *CachePurge {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachePurge{
		purger:   purger,
		logger:   logger,
		interval: interval,
	}
}

// Start begins purging in a background goroutine. Calling Start on a running
// purge is a no-op.
func (p *CachePurge) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Go(func() {
		p.run(ctx)
	})

	p.logger.Debug("cache purge started", slog.Duration("interval", p.interval))
}

// Stop cancels the background goroutine and waits for it to finish.
func (p *CachePurge) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

// Close stops the purge so it can sit in a closer list.
func (p *CachePurge) Close() error {
	p.Stop()
	return nil
}

func (p *CachePurge) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.purge(ctx)
		}
	}
}

func (p *CachePurge) purge(ctx context.Context) {
	n, err := p.purger.PurgeExpired(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("cache purge failed", slog.Any("error", err))
		return
	}
	if n > 0 {
		p.logger.Debug("cache purge removed expired entries", slog.Int64("count", n))
	}
}
