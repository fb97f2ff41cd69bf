package scheduler

import (
	"context"
	"time"

	"github.com/productbazar/bazar/internal/logger"
	"github.com/productbazar/bazar/internal/session"
	redisstore "github.com/productbazar/bazar/internal/store/redis"
)

const (
	// DefaultSessionTTL is the idle lifetime after which a session is evicted
	DefaultSessionTTL = 30 * time.Minute
)

// SessionSweeper evicts sessions that sat idle past the TTL, together with
// their persisted Redis keys.
type SessionSweeper struct {
	registry *session.Registry
	store    *redisstore.Store
	logger   logger.Logger
	interval time.Duration
	ttl      time.Duration
	stopCh   chan struct{}
}

// NewSessionSweeper creates a new session sweeper
func NewSessionSweeper(
	registry *session.Registry,
	store *redisstore.Store,
	log logger.Logger,
	interval time.Duration,
	ttl time.Duration,
) *SessionSweeper {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &SessionSweeper{
		registry: registry,
		store:    store,
		logger:   log,
		interval: interval,
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep process
func (sw *SessionSweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(sw.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sw.Sweep(ctx)
			case <-sw.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweeper
func (sw *SessionSweeper) Stop() {
	close(sw.stopCh)
}

// Sweep evicts idle sessions and drops their Redis keys.
func (sw *SessionSweeper) Sweep(ctx context.Context) {
	removed := sw.registry.SweepIdle(sw.ttl)
	if len(removed) == 0 {
		sw.logger.Debug("no idle sessions to sweep")
		return
	}

	for _, id := range removed {
		// Redis cleanup is best effort; the keys carry their own TTL.
		if sw.store != nil {
			if err := sw.store.DropSession(ctx, id); err != nil {
				sw.logger.Warn("failed to drop session keys from redis",
					logger.String("session", id),
					logger.Error(err))
			}
		}
	}

	sw.logger.Info("swept idle sessions",
		logger.Int("count", len(removed)),
		logger.Int("remaining", sw.registry.Len()))
}
