// Package wallet caches the provider wallet balance shown to operators.
package wallet

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/clock"

	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 5 * time.Minute

const flightKey = "wallet_balance"

// BalanceSource is the upstream the cache reads through.
type BalanceSource interface {
	GetWalletBalance(ctx context.Context) (kernel.Money, error)
}

// Balance is a cached wallet reading.
type Balance struct {
	Amount    kernel.Money
	FetchedAt time.Time
}

// Cache holds the last balance for a TTL. Concurrent misses share one
// upstream call; a caller whose context ends stops waiting but the call
// itself runs to completion and fills the cache.
//
// A failed refresh is returned to the caller and the old value is kept for
// the next fresh read; stale values are never served.
type Cache struct {
	source BalanceSource
	ttl    time.Duration
	clock  clock.Clock
	logger *slog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	balance Balance
	has     bool
}

// NewCache uses DefaultTTL for a non-positive ttl.
func NewCache(source BalanceSource, ttl time.Duration, clk clock.Clock, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		source: source,
		ttl:    ttl,
		clock:  clk,
		logger: logger.With("component", "wallet_cache"),
	}
}

// Get returns the cached balance while it is younger than the TTL and
// refreshes it otherwise.
func (c *Cache) Get(ctx context.Context) (Balance, error) {
	if b, ok := c.fresh(); ok {
		return b, nil
	}
	return c.refresh(ctx)
}

// ForceRefresh bypasses the TTL. It still joins a refresh already in flight.
func (c *Cache) ForceRefresh(ctx context.Context) (Balance, error) {
	return c.refresh(ctx)
}

func (c *Cache) fresh() (Balance, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.has || c.clock.Now().Sub(c.balance.FetchedAt) >= c.ttl {
		return Balance{}, false
	}
	return c.balance, true
}

func (c *Cache) refresh(ctx context.Context) (Balance, error) {
	ch := c.group.DoChan(flightKey, func() (any, error) {
		amount, err := c.source.GetWalletBalance(context.WithoutCancel(ctx))
		if err != nil {
			c.logger.WarnContext(ctx, "wallet balance refresh failed", "error", err)
			return Balance{}, err
		}

		b := Balance{Amount: amount, FetchedAt: c.clock.Now()}
		c.mu.Lock()
		c.balance = b
		c.has = true
		c.mu.Unlock()

		c.logger.DebugContext(ctx, "wallet balance refreshed", "amount", amount.String())
		return b, nil
	})

	select {
	case <-ctx.Done():
		return Balance{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Balance{}, res.Err
		}
		return res.Val.(Balance), nil
	}
}
