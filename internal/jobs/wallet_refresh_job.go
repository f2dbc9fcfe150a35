package jobs

import (
	"context"
	"log/slog"
	"time"

	"shipping/internal/core/application/wallet"
)

const DefaultWalletRefreshInterval = 5 * time.Minute

type walletRefresher interface {
	ForceRefresh(ctx context.Context) (wallet.Balance, error)
}

// WalletRefreshJob keeps the wallet cache warm so operator reads rarely hit
// the provider.
type WalletRefreshJob struct {
	cache  walletRefresher
	logger *slog.Logger
}

func NewWalletRefreshJob(cache walletRefresher, logger *slog.Logger) *WalletRefreshJob {
	return &WalletRefreshJob{
		cache:  cache,
		logger: logger.With("component", "wallet_refresh_job"),
	}
}

// Run refreshes the balance once. Failures are logged; the cache keeps
// returning errors to readers until a refresh succeeds.
func (j *WalletRefreshJob) Run(ctx context.Context) {
	b, err := j.cache.ForceRefresh(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Wallet refresh failed", "error", err)
		return
	}
	j.logger.DebugContext(ctx, "Wallet refreshed", "amount", b.Amount.String())
}

func (j *WalletRefreshJob) Schedule(s Scheduler, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultWalletRefreshInterval
	}
	return s.Every(interval, "wallet_refresh", j.Run)
}
