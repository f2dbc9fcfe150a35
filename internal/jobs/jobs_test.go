package jobs_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/application/usecases/queries"
	"shipping/internal/core/application/wallet"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/jobs"
	"shipping/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.DiscardHandler)

type listerFunc func(ctx context.Context, q queries.GetOpenShipmentsQuery) ([]queries.GetOpenShipmentsQueryResponse, error)

func (f listerFunc) Handle(ctx context.Context, q queries.GetOpenShipmentsQuery) ([]queries.GetOpenShipmentsQueryResponse, error) {
	return f(ctx, q)
}

type refresherFunc func(ctx context.Context, cmd commands.RefreshTrackingCommand) (commands.RefreshTrackingResult, error)

func (f refresherFunc) Handle(ctx context.Context, cmd commands.RefreshTrackingCommand) (commands.RefreshTrackingResult, error) {
	return f(ctx, cmd)
}

func openShipments(n int) []queries.GetOpenShipmentsQueryResponse {
	out := make([]queries.GetOpenShipmentsQueryResponse, n)
	for i := range out {
		out[i] = queries.GetOpenShipmentsQueryResponse{
			OrderID: kernel.NewUUID(),
			AWBCode: "AWB" + string(rune('A'+i)),
			Stage:   order.StageInTransit,
		}
	}
	return out
}

func fixedLister(shipments []queries.GetOpenShipmentsQueryResponse) listerFunc {
	return func(context.Context, queries.GetOpenShipmentsQuery) ([]queries.GetOpenShipmentsQueryResponse, error) {
		return shipments, nil
	}
}

func TestTrackingPollerJob_Sweep_IsolatesFailures(t *testing.T) {
	shipments := openShipments(4)
	issue, err := order.NewReconciliationIssue(shipments[3].OrderID, order.StageInTransit, "provider reports the shipment cancelled", time.Now())
	require.NoError(t, err)

	outcomes := map[kernel.UUID]func() (commands.RefreshTrackingResult, error){
		shipments[0].OrderID: func() (commands.RefreshTrackingResult, error) {
			return commands.RefreshTrackingResult{Stage: order.StageDelivered, Applied: 2}, nil
		},
		shipments[1].OrderID: func() (commands.RefreshTrackingResult, error) {
			return commands.RefreshTrackingResult{}, errs.NewConflictError(shipments[1].OrderID.String())
		},
		shipments[2].OrderID: func() (commands.RefreshTrackingResult, error) {
			return commands.RefreshTrackingResult{}, errs.NewTransientProviderError("track_by_awb", errs.ProviderCodeUnavailable, "bad gateway", nil)
		},
		shipments[3].OrderID: func() (commands.RefreshTrackingResult, error) {
			return commands.RefreshTrackingResult{Stage: order.StageInTransit, Applied: 1, Issue: issue}, nil
		},
	}

	var skipIfBusy atomic.Int32
	refresher := refresherFunc(func(_ context.Context, cmd commands.RefreshTrackingCommand) (commands.RefreshTrackingResult, error) {
		if cmd.SkipIfBusy() {
			skipIfBusy.Add(1)
		}
		return outcomes[cmd.OrderID()]()
	})

	job := jobs.NewTrackingPollerJob(fixedLister(shipments), refresher, 2, 0, discard)
	res, err := job.Sweep(t.Context())

	require.NoError(t, err)
	assert.Equal(t, jobs.SweepResult{
		Listed:    4,
		Refreshed: 2,
		Applied:   3,
		Busy:      1,
		Failed:    1,
		Issues:    1,
	}, res)
	assert.Equal(t, int32(4), skipIfBusy.Load(), "poller never waits for a busy order")
}

func TestTrackingPollerJob_Sweep_IdleWhenNothingOpen(t *testing.T) {
	refresher := refresherFunc(func(context.Context, commands.RefreshTrackingCommand) (commands.RefreshTrackingResult, error) {
		t.Fatal("refresh must not run without open shipments")
		return commands.RefreshTrackingResult{}, nil
	})

	res, err := jobs.NewTrackingPollerJob(fixedLister(nil), refresher, 2, 0, discard).Sweep(t.Context())

	require.NoError(t, err)
	assert.Zero(t, res)
}

func TestTrackingPollerJob_Sweep_PassesBatchLimit(t *testing.T) {
	var limit int
	lister := listerFunc(func(_ context.Context, q queries.GetOpenShipmentsQuery) ([]queries.GetOpenShipmentsQueryResponse, error) {
		limit = q.Limit()
		return nil, nil
	})

	_, err := jobs.NewTrackingPollerJob(lister, nil, 1, 50, discard).Sweep(t.Context())

	require.NoError(t, err)
	assert.Equal(t, 50, limit)
}

func TestTrackingPollerJob_Sweep_ListFailure(t *testing.T) {
	boom := errors.New("connection refused")
	lister := listerFunc(func(context.Context, queries.GetOpenShipmentsQuery) ([]queries.GetOpenShipmentsQueryResponse, error) {
		return nil, boom
	})

	_, err := jobs.NewTrackingPollerJob(lister, nil, 1, 0, discard).Sweep(t.Context())

	assert.ErrorIs(t, err, boom)
}

func TestTrackingPollerJob_Sweep_CancellationStopsDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	refresher := refresherFunc(func(hctx context.Context, _ commands.RefreshTrackingCommand) (commands.RefreshTrackingResult, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		if err := hctx.Err(); err != nil {
			return commands.RefreshTrackingResult{}, err
		}
		return commands.RefreshTrackingResult{Applied: 1}, nil
	})

	job := jobs.NewTrackingPollerJob(fixedLister(openShipments(3)), refresher, 1, 0, discard)

	done := make(chan jobs.SweepResult)
	go func() {
		res, err := job.Sweep(ctx)
		assert.NoError(t, err)
		done <- res
	}()

	<-started
	cancel()
	close(release)
	res := <-done

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, res.Refreshed, "in-flight refresh completes")
	assert.Equal(t, 2, res.NotDispatched)
}

type walletFunc func(ctx context.Context) (wallet.Balance, error)

func (f walletFunc) ForceRefresh(ctx context.Context) (wallet.Balance, error) {
	return f(ctx)
}

func TestJobManager_RunsJobsOnTick(t *testing.T) {
	shipments := openShipments(2)
	var refreshed, walletCalls atomic.Int32
	refresher := refresherFunc(func(context.Context, commands.RefreshTrackingCommand) (commands.RefreshTrackingResult, error) {
		refreshed.Add(1)
		return commands.RefreshTrackingResult{}, nil
	})
	walletJob := jobs.NewWalletRefreshJob(walletFunc(func(context.Context) (wallet.Balance, error) {
		walletCalls.Add(1)
		return wallet.Balance{}, errs.NewTransientProviderError("wallet_balance", errs.ProviderCodeTimeout, "timeout", nil)
	}), discard)

	scheduler := jobs.NewManualScheduler()
	manager := jobs.NewJobManager(
		scheduler,
		jobs.NewTrackingPollerJob(fixedLister(shipments), refresher, 2, 0, discard),
		walletJob,
		jobs.Intervals{},
		discard,
	)

	scheduler.Tick(t.Context())
	assert.Zero(t, refreshed.Load(), "nothing runs before start")

	require.NoError(t, manager.StartAll())
	assert.Equal(t, []string{"tracking_poller", "wallet_refresh"}, scheduler.Tasks())

	scheduler.Tick(t.Context())
	scheduler.Tick(t.Context())
	assert.Equal(t, int32(4), refreshed.Load())
	assert.Equal(t, int32(2), walletCalls.Load(), "a failed wallet refresh does not unschedule the job")

	manager.StopAll()
	scheduler.Tick(t.Context())
	assert.Equal(t, int32(4), refreshed.Load())
}

func TestManualScheduler_RejectsNonPositiveInterval(t *testing.T) {
	err := jobs.NewManualScheduler().Every(0, "noop", func(context.Context) {})
	assert.Error(t, err)
}

func TestCronScheduler_RunsAndStops(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timing test in short mode")
	}

	scheduler := jobs.NewCronScheduler(discard)
	var (
		mu   sync.Mutex
		runs int
		seen context.Context
	)
	require.NoError(t, scheduler.Every(time.Second, "count", func(ctx context.Context) {
		mu.Lock()
		defer mu.Unlock()
		runs++
		seen = ctx
	}))

	scheduler.Start()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return runs > 0
	}, 3*time.Second, 50*time.Millisecond)
	scheduler.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.ErrorIs(t, seen.Err(), context.Canceled, "stop cancels the task context")
}
