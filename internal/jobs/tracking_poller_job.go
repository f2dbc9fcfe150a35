package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/application/usecases/queries"
	"shipping/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultPollInterval = 30 * time.Second
	DefaultPollWorkers  = 4
)

type (
	openShipmentLister interface {
		Handle(ctx context.Context, query queries.GetOpenShipmentsQuery) ([]queries.GetOpenShipmentsQueryResponse, error)
	}
	trackingRefresher interface {
		Handle(ctx context.Context, cmd commands.RefreshTrackingCommand) (commands.RefreshTrackingResult, error)
	}
)

// SweepResult counts what one poller sweep did.
type SweepResult struct {
	Listed        int
	Refreshed     int
	Applied       int
	Busy          int
	Failed        int
	Issues        int
	NotDispatched int
}

// TrackingPollerJob refreshes tracking for every shipment with an AWB that
// has not reached a closed stage. One order failing never stops the sweep.
type TrackingPollerJob struct {
	lister    openShipmentLister
	refresher trackingRefresher
	workers   int
	batch     int
	logger    *slog.Logger
}

// NewTrackingPollerJob falls back to DefaultPollWorkers for a non-positive
// workers value. batch caps the shipments per sweep; zero means all.
func NewTrackingPollerJob(lister openShipmentLister, refresher trackingRefresher, workers, batch int, logger *slog.Logger) *TrackingPollerJob {
	if workers <= 0 {
		workers = DefaultPollWorkers
	}
	return &TrackingPollerJob{
		lister:    lister,
		refresher: refresher,
		workers:   workers,
		batch:     batch,
		logger:    logger.With("component", "tracking_poller_job"),
	}
}

// Run is the scheduled entry point.
func (j *TrackingPollerJob) Run(ctx context.Context) {
	res, err := j.Sweep(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Tracking sweep failed", "error", err)
		return
	}
	if res.Listed == 0 {
		return
	}
	j.logger.InfoContext(ctx, "Tracking sweep finished",
		"listed", res.Listed,
		"refreshed", res.Refreshed,
		"applied", res.Applied,
		"busy", res.Busy,
		"failed", res.Failed,
		"issues", res.Issues,
		"not_dispatched", res.NotDispatched,
	)
}

// Sweep runs one pass. Cancelling ctx stops dispatch; refreshes already
// started finish on a detached context.
func (j *TrackingPollerJob) Sweep(ctx context.Context) (SweepResult, error) {
	query, err := queries.NewGetOpenShipmentsQuery(j.batch)
	if err != nil {
		return SweepResult{}, err
	}
	shipments, err := j.lister.Handle(ctx, query)
	if err != nil {
		return SweepResult{}, err
	}

	res := SweepResult{Listed: len(shipments)}
	if len(shipments) == 0 {
		return res, nil
	}

	var (
		mu         sync.Mutex
		dispatched int
	)
	var g errgroup.Group
	g.SetLimit(j.workers)
	for _, s := range shipments {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			out, err := j.refresh(context.WithoutCancel(ctx), s)

			mu.Lock()
			defer mu.Unlock()
			dispatched++
			switch {
			case err == nil:
				res.Refreshed++
				res.Applied += out.Applied
				if out.Issue != nil {
					res.Issues++
				}
			case errs.KindOf(err) == errs.KindConflict:
				res.Busy++
			default:
				res.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	res.NotDispatched = len(shipments) - dispatched
	return res, nil
}

func (j *TrackingPollerJob) refresh(ctx context.Context, s queries.GetOpenShipmentsQueryResponse) (commands.RefreshTrackingResult, error) {
	cmd, err := commands.NewRefreshTrackingCommand(s.OrderID, true)
	if err != nil {
		return commands.RefreshTrackingResult{}, err
	}

	out, err := j.refresher.Handle(ctx, cmd)
	switch {
	case err == nil:
		if out.Issue != nil {
			j.logger.WarnContext(ctx, "Provider cancelled an open shipment",
				"order_id", s.OrderID.String(), "awb", s.AWBCode, "issue_id", out.Issue.ID().String())
		}
	case errs.KindOf(err) == errs.KindConflict:
		j.logger.DebugContext(ctx, "Order busy, skipped in this sweep", "order_id", s.OrderID.String())
	default:
		j.logger.WarnContext(ctx, "Tracking refresh failed",
			"order_id", s.OrderID.String(), "awb", s.AWBCode, "error", err)
	}
	return out, err
}

// Schedule registers the job on s.
func (j *TrackingPollerJob) Schedule(s Scheduler, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return s.Every(interval, "tracking_poller", j.Run)
}
