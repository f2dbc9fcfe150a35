package bulk

import (
	"context"
	"errors"
	"log/slog"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxBatch = 10
	DefaultWorkers  = 4
)

// Outcome is what happened to one order of a batch.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	// OutcomeSkipped means the order did not meet the operation's preconditions.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeNotDispatched means the batch was cancelled before the order started.
	OutcomeNotDispatched Outcome = "not_dispatched"
)

// ItemResult reports one order. Detail carries the operation's output: the
// shipment id, AWB code, label URL or pickup token.
type ItemResult struct {
	OrderID   kernel.UUID
	Outcome   Outcome
	ErrorKind errs.Kind
	Message   string
	Detail    string
}

// Result reports a whole batch in request order.
type Result struct {
	Kind          Kind
	Items         []ItemResult
	Succeeded     int
	Failed        int
	Skipped       int
	NotDispatched int
}

// Success reports whether at least one order succeeded.
func (r Result) Success() bool {
	return r.Succeeded > 0
}

type (
	shipmentCreator interface {
		Handle(ctx context.Context, cmd commands.CreateShipmentCommand) (commands.CreateShipmentResult, error)
	}
	awbGenerator interface {
		Handle(ctx context.Context, cmd commands.GenerateAWBCommand) (commands.GenerateAWBResult, error)
	}
	labelFetcher interface {
		Handle(ctx context.Context, cmd commands.FetchLabelCommand) (string, error)
	}
	pickupScheduler interface {
		Handle(ctx context.Context, cmd commands.SchedulePickupCommand) (commands.SchedulePickupResult, error)
	}
)

// Handlers are the single-order operations a batch fans out to.
type Handlers struct {
	CreateShipment shipmentCreator
	GenerateAWB    awbGenerator
	FetchLabel     labelFetcher
	SchedulePickup pickupScheduler
}

// Coordinator runs batches through a bounded worker pool.
//
// Cancelling the context passed to Execute stops dispatch: orders already
// running finish on a detached context and keep their result, the rest are
// reported as OutcomeNotDispatched.
//
// Example:
//
//	coordinator := bulk.NewCoordinator(handlers, bulk.DefaultMaxBatch, bulk.DefaultWorkers, logger)
//	req, err := bulk.NewRequest(bulk.KindGenerateAWB, ids, time.Time{})
//	if err != nil {
//	    return err
//	}
//	result, err := coordinator.Execute(ctx, req)
type Coordinator struct {
	handlers Handlers
	maxBatch int
	workers  int
	logger   *slog.Logger
}

// NewCoordinator falls back to the defaults for non-positive limits.
func NewCoordinator(handlers Handlers, maxBatch, workers int, logger *slog.Logger) *Coordinator {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatch
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Coordinator{
		handlers: handlers,
		maxBatch: maxBatch,
		workers:  workers,
		logger:   logger.With("component", "bulk"),
	}
}

// Execute applies the request's operation to every order. A batch larger
// than the configured cap is rejected as a validation error before anything
// runs; per-order failures never fail the batch.
func (c *Coordinator) Execute(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	ids := req.OrderIDs()
	if len(ids) > c.maxBatch {
		return Result{}, errs.NewValueIsOutOfRangeError("orderIds", len(ids), 1, c.maxBatch)
	}

	items := make([]ItemResult, len(ids))
	for i, id := range ids {
		items[i] = ItemResult{OrderID: id, Outcome: OutcomeNotDispatched}
	}

	c.logger.InfoContext(ctx, "bulk operation started", "kind", string(req.Kind()), "orders", len(ids))

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			detail, err := c.dispatch(context.WithoutCancel(ctx), req, id)
			items[i] = itemResult(id, detail, err)
			return nil
		})
	}
	_ = g.Wait()

	result := Result{Kind: req.Kind(), Items: items}
	for _, item := range items {
		switch item.Outcome {
		case OutcomeSucceeded:
			result.Succeeded++
		case OutcomeFailed:
			result.Failed++
		case OutcomeSkipped:
			result.Skipped++
		case OutcomeNotDispatched:
			result.NotDispatched++
		}
	}

	c.logger.InfoContext(ctx, "bulk operation finished",
		"kind", string(req.Kind()),
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"not_dispatched", result.NotDispatched,
	)
	return result, nil
}

func (c *Coordinator) dispatch(ctx context.Context, req Request, orderID kernel.UUID) (string, error) {
	switch req.Kind() {
	case KindCreateShipments:
		cmd, err := commands.NewCreateShipmentCommand(orderID, "")
		if err != nil {
			return "", err
		}
		res, err := c.handlers.CreateShipment.Handle(ctx, cmd)
		return res.ShipmentID, err

	case KindGenerateAWB:
		cmd, err := commands.NewGenerateAWBCommand(orderID, 0)
		if err != nil {
			return "", err
		}
		res, err := c.handlers.GenerateAWB.Handle(ctx, cmd)
		return res.AWBCode, err

	case KindPrintLabels:
		cmd, err := commands.NewFetchLabelCommand(orderID)
		if err != nil {
			return "", err
		}
		return c.handlers.FetchLabel.Handle(ctx, cmd)

	case KindSchedulePickup:
		cmd, err := commands.NewSchedulePickupCommand(orderID, req.PickupDate())
		if err != nil {
			return "", err
		}
		res, err := c.handlers.SchedulePickup.Handle(ctx, cmd)
		return res.Token, err

	default:
		return "", errs.NewValueIsInvalidError("kind")
	}
}

func itemResult(orderID kernel.UUID, detail string, err error) ItemResult {
	if err == nil {
		return ItemResult{OrderID: orderID, Outcome: OutcomeSucceeded, Detail: detail}
	}

	kind := errs.KindOf(err)
	outcome := OutcomeFailed
	if kind == errs.KindValidation {
		outcome = OutcomeSkipped
	}
	return ItemResult{
		OrderID:   orderID,
		Outcome:   outcome,
		ErrorKind: kind,
		Message:   messageOf(err),
	}
}

// messageOf prefers the provider's own wording.
func messageOf(err error) string {
	var pe *errs.ProviderError
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return err.Error()
}
