package commands

import (
	"context"
	"errors"
	"log/slog"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/clock"
	"shipping/internal/pkg/errs"
)

// Lifecycle holds what every order transition shares: the per-order lock,
// loading, persistence and publishing of committed stage changes.
//
// Example:
//
//	lc := commands.NewLifecycle(uowFactory, keylock.New(5*time.Second), publisher, clock.System(), logger)
//	handler := commands.NewRegisterOrderCommandHandler(lc, gateway)
type Lifecycle struct {
	uowFactory UoWFactory
	locker     ports.OrderLocker
	publisher  ports.EventPublisher
	clock      clock.Clock
	logger     *slog.Logger
}

// NewLifecycle wires the shared transition dependencies.
func NewLifecycle(
	uowFactory UoWFactory,
	locker ports.OrderLocker,
	publisher ports.EventPublisher,
	clk clock.Clock,
	logger *slog.Logger,
) *Lifecycle {
	return &Lifecycle{
		uowFactory: uowFactory,
		locker:     locker,
		publisher:  publisher,
		clock:      clk,
		logger:     logger.With("component", "lifecycle"),
	}
}

// transition runs fn on the order while holding its lock. Provider failures
// returned by fn are recorded on the shipment before being returned; the
// stage stays where it was.
func (l *Lifecycle) transition(
	ctx context.Context,
	orderID kernel.UUID,
	name string,
	tryLock bool,
	fn func(o *order.Order) error,
) error {
	unlock, err := l.lock(ctx, orderID, tryLock)
	if err != nil {
		return err
	}
	defer unlock()

	o, err := l.load(ctx, orderID)
	if err != nil {
		return err
	}

	err = fn(o)
	if err == nil {
		return nil
	}

	kind := errs.KindOf(err)
	if kind == errs.KindTransient || kind == errs.KindPermanent {
		o.RecordFailure(string(kind), failureMessage(err), l.clock.Now())
		if saveErr := l.save(ctx, o, nil); saveErr != nil {
			l.logger.ErrorContext(ctx, "failed to record transition failure",
				"order_id", orderID.String(), "transition", name, "error", saveErr)
		}
	}
	l.logger.WarnContext(ctx, "transition failed",
		"order_id", orderID.String(), "transition", name, "kind", string(kind), "error", err)
	return err
}

func (l *Lifecycle) lock(ctx context.Context, orderID kernel.UUID, tryLock bool) (func(), error) {
	key := "order:" + orderID.String()
	if tryLock {
		unlock, ok := l.locker.TryLock(key)
		if !ok {
			return nil, errs.NewConflictError(key)
		}
		return unlock, nil
	}
	return l.locker.Lock(ctx, key)
}

func (l *Lifecycle) load(ctx context.Context, orderID kernel.UUID) (*order.Order, error) {
	return l.uowFactory.Create().OrderRepository().Get(ctx, orderID)
}

// save updates the order and runs extra inside one transaction, then
// publishes the committed stage changes. Persistence is detached from ctx
// cancellation so a completed provider call is never lost.
func (l *Lifecycle) save(ctx context.Context, o *order.Order, extra func(uow UoW) error) error {
	return l.commit(ctx, func(uow UoW) error {
		if err := uow.OrderRepository().Update(ctx, o); err != nil {
			return err
		}
		if extra != nil {
			return extra(uow)
		}
		return nil
	})
}

func (l *Lifecycle) commit(ctx context.Context, fn func(uow UoW) error) error {
	ctx = context.WithoutCancel(ctx)

	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	l.publish(ctx, uow.TrackedOrders())
	return nil
}

func (l *Lifecycle) publish(ctx context.Context, orders []*order.Order) {
	now := l.clock.Now()
	var events []ports.ShipmentEvent
	for _, o := range orders {
		for _, change := range o.PullChanges() {
			events = append(events, ports.ShipmentEvent{
				OrderID:    o.ID().String(),
				FromStage:  change.From.String(),
				ToStage:    change.To.String(),
				Status:     change.Status.String(),
				OccurredAt: now,
			})
		}
	}
	if len(events) == 0 {
		return
	}

	if err := l.publisher.Publish(ctx, events...); err != nil {
		l.logger.ErrorContext(ctx, "failed to publish shipment events", "count", len(events), "error", err)
	}
}

// openIssue persists a reconciliation issue inside the current transaction.
func (l *Lifecycle) openIssue(ctx context.Context, uow UoW, o *order.Order, detail string) (*order.ReconciliationIssue, error) {
	issue, err := order.NewReconciliationIssue(o.ID(), o.Stage(), detail, l.clock.Now())
	if err != nil {
		return nil, err
	}
	if err = uow.ReconciliationRepository().Add(ctx, issue); err != nil {
		return nil, err
	}
	l.logger.WarnContext(ctx, "reconciliation issue opened",
		"order_id", o.ID().String(), "issue_id", issue.ID().String(), "detail", detail)
	return issue, nil
}

func failureMessage(err error) string {
	var pe *errs.ProviderError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}
