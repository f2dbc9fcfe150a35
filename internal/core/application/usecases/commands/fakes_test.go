package commands_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/domain/model/courier"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/clock"
	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/keylock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

// memStore is an in-memory database shared by the fake units of work.
type memStore struct {
	mu     sync.Mutex
	orders map[string]order.Snapshot
	events map[string][]order.TrackingEvent
	issues map[string]order.ReconciliationIssue
}

func newMemStore() *memStore {
	return &memStore{
		orders: map[string]order.Snapshot{},
		events: map[string][]order.TrackingEvent{},
		issues: map[string]order.ReconciliationIssue{},
	}
}

func (s *memStore) order(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()
	o, err := (&fakeUoW{store: s}).OrderRepository().Get(context.Background(), id)
	require.NoError(t, err)
	return o
}

func (s *memStore) issueList() []order.ReconciliationIssue {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]order.ReconciliationIssue, 0, len(s.issues))
	for _, issue := range s.issues {
		list = append(list, issue)
	}
	return list
}

func (s *memStore) eventList(id kernel.UUID) []order.TrackingEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]order.TrackingEvent(nil), s.events[id.String()]...)
}

// fakeUoW buffers writes made after Begin until Commit.
type fakeUoW struct {
	store   *memStore
	inTx    bool
	orders  map[string]order.Snapshot
	events  map[string][]order.TrackingEvent
	issues  map[string]order.ReconciliationIssue
	tracked []*order.Order
}

type fakeUoWFactory struct {
	store *memStore
}

func (f fakeUoWFactory) Create() commands.UoW {
	return &fakeUoW{store: f.store}
}

func (u *fakeUoW) Begin(context.Context) error {
	u.inTx = true
	u.orders = map[string]order.Snapshot{}
	u.events = map[string][]order.TrackingEvent{}
	u.issues = map[string]order.ReconciliationIssue{}
	return nil
}

func (u *fakeUoW) Commit(context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for id, snap := range u.orders {
		u.store.orders[id] = snap
	}
	for id, events := range u.events {
		u.store.events[id] = append(u.store.events[id], events...)
	}
	for id, issue := range u.issues {
		u.store.issues[id] = issue
	}
	u.inTx = false
	return nil
}

func (u *fakeUoW) Rollback(context.Context) error {
	u.inTx = false
	u.orders, u.events, u.issues = nil, nil, nil
	return nil
}

func (u *fakeUoW) OrderRepository() ports.OrderRepository { return fakeOrderRepo{u} }

func (u *fakeUoW) TrackingEventRepository() ports.TrackingEventRepository { return fakeTrackingRepo{u} }

func (u *fakeUoW) ReconciliationRepository() ports.ReconciliationRepository {
	return fakeReconciliationRepo{u}
}

func (u *fakeUoW) TrackedOrders() []*order.Order { return u.tracked }

type fakeOrderRepo struct{ u *fakeUoW }

func (r fakeOrderRepo) Add(ctx context.Context, o *order.Order) error {
	r.u.store.mu.Lock()
	_, exists := r.u.store.orders[o.ID().String()]
	r.u.store.mu.Unlock()
	if exists {
		return errs.NewConflictError("order " + o.ID().String())
	}
	return r.Update(ctx, o)
}

func (r fakeOrderRepo) Update(_ context.Context, o *order.Order) error {
	r.u.tracked = append(r.u.tracked, o)
	if r.u.inTx {
		r.u.orders[o.ID().String()] = o.Snapshot()
		return nil
	}
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	r.u.store.orders[o.ID().String()] = o.Snapshot()
	return nil
}

func (r fakeOrderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	r.u.store.mu.Lock()
	snap, ok := r.u.store.orders[id.String()]
	r.u.store.mu.Unlock()
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	if snap.Shipment != nil {
		shipment, err := order.RestoreShipment(snap.Shipment.Snapshot())
		if err != nil {
			return nil, err
		}
		snap.Shipment = shipment
	}
	return order.RestoreOrder(snap)
}

type fakeTrackingRepo struct{ u *fakeUoW }

func (r fakeTrackingRepo) Append(_ context.Context, id kernel.UUID, events []order.TrackingEvent) error {
	if r.u.inTx {
		r.u.events[id.String()] = append(r.u.events[id.String()], events...)
		return nil
	}
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	r.u.store.events[id.String()] = append(r.u.store.events[id.String()], events...)
	return nil
}

func (r fakeTrackingRepo) List(_ context.Context, id kernel.UUID) ([]order.TrackingEvent, error) {
	return r.u.store.eventList(id), nil
}

type fakeReconciliationRepo struct{ u *fakeUoW }

func (r fakeReconciliationRepo) Add(ctx context.Context, issue *order.ReconciliationIssue) error {
	return r.Update(ctx, issue)
}

func (r fakeReconciliationRepo) Update(_ context.Context, issue *order.ReconciliationIssue) error {
	if r.u.inTx {
		r.u.issues[issue.ID().String()] = *issue
		return nil
	}
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	r.u.store.issues[issue.ID().String()] = *issue
	return nil
}

func (r fakeReconciliationRepo) Get(_ context.Context, id kernel.UUID) (*order.ReconciliationIssue, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	issue, ok := r.u.store.issues[id.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("reconciliation issue", id)
	}
	return &issue, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []ports.ShipmentEvent
}

func (p *fakePublisher) Publish(_ context.Context, events ...ports.ShipmentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *fakePublisher) toStages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	stages := make([]string, 0, len(p.events))
	for _, e := range p.events {
		stages = append(stages, e.ToStage)
	}
	return stages
}

type MockGateway struct{ mock.Mock }

func (m *MockGateway) CreateOrder(ctx context.Context, req ports.RegisterOrderRequest) (ports.ProviderOrder, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.ProviderOrder), args.Error(1)
}

func (m *MockGateway) FindOrder(ctx context.Context, orderID kernel.UUID) (ports.ProviderOrder, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(ports.ProviderOrder), args.Error(1)
}

func (m *MockGateway) CreateShipment(ctx context.Context, req ports.CreateShipmentRequest) (ports.CreatedShipment, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.CreatedShipment), args.Error(1)
}

func (m *MockGateway) GenerateAWB(ctx context.Context, shipmentID string, courierID int) (ports.AWB, error) {
	args := m.Called(ctx, shipmentID, courierID)
	return args.Get(0).(ports.AWB), args.Error(1)
}

func (m *MockGateway) AssignCourier(ctx context.Context, shipmentID string, courierID int) (ports.AWB, error) {
	args := m.Called(ctx, shipmentID, courierID)
	return args.Get(0).(ports.AWB), args.Error(1)
}

func (m *MockGateway) ListCouriers(ctx context.Context, query ports.ServiceabilityQuery) ([]courier.Quote, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]courier.Quote), args.Error(1)
}

func (m *MockGateway) GetRates(ctx context.Context, query ports.RateQuery) ([]courier.Quote, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]courier.Quote), args.Error(1)
}

func (m *MockGateway) SchedulePickup(ctx context.Context, shipmentID string, date time.Time) (ports.PickupConfirmation, error) {
	args := m.Called(ctx, shipmentID, date)
	return args.Get(0).(ports.PickupConfirmation), args.Error(1)
}

func (m *MockGateway) CancelShipment(ctx context.Context, req ports.CancelShipmentRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockGateway) TrackByAWB(ctx context.Context, awbCode string) ([]order.TrackingEvent, error) {
	args := m.Called(ctx, awbCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.TrackingEvent), args.Error(1)
}

func (m *MockGateway) GetLabel(ctx context.Context, shipmentID string) (string, error) {
	args := m.Called(ctx, shipmentID)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) GetWalletBalance(ctx context.Context) (kernel.Money, error) {
	args := m.Called(ctx)
	return args.Get(0).(kernel.Money), args.Error(1)
}

// env is a lifecycle wired to in-memory fakes.
type env struct {
	store     *memStore
	gateway   *MockGateway
	publisher *fakePublisher
	clock     *clock.Manual
	locker    *keylock.Locker
	lifecycle *commands.Lifecycle
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:     newMemStore(),
		gateway:   &MockGateway{},
		publisher: &fakePublisher{},
		clock:     clock.NewManual(testNow),
		locker:    keylock.New(time.Second),
	}
	e.lifecycle = commands.NewLifecycle(
		fakeUoWFactory{store: e.store}, e.locker, e.publisher, e.clock, slog.New(slog.DiscardHandler),
	)
	t.Cleanup(func() { e.gateway.AssertExpectations(t) })
	return e
}

// seed stores an order driven through the aggregate up to stage.
func (e *env) seed(t *testing.T, stage order.Stage) *order.Order {
	t.Helper()
	addr, err := kernel.NewAddress(kernel.AddressParams{
		Line1: "12 MG Road", City: "Bengaluru", State: "Karnataka", Postcode: "560001",
	})
	require.NoError(t, err)
	customer, err := order.NewCustomer("Asha Rao", "asha@example.com", "9999999999", addr)
	require.NoError(t, err)
	value, err := kernel.MoneyFromString("1499.00")
	require.NoError(t, err)
	parcel, err := order.NewParcel(decimal.RequireFromString("0.5"), decimal.NewFromInt(10),
		decimal.NewFromInt(10), decimal.NewFromInt(5), value)
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), customer, parcel, order.PaymentPaid)
	require.NoError(t, err)

	steps := []struct {
		stage order.Stage
		apply func() error
	}{
		{order.StageAccepted, o.Accept},
		{order.StageRegistered, func() error { return o.Register("PO-1") }},
		{order.StageShipmentCreated, func() error { return o.AttachShipment("SH-1", "") }},
		{order.StageAWBGenerated, func() error { return o.AssignAWB("AWB-1", nil) }},
		{order.StageCourierAssigned, func() error {
			c, err := order.NewCourierAssignment(7, "Delhivery Surface", 4, kernel.ZeroMoney, kernel.ZeroMoney)
			require.NoError(t, err)
			_, err = o.AssignCourier(c, "")
			return err
		}},
		{order.StagePickupScheduled, func() error {
			p, err := order.NewPickup(testNow, "PU-1")
			require.NoError(t, err)
			return o.SchedulePickup(p)
		}},
		{order.StageInTransit, o.MarkInTransit},
	}
	for _, step := range steps {
		if o.Stage() == stage {
			break
		}
		require.NoError(t, step.apply())
	}
	require.Equal(t, stage, o.Stage())
	o.PullChanges()

	e.store.orders[o.ID().String()] = o.Snapshot()
	return o
}

func timeoutError(op string) error {
	return errs.NewTransientProviderError(op, errs.ProviderCodeTimeout, "request timed out", context.DeadlineExceeded)
}
