package queries_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "shipping/internal/adapters/out/postgres"
	"shipping/internal/core/application/usecases/queries"
	"shipping/internal/core/domain/model/courier"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/core/domain/services"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type QueriesIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *QueriesIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *QueriesIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *QueriesIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE shipments, orders, tracking_events, reconciliation_issues").Error
	suite.Require().NoError(err)
}

func (suite *QueriesIntegrationTestSuite) TestGetOpenShipments_ListsTrackableShipmentsOldestSyncFirst() {
	ctx := context.Background()
	neverSynced := suite.addOrder(order.StagePickupScheduled, time.Time{})
	synced := suite.addOrder(order.StageInTransit, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC))
	suite.addOrder(order.StageShipmentCreated, time.Time{})
	suite.addOrder(order.StageDelivered, time.Time{})

	query, err := queries.NewGetOpenShipmentsQuery(0)
	suite.Require().NoError(err)
	result, err := queries.NewGetOpenShipmentsQueryHandler(suite.db).Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 2)
	suite.True(neverSynced.ID().IsEqual(result[0].OrderID))
	suite.True(result[0].LastTrackingSyncAt.IsZero())
	suite.True(synced.ID().IsEqual(result[1].OrderID))
	suite.Equal(order.StageInTransit, result[1].Stage)
	suite.Equal("AWB-1", result[1].AWBCode)

	limited, err := queries.NewGetOpenShipmentsQuery(1)
	suite.Require().NoError(err)
	result, err = queries.NewGetOpenShipmentsQueryHandler(suite.db).Handle(ctx, limited)
	suite.Require().NoError(err)
	suite.Len(result, 1)
}

func (suite *QueriesIntegrationTestSuite) TestGetOpenShipments_SkipsOperatorClosedStatuses() {
	ctx := context.Background()
	open := suite.addOrder(order.StagePickupScheduled, time.Time{})
	for _, closed := range order.ClosedStatuses() {
		o := suite.addOrder(order.StageInTransit, time.Time{})
		suite.Require().NoError(o.OverrideStatus(closed))
		suite.Require().NoError(suite.factory.Create().OrderRepository().Update(ctx, o))
	}

	query, err := queries.NewGetOpenShipmentsQuery(0)
	suite.Require().NoError(err)
	result, err := queries.NewGetOpenShipmentsQueryHandler(suite.db).Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.True(open.ID().IsEqual(result[0].OrderID))
}

func (suite *QueriesIntegrationTestSuite) TestGetOpenShipments_EmptyDatabase_ReturnsEmptySlice() {
	query, err := queries.NewGetOpenShipmentsQuery(0)
	suite.Require().NoError(err)

	result, err := queries.NewGetOpenShipmentsQueryHandler(suite.db).Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *QueriesIntegrationTestSuite) TestGetOrder_ReturnsShipmentAndTrackingHistory() {
	ctx := context.Background()
	o := suite.addOrder(order.StageInTransit, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC))

	pickedUp, err := order.NewTrackingEvent(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), "Picked Up", "Pune")
	suite.Require().NoError(err)
	created, err := order.NewTrackingEvent(time.Date(2026, 10, 18, 17, 0, 0, 0, time.UTC), "Manifested", "Pune")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().TrackingEventRepository().
		Append(ctx, o.ID(), []order.TrackingEvent{pickedUp, created}))

	query, err := queries.NewGetOrderQuery(o.ID())
	suite.Require().NoError(err)
	view, err := queries.NewGetOrderQueryHandler(suite.db).Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Equal(order.StageInTransit, view.Stage)
	suite.Equal(order.Shipped, view.Status)
	suite.Equal("Bengaluru", view.DeliveryCity)
	suite.Require().NotNil(view.Shipment)
	suite.Equal("AWB-1", view.Shipment.AWBCode)
	suite.Require().NotNil(view.Shipment.Courier)
	suite.Equal(7, view.Shipment.Courier.ID)
	suite.Equal("PU-1", view.Shipment.PickupToken)
	suite.Require().Len(view.TrackingEvents, 2)
	suite.Equal("Manifested", view.TrackingEvents[0].Status)
	suite.Equal("Picked Up", view.TrackingEvents[1].Status)
}

func (suite *QueriesIntegrationTestSuite) TestGetOrder_PendingOrderHasNoShipment() {
	o := suite.addOrder(order.StageNone, time.Time{})

	query, err := queries.NewGetOrderQuery(o.ID())
	suite.Require().NoError(err)
	view, err := queries.NewGetOrderQueryHandler(suite.db).Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Equal(order.Pending, view.Status)
	suite.Nil(view.Shipment)
	suite.Empty(view.TrackingEvents)
}

func (suite *QueriesIntegrationTestSuite) TestGetOrder_UnknownOrder_ReturnsNotFound() {
	query, err := queries.NewGetOrderQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = queries.NewGetOrderQueryHandler(suite.db).Handle(context.Background(), query)

	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueriesIntegrationTestSuite) TestListReconciliationIssues_HidesResolvedByDefault() {
	ctx := context.Background()
	repo := suite.factory.Create().ReconciliationRepository()

	open, err := order.NewReconciliationIssue(kernel.NewUUID(), order.StageCancelled, "remote cancel failed",
		time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)
	resolved, err := order.NewReconciliationIssue(kernel.NewUUID(), order.StageInTransit, "provider cancelled",
		time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)
	resolved.Resolve()
	suite.Require().NoError(repo.Add(ctx, open))
	suite.Require().NoError(repo.Add(ctx, resolved))

	handler := queries.NewListReconciliationIssuesQueryHandler(suite.db)

	issues, err := handler.Handle(ctx, queries.NewListReconciliationIssuesQuery(false))
	suite.Require().NoError(err)
	suite.Require().Len(issues, 1)
	suite.True(open.ID().IsEqual(issues[0].ID))
	suite.Equal("remote cancel failed", issues[0].Detail)

	all, err := handler.Handle(ctx, queries.NewListReconciliationIssuesQuery(true))
	suite.Require().NoError(err)
	suite.Require().Len(all, 2)
	suite.True(resolved.ID().IsEqual(all[0].ID), "newest first")
	suite.True(all[0].Resolved)
}

func (suite *QueriesIntegrationTestSuite) TestListCouriers_UsesStoredServiceabilityInputs() {
	o := suite.addOrder(order.StageShipmentCreated, time.Time{})

	gateway := new(stubGateway)
	gateway.On("ListCouriers", mock.Anything, mock.MatchedBy(func(q ports.ServiceabilityQuery) bool {
		return q.ProviderOrderID == "PO-1" && q.DeliveryPostcode == "560001" &&
			q.WeightKg.Equal(decimal.RequireFromString("0.5")) && !q.COD
	})).Return([]courier.Quote{
		quote(suite.T(), 3, "Express", "150.00", 1, true),
		quote(suite.T(), 4, "Surface", "70.00", 5, true),
	}, nil).Once()

	query, err := queries.NewListCouriersQuery(o.ID())
	suite.Require().NoError(err)
	ranked, err := queries.NewListCouriersQueryHandler(suite.db, gateway, services.NewCourierSelector()).
		Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(ranked, 2)
	suite.Equal(4, ranked[0].CourierID)
	suite.True(ranked[0].Recommended)
	gateway.AssertExpectations(suite.T())
}

func (suite *QueriesIntegrationTestSuite) TestListCouriers_UnregisteredOrder_IsValidationError() {
	o := suite.addOrder(order.StageAccepted, time.Time{})
	gateway := new(stubGateway)

	query, err := queries.NewListCouriersQuery(o.ID())
	suite.Require().NoError(err)
	_, err = queries.NewListCouriersQueryHandler(suite.db, gateway, services.NewCourierSelector()).
		Handle(context.Background(), query)

	suite.Equal(errs.KindValidation, errs.KindOf(err))
	gateway.AssertNotCalled(suite.T(), "ListCouriers", mock.Anything, mock.Anything)
}

// addOrder stores an order advanced to stage. A non-zero lastSync applies a
// neutral tracking scan at that time.
func (suite *QueriesIntegrationTestSuite) addOrder(stage order.Stage, lastSync time.Time) *order.Order {
	addr, err := kernel.NewAddress(kernel.AddressParams{
		Line1: "12 MG Road", City: "Bengaluru", State: "Karnataka", Postcode: "560001",
	})
	suite.Require().NoError(err)
	customer, err := order.NewCustomer("Asha Rao", "asha@example.com", "9999999999", addr)
	suite.Require().NoError(err)
	value, err := kernel.MoneyFromString("1499.00")
	suite.Require().NoError(err)
	parcel, err := order.NewParcel(decimal.RequireFromString("0.5"), decimal.NewFromInt(10),
		decimal.NewFromInt(10), decimal.NewFromInt(5), value)
	suite.Require().NoError(err)

	o, err := order.NewOrder(kernel.NewUUID(), customer, parcel, order.PaymentPaid)
	suite.Require().NoError(err)

	courierAssignment, err := order.NewCourierAssignment(7, "Delhivery Surface", 4, kernel.ZeroMoney, kernel.ZeroMoney)
	suite.Require().NoError(err)
	pickup, err := order.NewPickup(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), "PU-1")
	suite.Require().NoError(err)

	steps := []func() error{
		o.Accept,
		func() error { return o.Register("PO-1") },
		func() error { return o.AttachShipment("SH-1", "") },
		func() error { return o.AssignAWB("AWB-1", &courierAssignment) },
		func() error { return o.SchedulePickup(pickup) },
		o.MarkInTransit,
		o.MarkDelivered,
	}
	for _, step := range steps {
		if o.Stage() == stage {
			break
		}
		suite.Require().NoError(step())
	}
	suite.Require().Equal(stage, o.Stage())

	if !lastSync.IsZero() {
		scan, scanErr := order.NewTrackingEvent(lastSync, "Manifest updated", "Pune")
		suite.Require().NoError(scanErr)
		_, err = o.ApplyTracking([]order.TrackingEvent{scan})
		suite.Require().NoError(err)
	}

	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(context.Background(), o))
	return o
}

func TestQueriesIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(QueriesIntegrationTestSuite))
}
