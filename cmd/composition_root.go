package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apihttp "shipping/internal/adapters/in/http"
	"shipping/internal/adapters/out/kafka"
	"shipping/internal/adapters/out/logistics"
	"shipping/internal/adapters/out/postgres"
	redisstore "shipping/internal/adapters/out/redis"
	"shipping/internal/core/application/bulk"
	"shipping/internal/core/application/usecases/commands"
	"shipping/internal/core/application/usecases/queries"
	"shipping/internal/core/application/wallet"
	"shipping/internal/core/domain/services"
	"shipping/internal/core/ports"
	"shipping/internal/jobs"
	"shipping/internal/pkg/clock"
	"shipping/internal/pkg/keylock"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type eventPublisher interface {
	ports.EventPublisher
	Close() error
}

// CompositionRoot builds the object graph once per process and owns the
// connections it opened.
type CompositionRoot struct {
	cfg        Config
	logger     *slog.Logger
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	clock      clock.Clock
	selector   services.CourierSelector

	redis     *redis.Client
	publisher eventPublisher
	gateway   *logistics.Client
	lifecycle *commands.Lifecycle
	wallet    *wallet.Cache
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:        cfg,
		logger:     logger,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		clock:      clock.System(),
		selector:   services.NewCourierSelector(),
	}

	var tokens logistics.TokenStore = logistics.NewMemoryTokenStore(c.clock)
	if cfg.Redis.Address != "" {
		c.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		tokens = redisstore.NewTokenStore(c.redis, cfg.Redis.TokenKey)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		c.publisher = kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	} else {
		c.publisher = kafka.NewLogPublisher(logger)
	}

	location, err := time.LoadLocation(cfg.Logistics.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load provider time zone: %w", err)
	}
	retry := logistics.DefaultRetryPolicy()
	if cfg.Logistics.Attempts > 0 {
		retry.Attempts = cfg.Logistics.Attempts
	}
	c.gateway = logistics.NewClient(logistics.Config{
		BaseURL:  cfg.Logistics.BaseURL,
		Email:    cfg.Logistics.Email,
		Password: cfg.Logistics.Password,
		Timeout:  cfg.Logistics.Timeout,
		TokenTTL: cfg.Logistics.TokenTTL,
		Retry:    retry,
		Location: location,
	}, tokens, logger)

	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	c.lifecycle = commands.NewLifecycle(f, keylock.New(cfg.Lifecycle.LockWait), c.publisher, c.clock, logger)
	c.wallet = wallet.NewCache(c.gateway, cfg.Lifecycle.WalletTTL, c.clock, logger)
	return c, nil
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.lifecycle)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() commands.AcceptOrderCommandHandler {
	return commands.NewAcceptOrderCommandHandler(c.lifecycle)
}

func (c *CompositionRoot) CreateRejectOrderCommandHandler() commands.RejectOrderCommandHandler {
	return commands.NewRejectOrderCommandHandler(c.lifecycle)
}

func (c *CompositionRoot) CreateOverrideStatusCommandHandler() commands.OverrideStatusCommandHandler {
	return commands.NewOverrideStatusCommandHandler(c.lifecycle)
}

func (c *CompositionRoot) CreateRegisterOrderCommandHandler() commands.RegisterOrderCommandHandler {
	return commands.NewRegisterOrderCommandHandler(c.lifecycle, c.gateway)
}

func (c *CompositionRoot) CreateCreateShipmentCommandHandler() commands.CreateShipmentCommandHandler {
	return commands.NewCreateShipmentCommandHandler(c.lifecycle, c.gateway)
}

func (c *CompositionRoot) CreateGenerateAWBCommandHandler() commands.GenerateAWBCommandHandler {
	return commands.NewGenerateAWBCommandHandler(c.lifecycle, c.gateway, c.selector, c.cfg.Lifecycle.AutoSelectCourier)
}

func (c *CompositionRoot) CreateAssignCourierCommandHandler() commands.AssignCourierCommandHandler {
	return commands.NewAssignCourierCommandHandler(c.lifecycle, c.gateway)
}

func (c *CompositionRoot) CreateSchedulePickupCommandHandler() commands.SchedulePickupCommandHandler {
	return commands.NewSchedulePickupCommandHandler(c.lifecycle, c.gateway)
}

func (c *CompositionRoot) CreateFetchLabelCommandHandler() commands.FetchLabelCommandHandler {
	return commands.NewFetchLabelCommandHandler(c.lifecycle, c.gateway)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.lifecycle, c.gateway)
}

func (c *CompositionRoot) CreateRefreshTrackingCommandHandler() commands.RefreshTrackingCommandHandler {
	return commands.NewRefreshTrackingCommandHandler(c.lifecycle, c.gateway)
}

func (c *CompositionRoot) CreateResolveReconciliationIssueCommandHandler() commands.ResolveReconciliationIssueCommandHandler {
	return commands.NewResolveReconciliationIssueCommandHandler(c.lifecycle)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListCouriersQueryHandler() queries.ListCouriersQueryHandler {
	return queries.NewListCouriersQueryHandler(c.gormDB, c.gateway, c.selector)
}

func (c *CompositionRoot) CreateGetRatesQueryHandler() queries.GetRatesQueryHandler {
	return queries.NewGetRatesQueryHandler(c.gateway, c.selector)
}

func (c *CompositionRoot) CreateListReconciliationIssuesQueryHandler() queries.ListReconciliationIssuesQueryHandler {
	return queries.NewListReconciliationIssuesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOpenShipmentsQueryHandler() queries.GetOpenShipmentsQueryHandler {
	return queries.NewGetOpenShipmentsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateBulkCoordinator() *bulk.Coordinator {
	createShipment := c.CreateCreateShipmentCommandHandler()
	generateAWB := c.CreateGenerateAWBCommandHandler()
	fetchLabel := c.CreateFetchLabelCommandHandler()
	schedulePickup := c.CreateSchedulePickupCommandHandler()

	return bulk.NewCoordinator(bulk.Handlers{
		CreateShipment: &createShipment,
		GenerateAWB:    &generateAWB,
		FetchLabel:     &fetchLabel,
		SchedulePickup: &schedulePickup,
	}, c.cfg.Lifecycle.BulkMaxBatch, c.cfg.Lifecycle.BulkWorkers, c.logger)
}

// CreateHTTPServer wires every use case into the admin API.
func (c *CompositionRoot) CreateHTTPServer() *apihttp.Server {
	createOrder := c.CreateCreateOrderCommandHandler()
	acceptOrder := c.CreateAcceptOrderCommandHandler()
	rejectOrder := c.CreateRejectOrderCommandHandler()
	overrideStatus := c.CreateOverrideStatusCommandHandler()
	registerOrder := c.CreateRegisterOrderCommandHandler()
	createShipment := c.CreateCreateShipmentCommandHandler()
	generateAWB := c.CreateGenerateAWBCommandHandler()
	assignCourier := c.CreateAssignCourierCommandHandler()
	schedulePickup := c.CreateSchedulePickupCommandHandler()
	fetchLabel := c.CreateFetchLabelCommandHandler()
	cancelOrder := c.CreateCancelOrderCommandHandler()
	refreshTracking := c.CreateRefreshTrackingCommandHandler()
	resolveIssue := c.CreateResolveReconciliationIssueCommandHandler()

	return apihttp.NewServer(apihttp.Handlers{
		CreateOrder:     &createOrder,
		AcceptOrder:     &acceptOrder,
		RejectOrder:     &rejectOrder,
		OverrideStatus:  &overrideStatus,
		RegisterOrder:   &registerOrder,
		CreateShipment:  &createShipment,
		GenerateAWB:     &generateAWB,
		AssignCourier:   &assignCourier,
		SchedulePickup:  &schedulePickup,
		FetchLabel:      &fetchLabel,
		CancelOrder:     &cancelOrder,
		RefreshTracking: &refreshTracking,
		ResolveIssue:    &resolveIssue,

		GetOrder:     c.CreateGetOrderQueryHandler(),
		ListCouriers: c.CreateListCouriersQueryHandler(),
		GetRates:     c.CreateGetRatesQueryHandler(),
		ListIssues:   c.CreateListReconciliationIssuesQueryHandler(),

		Bulk:   c.CreateBulkCoordinator(),
		Wallet: c.wallet,
	})
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	refresh := c.CreateRefreshTrackingCommandHandler()
	poller := jobs.NewTrackingPollerJob(
		c.CreateGetOpenShipmentsQueryHandler(),
		&refresh,
		c.cfg.Jobs.TrackingPollWorkers,
		c.cfg.Jobs.TrackingPollBatch,
		c.logger,
	)
	return jobs.NewJobManager(
		jobs.NewCronScheduler(c.logger),
		poller,
		jobs.NewWalletRefreshJob(c.wallet, c.logger),
		jobs.Intervals{
			TrackingPoll:  c.cfg.Jobs.TrackingPollInterval,
			WalletRefresh: c.cfg.Jobs.WalletRefreshInterval,
		},
		c.logger,
	)
}

// Close releases the publisher and the Redis client.
func (c *CompositionRoot) Close(ctx context.Context) error {
	var err error
	if c.publisher != nil {
		err = errors.Join(err, c.publisher.Close())
	}
	if c.redis != nil {
		err = errors.Join(err, c.redis.Close())
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to release resources", "error", err)
	}
	return err
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
