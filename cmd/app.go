package cmd

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/storefront/services/orders/config"
	"example.com/storefront/services/orders/internal/cache"
	"example.com/storefront/services/orders/internal/clock"
	"example.com/storefront/services/orders/internal/commands"
	"example.com/storefront/services/orders/internal/database"
	"example.com/storefront/services/orders/internal/messaging"
	"example.com/storefront/services/orders/internal/models"
	"example.com/storefront/services/orders/internal/repositories"
	"example.com/storefront/services/orders/internal/search"
	"example.com/storefront/services/orders/internal/tracing"
	"example.com/storefront/services/orders/internal/uow"
)

// app holds the wired dependencies shared by the api and worker commands.
type app struct {
	cfg           config.Config
	db            *gorm.DB
	cache         *cache.RedisCache
	tracer        tracing.Tracer
	bus           messaging.ServiceBusClient
	factory       uow.Factory
	flusher       *uow.OutboxFlusher
	inventory     *repositories.InventoryRepository
	orders        *repositories.OrderRepository
	subscriptions *repositories.SubscriptionRepository
	eventLog      *repositories.EventLogRepository
	recurrence    *commands.RecurrenceProcessor
	clk           clock.Clock
	ids           clock.IDGenerator
}

// buildApp loads configuration and wires every dependency. Optional
// integrations degrade to disabled instead of failing startup.
func buildApp() (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := models.SetupModels(db); err != nil {
		return nil, err
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
		redisCache = nil
	}

	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		return nil, err
	}

	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without event indexing")
		elasticClient = nil
	}

	var bus messaging.ServiceBusClient
	if cfg.Azure.QueueConnStr != "" {
		bus, err = messaging.NewServiceBusClient(cfg.Azure)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Service Bus client, continuing without event publication")
			bus = nil
		}
	}

	clk := clock.NewSystem()
	ids := clock.NewUUIDGenerator()

	var indexer uow.EventIndexer
	if elasticClient != nil {
		indexer = elasticClient
	}
	var publisher uow.EventPublisher
	if bus != nil {
		publisher = bus
	}

	flusher := uow.NewOutboxFlusher(db, clk, indexer, publisher)
	factory := uow.NewFactory(db, flusher, ids)

	inventory := repositories.NewInventoryRepository(db)
	orders := repositories.NewOrderRepository(db)
	subscriptions := repositories.NewSubscriptionRepository(db)
	eventLog := repositories.NewEventLogRepository(db)

	recurrence := commands.NewRecurrenceProcessor(factory, inventory, orders, subscriptions, clk, ids)

	return &app{
		cfg:           cfg,
		db:            db,
		cache:         redisCache,
		tracer:        tracer,
		bus:           bus,
		factory:       factory,
		flusher:       flusher,
		inventory:     inventory,
		orders:        orders,
		subscriptions: subscriptions,
		eventLog:      eventLog,
		recurrence:    recurrence,
		clk:           clk,
		ids:           ids,
	}, nil
}

func (a *app) close() {
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			log.Warn().Err(err).Msg("Service Bus close failed")
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.Warn().Err(err).Msg("Redis close failed")
		}
	}
	if err := database.Close(a.db); err != nil {
		log.Warn().Err(err).Msg("Database close failed")
	}
}
