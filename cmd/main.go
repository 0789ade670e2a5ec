package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/jonboulle/clockwork"

	"github.com/devmeet/devmeet/internal/domain"
	"github.com/devmeet/devmeet/internal/infrastructure/configs"
	"github.com/devmeet/devmeet/internal/infrastructure/events"
	"github.com/devmeet/devmeet/internal/infrastructure/logging"
	"github.com/devmeet/devmeet/internal/infrastructure/messaging"
	"github.com/devmeet/devmeet/internal/infrastructure/profanity"
	"github.com/devmeet/devmeet/internal/infrastructure/ratelimiter"
	"github.com/devmeet/devmeet/internal/infrastructure/tracing"
	"github.com/devmeet/devmeet/internal/infrastructure/ws"
	"github.com/devmeet/devmeet/internal/persistence/db"
	"github.com/devmeet/devmeet/internal/presentation/api"
	"github.com/devmeet/devmeet/internal/presentation/handler/health"
	"github.com/devmeet/devmeet/internal/presentation/handler/rooms"
	runhandler "github.com/devmeet/devmeet/internal/presentation/handler/run"
	"github.com/devmeet/devmeet/internal/runner"

	"github.com/devmeet/devmeet/internal/persistence/repository"
)

const (
	serviceName = "devmeet-api"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := logging.NewLogger(logging.NewDefaultConfig())
	logger.Init()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	var roomStore domain.RoomStore
	var auditRepository domain.RoomAuditRepository
	if cfg.Mongo.Enabled {
		mongoCfg := &db.MongoConfig{
			URI:               cfg.Mongo.URI,
			Database:          cfg.Mongo.Database,
			ConnectionTimeout: db.DefaultConnectionTimeout,
		}
		mongoClient, err := db.NewMongoClient(ctx, mongoCfg)
		if err != nil {
			log.Fatal(err)
		}
		defer db.DisconnectMongo(ctx, mongoClient)

		database := db.GetDatabase(mongoClient, mongoCfg)
		roomRepository := repository.NewRoomRepository(database)
		if err := roomRepository.EnsureIndexes(ctx); err != nil {
			logger.Errorf("failed to ensure room indexes: %v", err)
		}
		roomStore = roomRepository

		auditRepository = repository.NewRoomAuditLogRepository(database)
		if err := auditRepository.EnsureIndexes(ctx); err != nil {
			logger.Errorf("failed to ensure audit log indexes: %v", err)
		}
	} else {
		roomStore = repository.NewInMemoryRoomStore()
	}

	var roomPublisher *events.RoomPublisher
	var gatewayPublisher ws.RoomEventPublisher
	if cfg.RabbitMQ.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.RabbitMQ.URI)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		log.Println("Starting RabbitMQ connection")

		roomPublisher = events.NewRoomPublisher(rabbitmq)
		gatewayPublisher = roomPublisher

		// The audit trail needs somewhere durable to land; without Mongo
		// the consumer is not started and events stay on the queue.
		if auditRepository != nil {
			roomConsumer := events.NewRoomConsumer(rabbitmq, auditRepository, logger)
			if err := roomConsumer.Listen(); err != nil {
				log.Fatal(err)
			}
		}
	}

	var filter *profanity.Filter
	if cfg.Chat.ProfanityFilter {
		filter = profanity.NewFilter()
	}

	gateway := ws.NewGateway(ws.Options{
		Store:        roomStore,
		Publisher:    gatewayPublisher,
		Filter:       filter,
		Clock:        clockwork.NewRealClock(),
		ResetSeconds: cfg.Timer.DefaultSeconds,
		Logger:       logger,
	})

	runnerService := runner.NewService(cfg.Runner, logger)

	var createdPublisher interface {
		PublishRoomCreated(ctx context.Context, roomID string) error
	}
	if roomPublisher != nil {
		createdPublisher = roomPublisher
	} else {
		createdPublisher = events.NoopPublisher{}
	}

	roomHandler := rooms.NewHandler(roomStore, createdPublisher, logger)
	runHandler := runhandler.NewHandler(runnerService, logger)
	healthHandler := health.NewHandler()

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})
	app := api.NewApplication(*cfg, roomHandler, runHandler, healthHandler, gateway, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}
