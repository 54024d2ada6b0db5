package bootstrap

import (
	"context"
	"log"

	"ai-studygen-be/internal/config"
	"ai-studygen-be/internal/controller"
	"ai-studygen-be/internal/handler"
	"ai-studygen-be/internal/pkg/logger"
	"ai-studygen-be/internal/repository/cache"
	"ai-studygen-be/internal/repository/memory"
	"ai-studygen-be/internal/repository/unitofwork"
	"ai-studygen-be/internal/service"
	"ai-studygen-be/internal/websocket"
	"ai-studygen-be/pkg/generator"
	"ai-studygen-be/pkg/llm/factory"

	pktNats "ai-studygen-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const generationTopic = "GENERATE_ARTIFACT"

type Container struct {
	// Controllers
	GenerationController controller.IGenerationController
	SourceController     controller.ISourceController

	// Background Services (Exposed for main.go to run)
	WorkerService service.IWorkerService

	// WebSockets
	JobEventHandler *handler.JobEventHandler
	WebSocketHub    *websocket.Hub

	// Facades main.go flushes on shutdown
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.HuggingFaceAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	artifactGenerator := generator.NewGenerator(llmProvider)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil // Cache layers treat a nil client as a pass-through
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/jobpush.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	hotCache := memory.NewArtifactCache(cfg.Cache.ArtifactTTL)
	sharedCache := cache.NewRedisArtifactCache(rdb, cfg.Cache.ArtifactTTL)

	publisherService := service.NewPublisherService(pubSub, generationTopic)
	cacheService := service.NewCacheService(uowFactory, hotCache, sharedCache)
	generationService := service.NewGenerationService(uowFactory, publisherService, natsPub)
	sourceService := service.NewSourceService(uowFactory)

	workerService := service.NewWorkerService(
		pubSub,
		generationTopic,
		cfg.Worker.Concurrency,
		uowFactory,
		artifactGenerator,
		cacheService,
		natsPub,
	)

	// Bridge job events onto users' sockets
	jobEventHandler := handler.NewJobEventHandler(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		jobEventHandler.StartEventBridge()
	}

	// 4. Controllers
	return &Container{
		GenerationController: controller.NewGenerationController(generationService, cacheService),
		SourceController:     controller.NewSourceController(sourceService),

		WorkerService: workerService,

		JobEventHandler: jobEventHandler,
		WebSocketHub:    wsHub,

		Logger: sysLogger,
	}
}
