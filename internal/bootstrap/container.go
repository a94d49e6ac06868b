package bootstrap

import (
	"context"
	"log"
	"time"

	"portfolio-intro-be/internal/config"
	"portfolio-intro-be/internal/controller"
	"portfolio-intro-be/internal/pkg/logger"
	"portfolio-intro-be/internal/repository/unitofwork"
	"portfolio-intro-be/internal/service"
	"portfolio-intro-be/pkg/background"
	"portfolio-intro-be/pkg/cache"
	"portfolio-intro-be/pkg/embedding"
	"portfolio-intro-be/pkg/intro"
	"portfolio-intro-be/pkg/llm/factory"
	"portfolio-intro-be/pkg/ratelimit"

	pktNats "portfolio-intro-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	IntroController controller.IIntroController

	// Background services (exposed for main.go to run and drain)
	ConsumerService service.IConsumerService
	Registry        *background.Registry
	PubSub          *gochannel.GoChannel
	Logger          logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Redis-backed cache + limiter, in-memory fallbacks when unreachable.
	// Losing redis degrades latency and makes the rate limit per-process; it
	// never takes the service down.
	cacheTTL := time.Duration(cfg.Intro.CacheTTLSeconds) * time.Second
	limitWindow := time.Duration(cfg.Intro.RateLimitWindowSeconds) * time.Second

	var fastCache cache.Cache
	var limiter ratelimit.Limiter

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory cache and limiter", err)
		fastCache = cache.NewMemoryCache(cacheTTL)
		limiter = ratelimit.NewMemoryLimiter(cfg.Intro.RateLimitMax, limitWindow)
	} else {
		fastCache = cache.NewRedisCache(rdb)
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.Intro.RateLimitMax, limitWindow)
	}

	// 4. AI collaborators
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(
			cfg.Keys.OpenAI,
			cfg.Ai.EmbeddingModel,
			cfg.Ai.EmbeddingDimensions,
		)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	promptBuilder, err := intro.NewPromptBuilder(cfg.Ai.OwnerName, cfg.Ai.ContextFilePath)
	if err != nil {
		log.Printf("[WARN] Owner context unavailable: %v. Generating without it", err)
	}

	// 5. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	registry := background.NewRegistry(sysLogger)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Intro.CommitTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Intro.CommitTopic,
		uowFactory,
		embeddingProvider,
		fastCache,
		natsPub,
		sysLogger,
		cacheTTL,
	)

	introService := service.NewIntroService(
		uowFactory,
		fastCache,
		limiter,
		embeddingProvider,
		llmProvider,
		promptBuilder,
		publisherService,
		registry,
		sysLogger,
		service.IntroServiceConfig{
			SimilarityThreshold: cfg.Intro.SimilarityThreshold,
			CacheTTL:            cacheTTL,
			RateLimitKey:        cfg.Intro.RateLimitKey,
			RateLimitPerCaller:  cfg.Intro.RateLimitPerCaller,
		},
	)

	// 7. Controllers
	return &Container{
		IntroController: controller.NewIntroController(introService),

		ConsumerService: consumerService,
		Registry:        registry,
		PubSub:          pubSub,
		Logger:          sysLogger,
	}
}
