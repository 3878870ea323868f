package bootstrap

import (
	"context"
	"errors"
	"log"
	"time"

	"tigaraksa-chat-be/internal/config"
	"tigaraksa-chat-be/internal/controller"
	"tigaraksa-chat-be/internal/pkg/logger"
	"tigaraksa-chat-be/internal/repository/implementation"
	"tigaraksa-chat-be/internal/service"
	"tigaraksa-chat-be/internal/websocket"
	"tigaraksa-chat-be/pkg/embedding"
	"tigaraksa-chat-be/pkg/llm"
	"tigaraksa-chat-be/pkg/llm/factory"
	pktNats "tigaraksa-chat-be/pkg/nats"
	"tigaraksa-chat-be/pkg/rag/pipeline"
	"tigaraksa-chat-be/pkg/rag/relevance"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController  controller.IChatController
	ImageController controller.IImageController

	// WebSockets
	ChatSocketHandler fiber.Handler
	WebSocketHub      *websocket.Hub

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	ImageService    service.IImageService

	Logger       logger.ILogger
	SocketLogger logger.ILogger
	Publisher    pktNats.EventPublisher
	closers      []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	imageRepo := implementation.NewImageRepository(db)

	var closers []func()

	// 2. Event Bus (in-process indexing queue)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	closers = append(closers, func() { _ = pubSub.Close() })

	// 3. Shared embedding cache (optional)
	var shared embedding.VectorCache
	if cfg.App.RedisURL != "" {
		if rdb := connectRedis(cfg.App.RedisURL); rdb != nil {
			shared = embedding.NewRedisCache(rdb, cfg.Ai.EmbeddingCacheTTL)
			closers = append(closers, func() { _ = rdb.Close() })
		}
	}

	// 4. AI providers
	queryEmbedder, err := embedding.NewCachedEmbedder(NewEmbedder(cfg), embedding.CacheConfig{
		Size:        cfg.Ai.EmbeddingCacheSize,
		MaxRunes:    cfg.Ai.EmbeddingMaxChars,
		RateLimit:   cfg.Ai.EmbeddingRateLimit,
		Burst:       1,
		LoadTimeout: cfg.Ai.EmbeddingTimeout,
	}, shared)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize embedding cache: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, queryEmbedder.Model())

	completion, err := factory.NewStreamingProvider(context.Background(), factory.ProviderConfig{
		Type:      cfg.Ai.LLMProvider,
		ModelName: cfg.Ai.LLMModel,
		BaseURL:   cfg.Ai.LLMBaseURL,
		APIKey:    cfg.LLMAPIKey(),
		Timeout:   cfg.Ai.CompletionTimeout,
	})
	chatEnabled := err == nil && cfg.ChatEnabled()
	switch {
	case errors.Is(err, llm.ErrMissingCredential):
		log.Printf("[WARN] Chat disabled: no API key for LLM provider %q", cfg.Ai.LLMProvider)
	case err != nil:
		log.Printf("[WARN] Chat disabled: failed to initialize LLM provider: %v", err)
	default:
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	// 5. Event publisher (NATS if reachable)
	var events pktNats.EventPublisher = pktNats.NoopPublisher{}
	if natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL); err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v (turn events disabled)", err)
	} else {
		events = natsPub
	}

	// 6. Pipeline + services
	engine := pipeline.NewEngine(queryEmbedder, imageRepo, completion, pipeline.Config{
		SearchDirective: cfg.Rag.SearchDirective,
		Relevance: relevance.Config{
			Threshold:         cfg.Rag.SimilarityThreshold,
			OverrideThreshold: cfg.Rag.OverrideThreshold,
			DisplayLimit:      cfg.Rag.DisplayLimit,
			OverFetchFactor:   cfg.Rag.OverFetchFactor,
		},
		RetrievalTimeout:  cfg.Rag.RetrievalTimeout,
		CompletionTimeout: cfg.Ai.CompletionTimeout,
		Temperature:       cfg.Ai.Temperature,
		TopP:              cfg.Ai.TopP,
		MaxTokens:         cfg.Ai.MaxTokens,
	}, sysLogger)

	publisherService := service.NewPublisherService(service.IndexImageTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		service.IndexImageTopic,
		imageRepo,
		queryEmbedder.Uncached(),
		sysLogger,
	)

	chatService := service.NewChatService(engine, events, chatEnabled, sysLogger)
	imageService := service.NewImageService(imageRepo, publisherService, sysLogger)

	// 7. WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/chat_socket.log")
	wsHub := websocket.NewHub(wsLogger)
	go wsHub.Run()

	return &Container{
		ChatController:    controller.NewChatController(chatService, sysLogger),
		ImageController:   controller.NewImageController(imageService, chatService, wsHub, sysLogger),
		ChatSocketHandler: websocket.ChatHandler(wsHub, chatService, wsLogger),
		WebSocketHub:      wsHub,

		ConsumerService: consumerService,
		ImageService:    imageService,

		Logger:       sysLogger,
		SocketLogger: wsLogger,
		Publisher:    events,
		closers:      closers,
	}
}

// Close releases connections opened by NewContainer.
func (c *Container) Close() {
	c.WebSocketHub.Shutdown()
	c.Publisher.Close()
	for _, closeFn := range c.closers {
		closeFn()
	}
	if c.SocketLogger != nil {
		_ = c.SocketLogger.Sync()
	}
	_ = c.Logger.Sync()
}

// NewEmbedder builds the configured embedding backend without caching.
func NewEmbedder(cfg *config.Config) embedding.Embedder {
	switch cfg.Ai.EmbeddingProvider {
	case "openai":
		return embedding.NewOpenAIProvider(embedding.OpenAIConfig{
			APIKey:     cfg.Keys.OpenAI,
			BaseURL:    cfg.Ai.EmbeddingBaseURL,
			Model:      cfg.Ai.EmbeddingModel,
			Dimensions: cfg.Ai.EmbeddingDimensions,
			Timeout:    cfg.Ai.EmbeddingTimeout,
		})
	default:
		return embedding.NewOllamaProvider(cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingTimeout)
	}
}

func connectRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (shared embedding cache disabled)", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}
