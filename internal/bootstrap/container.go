package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"

	"rag-chat-be/internal/config"
	"rag-chat-be/internal/controller"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/service"
	"rag-chat-be/pkg/database"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/extract"
	"rag-chat-be/pkg/history"
	"rag-chat-be/pkg/index"
	pgvectorstore "rag-chat-be/pkg/index/pgvector"
	"rag-chat-be/pkg/index/qdrantstore"
	"rag-chat-be/pkg/index/schema"
	"rag-chat-be/pkg/llm/factory"
	"rag-chat-be/pkg/rag"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	RetrieveController controller.IRetrieveController
	UploadController   controller.IUploadController

	// Background Services (Exposed for main.go to run)
	ChatService            service.IChatService
	MetricsConsumerService service.IMetricsConsumerService

	Logger logger.ILogger
}

// defaultIndexFields is the fixed metadata schema every stored chunk is
// normalized against. It mirrors what the PDF extractor produces.
func defaultIndexFields() []schema.Field {
	return []schema.Field{
		{Name: "source", Kind: schema.KindString},
		{Name: "title", Kind: schema.KindString},
		{Name: "author", Kind: schema.KindString},
		{Name: "subject", Kind: schema.KindString},
		{Name: "creationDate", Kind: schema.KindString},
		{Name: "modDate", Kind: schema.KindString},
		{Name: "pages", Kind: schema.KindInt},
		{Name: "encrypted", Kind: schema.KindBool},
	}
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	redisOpts, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Fatalf("[FATAL] Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	publisherService := service.NewPublisherService(pubSub)

	// 3. Vector Index
	var vectorIndex index.VectorIndex
	switch cfg.Vector.Driver {
	case "qdrant":
		vectorIndex, err = qdrantstore.New(context.Background(), qdrantstore.Config{
			URL:        cfg.Vector.QdrantURL,
			Collection: cfg.Vector.Collection,
			APIKey:     cfg.Vector.QdrantKey,
			Dims:       cfg.Vector.Dims,
			Fields:     defaultIndexFields(),
		})
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize qdrant index: %v", err)
		}
		log.Printf("[INFO] Using Vector Index: QDRANT (%s)", cfg.Vector.Collection)
	default:
		gormDB, err := database.NewGormDBFromDSN(cfg.Vector.PostgresDSN)
		if err != nil {
			log.Fatalf("[FATAL] Unable to connect to GORM DB: %v", err)
		}
		vectorIndex, err = pgvectorstore.New(gormDB, defaultIndexFields(), cfg.Vector.Dims)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize pgvector index: %v", err)
		}
		log.Printf("[INFO] Using Vector Index: PGVECTOR")
	}

	// 4. AI Providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "openai" {
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Ai.OpenAIAPIKey, cfg.Ai.OpenAIEmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbeddingModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	responder := rag.NewResponder(
		embeddingProvider,
		vectorIndex,
		llmProvider,
		cfg.Chat.ContextK,
		cfg.Chat.MaxSources,
	)

	// 5. Services
	historyStore := history.NewStore(redisClient, time.Duration(cfg.Chat.HistoryTTLSeconds)*time.Second)

	chatService := service.NewChatService(historyStore, responder, publisherService, sysLogger, service.ChatOptions{
		QueueSize:         cfg.Chat.QueueSize,
		Workers:           cfg.Chat.Workers,
		HistoryCharBudget: cfg.Chat.HistoryCharBudget,
		SystemPrompt:      cfg.Chat.SystemPrompt,
		CompletedTopic:    cfg.App.ChatCompletedTopic,
	})

	retrievalService := service.NewRetrievalService(embeddingProvider, vectorIndex, sysLogger, service.RetrievalOptions{
		UniqueK:   cfg.Retrieval.UniqueK,
		Overfetch: cfg.Retrieval.Overfetch,
		CacheTTL:  time.Duration(cfg.Retrieval.CacheTTLSeconds) * time.Second,
	})

	ingestionService := service.NewIngestionService(
		vectorIndex,
		embeddingProvider,
		extract.NewPDFToTextExtractor(),
		publisherService,
		sysLogger,
		service.IngestionOptions{
			UploadDir:    cfg.Upload.UploadDir,
			DataDir:      cfg.Upload.DataDir,
			ChunkSize:    cfg.Upload.ChunkSize,
			ChunkOverlap: cfg.Upload.ChunkOverlap,
			IndexedTopic: cfg.App.DocumentIndexedTopic,
		},
	)

	metricsConsumer := service.NewMetricsConsumerService(
		pubSub,
		redisClient,
		sysLogger,
		cfg.App.ChatCompletedTopic,
		cfg.App.DocumentIndexedTopic,
	)

	// 6. Controllers
	return &Container{
		ChatController:         controller.NewChatController(chatService),
		RetrieveController:     controller.NewRetrieveController(retrievalService),
		UploadController:       controller.NewUploadController(ingestionService, cfg.Upload.MaxMB),
		ChatService:            chatService,
		MetricsConsumerService: metricsConsumer,
		Logger:                 sysLogger,
	}
}
