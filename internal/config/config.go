package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Vector    VectorConfig
	Ai        AIConfig
	Chat      ChatConfig
	Retrieval RetrievalConfig
	Upload    UploadConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string
	// Topics for the in-process event bus.
	ChatCompletedTopic   string
	DocumentIndexedTopic string
}

type VectorConfig struct {
	Driver      string // "pgvector" or "qdrant"
	PostgresDSN string
	QdrantURL   string
	QdrantKey   string
	Collection  string
	Dims        int
}

type AIConfig struct {
	EmbeddingProvider    string // "ollama" or "openai"
	OllamaBaseURL        string
	OllamaEmbeddingModel string
	LLMProvider          string // "ollama" or "openai"
	LLMModel             string // e.g. "llama3", "qwen2.5"
	OpenAIAPIKey         string
	OpenAIEmbeddingModel string
}

type ChatConfig struct {
	QueueSize         int
	Workers           int
	HistoryTTLSeconds int // 0 disables expiry
	HistoryCharBudget int
	SystemPrompt      string
	ContextK          int
	MaxSources        int
}

type RetrievalConfig struct {
	UniqueK         int
	Overfetch       int
	CacheTTLSeconds int
}

type UploadConfig struct {
	MaxMB        int
	UploadDir    string
	DataDir      string
	ChunkSize    int
	ChunkOverlap int
}

const defaultSystemPrompt = "You are a highly helpful assistant, and your name is llama_chat. " +
	"Your answers will be concise and direct. If the provided context lacks relevant information, " +
	"you may answer without it."

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:                 getEnv("APP_PORT", "3000"),
			Environment:          getEnv("GO_ENV", "development"),
			LogFilePath:          getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379"),
			ChatCompletedTopic:   getEnv("CHAT_COMPLETED_TOPIC", "chat.completed"),
			DocumentIndexedTopic: getEnv("DOCUMENT_INDEXED_TOPIC", "document.indexed"),
		},
		Vector: VectorConfig{
			Driver:      getEnv("VECTOR_DRIVER", "pgvector"),
			PostgresDSN: getEnv("DB_CONNECTION_STRING", ""),
			QdrantURL:   getEnv("QDRANT_URL", "http://localhost:6334"),
			QdrantKey:   getEnv("QDRANT_API_KEY", ""),
			Collection:  getEnv("VECTOR_COLLECTION", "rag_chunks"),
			Dims:        getEnvAsInt("EMBEDDING_DIMS", 768),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:          getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:             getEnv("LLM_MODEL", "llama3"),
			OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
			OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", ""),
		},
		Chat: ChatConfig{
			QueueSize:         getEnvAsInt("CHAT_QUEUE_SIZE", 64),
			Workers:           getEnvAsInt("CHAT_WORKERS", 1),
			HistoryTTLSeconds: getEnvAsInt("CHAT_HISTORY_TTL_SECONDS", 0),
			HistoryCharBudget: getEnvAsInt("CHAT_HISTORY_CHAR_BUDGET", 4000),
			SystemPrompt:      getEnv("CHAT_SYSTEM_PROMPT", defaultSystemPrompt),
			ContextK:          getEnvAsInt("CHAT_CONTEXT_K", 2),
			MaxSources:        getEnvAsInt("CHAT_MAX_SOURCES", 5),
		},
		Retrieval: RetrievalConfig{
			UniqueK:         getEnvAsInt("RETRIEVE_UNIQUE_K", 5),
			Overfetch:       getEnvAsInt("RETRIEVE_OVERFETCH", 5),
			CacheTTLSeconds: getEnvAsInt("RETRIEVE_CACHE_TTL_SECONDS", 60),
		},
		Upload: UploadConfig{
			MaxMB:        getEnvAsInt("UPLOAD_MAX_MB", 25),
			UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
			DataDir:      getEnv("DATA_DIR", "data"),
			ChunkSize:    getEnvAsInt("CHUNK_SIZE", 1200),
			ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 150),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
