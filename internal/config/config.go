package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	TracingEnabled     bool
	OtlpEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	Groq   string
	OpenAI string
}

type AIConfig struct {
	EmbeddingProvider   string // "ollama" or "openai"
	EmbeddingBaseURL    string
	EmbeddingModel      string
	EmbeddingDimensions int
	EmbeddingTimeout    time.Duration
	EmbeddingCacheSize  int
	EmbeddingCacheTTL   time.Duration
	EmbeddingRateLimit  float64 // requests per second, 0 disables
	EmbeddingMaxChars   int

	LLMProvider       string // "groq", "openai", "eino", "ollama"
	LLMBaseURL        string
	LLMModel          string
	Temperature       float64
	TopP              float64
	MaxTokens         int
	CompletionTimeout time.Duration
}

type RagConfig struct {
	SimilarityThreshold float64
	OverrideThreshold   float64
	DisplayLimit        int
	OverFetchFactor     int
	RetrievalTimeout    time.Duration
	SearchDirective     string
	IndexOnStartup      bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
			TracingEnabled:     getEnvAsBool("OTEL_ENABLED", false),
			OtlpEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			Groq:   getEnv("GROQ_API_KEY", ""),
			OpenAI: getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingBaseURL:    getEnv("EMBEDDING_BASE_URL", "http://localhost:11434"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", "all-minilm"),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 384),
			EmbeddingTimeout:    getEnvAsDuration("EMBEDDING_TIMEOUT", 30*time.Second),
			EmbeddingCacheSize:  getEnvAsInt("EMBEDDING_CACHE_SIZE", 128),
			EmbeddingCacheTTL:   getEnvAsDuration("EMBEDDING_CACHE_TTL", 24*time.Hour),
			EmbeddingRateLimit:  getEnvAsFloat("EMBEDDING_RATE_LIMIT", 0),
			EmbeddingMaxChars:   getEnvAsInt("EMBEDDING_MAX_CHARS", 1000),

			LLMProvider:       strings.ToLower(getEnv("LLM_PROVIDER", "groq")),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMModel:          getEnv("LLM_MODEL", "openai/gpt-oss-20b"),
			Temperature:       getEnvAsFloat("LLM_TEMPERATURE", 1),
			TopP:              getEnvAsFloat("LLM_TOP_P", 1),
			MaxTokens:         getEnvAsInt("LLM_MAX_TOKENS", 8192),
			CompletionTimeout: getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		},
		Rag: RagConfig{
			SimilarityThreshold: getEnvAsFloat("RAG_SIMILARITY_THRESHOLD", 0.40),
			OverrideThreshold:   getEnvAsFloat("RAG_OVERRIDE_THRESHOLD", 0.60),
			DisplayLimit:        getEnvAsInt("RAG_DISPLAY_LIMIT", 5),
			OverFetchFactor:     getEnvAsInt("RAG_OVERFETCH_FACTOR", 2),
			RetrievalTimeout:    getEnvAsDuration("RAG_RETRIEVAL_TIMEOUT", 10*time.Second),
			SearchDirective:     getEnv("RAG_SEARCH_DIRECTIVE", "/gambar"),
			IndexOnStartup:      getEnvAsBool("RAG_INDEX_ON_STARTUP", false),
		},
	}
}

// LLMAPIKey returns the credential for the configured completion provider.
func (c *Config) LLMAPIKey() string {
	switch c.Ai.LLMProvider {
	case "openai":
		return c.Keys.OpenAI
	case "ollama":
		return ""
	default:
		return c.Keys.Groq
	}
}

// ChatEnabled is false when the completion provider needs a key that is not set.
func (c *Config) ChatEnabled() bool {
	if c.Ai.LLMProvider == "ollama" {
		return true
	}
	return strings.TrimSpace(c.LLMAPIKey()) != ""
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
