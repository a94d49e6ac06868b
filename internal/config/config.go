package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Intro    IntroConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI string
}

type AIConfig struct {
	EmbeddingProvider   string // "openai" or "ollama"
	EmbeddingModel      string
	EmbeddingDimensions int // fixed at 1536, changing it invalidates the similarity index
	LLMProvider         string // "openai" or "ollama"
	LLMModel            string
	OllamaBaseURL       string
	OwnerName           string
	ContextFilePath     string
}

type IntroConfig struct {
	SimilarityThreshold    float64
	CacheTTLSeconds        int
	RateLimitKey           string
	RateLimitMax           int
	RateLimitWindowSeconds int
	RateLimitPerCaller     bool
	CommitTopic            string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI: getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
			LLMProvider:         getEnv("LLM_PROVIDER", "openai"),
			LLMModel:            getEnv("LLM_MODEL", "gpt-4o-mini"),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OwnerName:           getEnv("INTRO_OWNER_NAME", "the site owner"),
			ContextFilePath:     getEnv("INTRO_CONTEXT_FILE", "context.txt"),
		},
		Intro: IntroConfig{
			SimilarityThreshold:    getEnvAsFloat("INTRO_SIMILARITY_THRESHOLD", 0.5),
			CacheTTLSeconds:        getEnvAsInt("INTRO_CACHE_TTL_SECONDS", 86400),
			RateLimitKey:           getEnv("INTRO_RATE_LIMIT_KEY", "intro.create"),
			RateLimitMax:           getEnvAsInt("INTRO_RATE_LIMIT_MAX", 1),
			RateLimitWindowSeconds: getEnvAsInt("INTRO_RATE_LIMIT_WINDOW_SECONDS", 10),
			RateLimitPerCaller:     getEnvAsBool("INTRO_RATE_LIMIT_PER_CALLER", false),
			CommitTopic:            getEnv("INTRO_COMMIT_TOPIC_NAME", "COMMIT_INTRO"),
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
