package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	GinMode              string
	MongoURI             string
	MongoDatabase        string
	RabbitMQURI          string
	RabbitMQExchange     string
	LLMAPIKey            string
	LLMBaseURL           string
	ScoringModel         string
	TipsModel            string
	DocsModel            string
	ChatModel            string
	YouTubeAPIKey        string
	JWTSecret            string
	SessionRetentionDays int
	CleanupIntervalHours int
	ServiceName          string
	ServiceVersion       string
}

var AppConfig *Config

func LoadConfig() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		GinMode:              getEnvOrDefault("GIN_MODE", "debug"),
		MongoURI:             getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:        getEnvOrDefault("MONGO_DATABASE", "design_practice"),
		RabbitMQURI:          getEnvOrDefault("RABBITMQ_URI", ""),
		RabbitMQExchange:     getEnvOrDefault("RABBITMQ_EXCHANGE", ""),
		LLMAPIKey:            getEnvOrDefault("OPENAI_API_KEY", ""),
		LLMBaseURL:           getEnvOrDefault("OPENAI_BASE_URL", ""),
		ScoringModel:         getEnvOrDefault("SCORING_MODEL", "gpt-4"),
		TipsModel:            getEnvOrDefault("TIPS_MODEL", "gpt-4"),
		DocsModel:            getEnvOrDefault("DOCS_MODEL", "gpt-4o-mini"),
		ChatModel:            getEnvOrDefault("CHAT_MODEL", "gpt-4"),
		YouTubeAPIKey:        getEnvOrDefault("YOUTUBE_API_KEY", ""),
		JWTSecret:            getEnvOrDefault("JWT_SECRET", "your-jwt-secret-key"),
		SessionRetentionDays: getEnvIntOrDefault("SESSION_RETENTION_DAYS", 7),
		CleanupIntervalHours: getEnvIntOrDefault("CLEANUP_INTERVAL_HOURS", 12),
		ServiceName:          getEnvOrDefault("SERVICE_NAME", "design-practice-service"),
		ServiceVersion:       getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}
