package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	JWTSecret          string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	DefaultProvider string // "gemini", "lily" or "gradio"
	GeminiAPIKey    string
	GeminiAPIBase   string
	GeminiModel     string
	LilyAPIURL      string
	GradioAPIURL    string
	ProviderTimeout time.Duration
	ImageTimeout    time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("BASE_URL", "http://localhost:8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			DefaultProvider: getEnv("AI_PROVIDER", "gemini"),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			GeminiAPIBase:   getEnv("GEMINI_API_BASE", "https://generativelanguage.googleapis.com"),
			GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			LilyAPIURL:      getEnv("LILY_API_URL", "http://localhost:8001"),
			GradioAPIURL:    getEnv("GRADIO_API_URL", ""),
			ProviderTimeout: getEnvAsDuration("AI_PROVIDER_TIMEOUT", 20*time.Minute),
			ImageTimeout:    getEnvAsDuration("AI_IMAGE_FETCH_TIMEOUT", 2*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
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
