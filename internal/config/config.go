package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Search   SearchConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	OpenAIAPIKey     string
	EconomyModel     string
	DeepModel        string
	QuickTimeout     time.Duration
	StandardTimeout  time.Duration
	DeepTimeout      time.Duration
	MaxRetryAttempts int
}

type SearchConfig struct {
	TavilyAPIKey string
	Timeout      time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("PORT", "3001"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.json"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DATABASE_URL", ""),
		},
		Ai: AIConfig{
			OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
			EconomyModel:     getEnv("OPENAI_ECONOMY_MODEL", "gpt-4o-mini"),
			DeepModel:        getEnv("OPENAI_DEEP_MODEL", "gpt-4o"),
			QuickTimeout:     getEnvAsSeconds("LLM_QUICK_TIMEOUT_SECONDS", 30*time.Second),
			StandardTimeout:  getEnvAsSeconds("LLM_STANDARD_TIMEOUT_SECONDS", 45*time.Second),
			DeepTimeout:      getEnvAsSeconds("LLM_DEEP_TIMEOUT_SECONDS", 60*time.Second),
			MaxRetryAttempts: getEnvAsInt("LLM_MAX_RETRY_ATTEMPTS", 3),
		},
		Search: SearchConfig{
			TavilyAPIKey: getEnv("TAVILY_API_KEY", ""),
			Timeout:      getEnvAsSeconds("SEARCH_TIMEOUT_SECONDS", 15*time.Second),
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

func getEnvAsSeconds(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(value) * time.Second
	}
	return fallback
}
