package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	JWT       JWTConfig
	Provision ProvisionConfig
	Ai        AIConfig
}

type AppConfig struct {
	Port               string
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

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type ProvisionConfig struct {
	StorageRoot     string
	TopicName       string
	TypingStepMs    int
	ReplyDelayMinMs int
	ReplyDelayMaxMs int
}

type AIConfig struct {
	LLMProvider   string // "ollama" for now
	LLMModel      string // e.g. "llama3", "qwen2.5"
	OllamaBaseURL string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "AiChat"),
		},
		JWT: JWTConfig{
			Secret:      JWTSecret(),
			ExpiryHours: getEnvAsInt("JWT_EXPIRY_HOURS", 24),
		},
		Provision: ProvisionConfig{
			StorageRoot:     getEnv("TENANT_STORAGE_ROOT", "./storage/tenants"),
			TopicName:       getEnv("PROVISION_TENANT_TOPIC_NAME", "PROVISION_TENANT"),
			TypingStepMs:    getEnvAsInt("TYPING_STEP_MS", 35),
			ReplyDelayMinMs: getEnvAsInt("REPLY_DELAY_MIN_MS", 1000),
			ReplyDelayMaxMs: getEnvAsInt("REPLY_DELAY_MAX_MS", 2000),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:      getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
	}
}

const defaultJWTSecret = "change-me-in-production"

// JWTSecret is the one source of the token signing key. Login signs with
// it and every verifying middleware must read the same value, otherwise
// the service rejects its own tokens.
func JWTSecret() string {
	return getEnv("JWT_SECRET", defaultJWTSecret)
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
