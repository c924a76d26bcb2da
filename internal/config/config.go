package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Queue / worker
	UseMemoryQueue bool
	TriageQueueURL string
	WorkerCount    int

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Telegram notifications
	TelegramBotToken     string
	TelegramDoctorChatID string
	TelegramAdminChatID  string
	NotificationsEnabled bool

	// Email copy of urgent notifications
	EmailProvider      string // "ses", "sendgrid" or "" (disabled)
	EmailRecipients    string // comma-separated
	SendGridAPIKey     string
	SendGridFromEmail  string
	SendGridFromName   string
	SESFromEmail       string
	SESFromName        string

	// Fallback responder
	ResponderProvider string // "bedrock", "gemini" or "" (canned replies only)
	BedrockModelID    string
	GeminiAPIKey      string
	GeminiModel       string
	ResponderTimeout  time.Duration

	// Session lifecycle
	SessionTTL time.Duration

	// Severity policy thresholds (see triage.Policy)
	ScoreModerate   int
	ScoreIntense    int
	ScoreUrgent     int
	ReasonsModerate int
	ReasonsIntense  int
	ReasonsUrgent   int

	// Admin API
	AdminJWTSecret     string
	CORSAllowedOrigins string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", false),
		TriageQueueURL: getEnv("TRIAGE_QUEUE_URL", ""),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		TelegramBotToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramDoctorChatID: getEnv("TELEGRAM_DOCTOR_CHAT_ID", ""),
		TelegramAdminChatID:  getEnv("TELEGRAM_ADMIN_CHAT_ID", ""),
		NotificationsEnabled: getEnvAsBool("TELEGRAM_NOTIFICATIONS", true),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", ""))),
		EmailRecipients:   getEnv("EMAIL_RECIPIENTS", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Triagem Psicológica"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Triagem Psicológica"),

		ResponderProvider: strings.ToLower(strings.TrimSpace(getEnv("RESPONDER_PROVIDER", ""))),
		BedrockModelID:    getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		ResponderTimeout:  getEnvAsDuration("RESPONDER_TIMEOUT", 15*time.Second),

		SessionTTL: getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		ScoreModerate:   getEnvAsInt("SCORE_MODERATE", 16),
		ScoreIntense:    getEnvAsInt("SCORE_INTENSE", 24),
		ScoreUrgent:     getEnvAsInt("SCORE_URGENT", 32),
		ReasonsModerate: getEnvAsInt("REASONS_MODERATE", 4),
		ReasonsIntense:  getEnvAsInt("REASONS_INTENSE", 6),
		ReasonsUrgent:   getEnvAsInt("REASONS_URGENT", 8),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
