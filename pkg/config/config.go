package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	AI        AIConfig
	Quota     QuotaConfig
	Abuse     AbuseConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Metrics   MetricsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	SigningKey string
}

// AIConfig holds upstream AI provider configuration. A provider is enabled
// when its API key is present; the offline mock provider needs no key and is
// always enabled.
type AIConfig struct {
	OpenAIAPIKey     string
	OpenAITimeout    time.Duration
	DeepInfraAPIKey  string
	DeepInfraTimeout time.Duration
	DefaultMaxTokens int
}

// QuotaConfig holds the plan-to-monthly-limit table. The enterprise plan is
// unbounded and has no entry here.
type QuotaConfig struct {
	FreeLimit int64
	ProLimit  int64
}

// AbuseConfig holds the sliding-window abuse detection parameters
type AbuseConfig struct {
	Window    time.Duration
	Threshold int64
}

// RateLimitConfig holds the per-user request throttle applied to the tool
// endpoints, ahead of the abuse detector
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics-related configuration
type MetricsConfig struct {
	Prefix string
}

// Load loads the application configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8085"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "aitool_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnv("DB_LOG_LEVEL", "info"),
		},
		JWT: JWTConfig{
			SigningKey: getEnv("JWT_SIGNING_KEY", "aitoolservicesecretkey"),
		},
		AI: AIConfig{
			OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAITimeout:    getEnvAsDuration("OPENAI_TIMEOUT", 10*time.Second),
			DeepInfraAPIKey:  getEnv("DEEPINFRA_API_KEY", ""),
			DeepInfraTimeout: getEnvAsDuration("DEEPINFRA_TIMEOUT", 15*time.Second),
			DefaultMaxTokens: getEnvAsInt("AI_DEFAULT_MAX_TOKENS", 500),
		},
		Quota: QuotaConfig{
			FreeLimit: int64(getEnvAsInt("QUOTA_FREE_LIMIT", 100)),
			ProLimit:  int64(getEnvAsInt("QUOTA_PRO_LIMIT", 500)),
		},
		Abuse: AbuseConfig{
			Window:    getEnvAsDuration("ABUSE_WINDOW", 5*time.Minute),
			Threshold: int64(getEnvAsInt("ABUSE_THRESHOLD", 30)),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvAsInt("RATE_LIMIT_REQUESTS", 5),
			Window:   getEnvAsDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "aitool"),
		},
	}, nil
}

// Helper functions to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
