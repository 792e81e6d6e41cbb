package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Catalog    CatalogConfig
	AI         AIConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	RateLimit  RateLimitConfig
	Logging    LoggingConfig
	TuningFile string
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, preferred when set
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// Catalog sources
const (
	CatalogSourceJSON     = "json"
	CatalogSourcePostgres = "postgres"
)

// CatalogConfig selects where listings are loaded from
type CatalogConfig struct {
	Source  string
	DataDir string
}

// AIConfig holds the extraction provider selection and its bounds
type AIConfig struct {
	Provider        string // openai, gemini or lexical
	ExtractTimeout  time.Duration
	GenerateTimeout time.Duration
	HistoryWindow   int
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey              string
	APIBase             string
	ChatModel           string
	ExtractTemperature  float64
	ResponseTemperature float64
	ResponseMaxTokens   int
	Timeout             int // seconds, transport level
	Enabled             bool
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey  string
	Model   string
	Enabled bool
}

// RateLimitConfig holds per-client request limits for the API group
type RateLimitConfig struct {
	Requests      int
	Window        time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "mira"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Catalog: CatalogConfig{
			Source:  strings.ToLower(getEnv("CATALOG_SOURCE", CatalogSourceJSON)),
			DataDir: getEnv("CATALOG_DATA_DIR", "./data"),
		},
		AI: AIConfig{
			Provider:        strings.ToLower(strings.TrimSpace(getEnv("AI_PROVIDER", "lexical"))),
			ExtractTimeout:  getEnvAsDuration("AI_EXTRACT_TIMEOUT", 8*time.Second),
			GenerateTimeout: getEnvAsDuration("AI_GENERATE_TIMEOUT", 5*time.Second),
			HistoryWindow:   getEnvAsInt("AI_HISTORY_WINDOW", 6),
		},
		OpenAI: OpenAIConfig{
			APIKey:              getEnv("OPENAI_API_KEY", ""),
			APIBase:             strings.TrimRight(getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"), "/"),
			ChatModel:           getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ExtractTemperature:  getEnvAsFloat("OPENAI_EXTRACT_TEMPERATURE", 0.3),
			ResponseTemperature: getEnvAsFloat("OPENAI_RESPONSE_TEMPERATURE", 0.7),
			ResponseMaxTokens:   getEnvAsInt("OPENAI_RESPONSE_MAX_TOKENS", 500),
			Timeout:             getEnvAsInt("OPENAI_TIMEOUT", 30),
			Enabled:             getEnv("OPENAI_API_KEY", "") != "",
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Enabled: getEnv("GEMINI_API_KEY", "") != "",
		},
		RateLimit: RateLimitConfig{
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 30),
			Window:        getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		TuningFile: getEnv("RANKING_TUNING_FILE", ""),
	}

	if cfg.AI.HistoryWindow < 0 {
		return nil, fmt.Errorf("AI_HISTORY_WINDOW must not be negative, got %d", cfg.AI.HistoryWindow)
	}
	if cfg.RateLimit.Requests <= 0 || cfg.RateLimit.Window <= 0 {
		return nil, fmt.Errorf("rate limit needs a positive request count and window")
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("invalid integer value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Warn().Str("key", key).Float64("default", defaultValue).Msg("invalid float value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Dur("default", defaultValue).Msg("invalid duration value, using default")
		return defaultValue
	}
	return value
}
