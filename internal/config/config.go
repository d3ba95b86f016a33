package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL      string
	DatabaseMaxConns int32
	AutoMigrate      bool

	// Identity provider
	AuthIssuerURL         string
	AuthAudience          string
	AuthAuthorizedParties []string
	WebhookSecret         string

	// Redis (optional, enables webhook delivery dedupe)
	RedisURL string

	// Server
	Port        string
	PublicURL   string
	CORSOrigins []string
	Env         string

	// Rate limiting
	RateLimit RateLimitConfig
}

// RateLimitConfig holds per-principal rate limiter settings
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		DatabaseMaxConns:      int32(getEnvInt("DATABASE_MAX_CONNS", 10)),
		AutoMigrate:           getEnvBool("AUTO_MIGRATE", false),
		AuthIssuerURL:         strings.TrimSuffix(getEnv("AUTH_ISSUER_URL", ""), "/"),
		AuthAudience:          getEnv("AUTH_AUDIENCE", ""),
		AuthAuthorizedParties: splitList(getEnv("AUTH_AUTHORIZED_PARTIES", "")),
		WebhookSecret:         getEnv("CLERK_WEBHOOK_SECRET", ""),
		RedisURL:              getEnv("REDIS_URL", ""),
		Port:                  getEnv("PORT", "3000"),
		CORSOrigins:           splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Env:                   getEnv("ENV", "development"),
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 20),
		},
	}

	cfg.PublicURL = getEnv("PUBLIC_URL", "http://localhost:"+cfg.Port)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.AuthIssuerURL == "" {
		return fmt.Errorf("AUTH_ISSUER_URL is required")
	}
	if c.AuthAudience == "" {
		return fmt.Errorf("AUTH_AUDIENCE is required")
	}
	if c.WebhookSecret == "" {
		return fmt.Errorf("CLERK_WEBHOOK_SECRET is required")
	}
	if c.DatabaseMaxConns <= 0 {
		return fmt.Errorf("DATABASE_MAX_CONNS must be positive")
	}
	if c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadDatabaseURL reads only DATABASE_URL, for tools that do not serve HTTP
func LoadDatabaseURL() (string, error) {
	_ = godotenv.Load()

	url := getEnv("DATABASE_URL", "")
	if url == "" {
		return "", fmt.Errorf("DATABASE_URL is required")
	}
	return url, nil
}
