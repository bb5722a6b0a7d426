// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Source adapter settings
	SourceTimeout    time.Duration // per-source budget for a screening run
	BreakerThreshold int           // consecutive failures before a source circuit opens
	BreakerCooldown  time.Duration // how long an open circuit waits before probing

	// Chain explorer source
	RPCURL  string
	ChainID int64

	// Payment dispute source
	StripeAPIKey string

	// Adverse media source
	AdverseMediaURL string

	// Security
	WebhookSecret string // HMAC secret for signing outbound webhook deliveries
	AdminSecret   string // Admin API secret
	RateLimitRPS  int
}

const (
	DefaultPort             = "8080"
	DefaultEnv              = "development"
	DefaultLogLevel         = "info"
	DefaultRPCURL           = "https://sepolia.base.org"
	DefaultChainID          = 84532 // Base Sepolia
	DefaultSourceTimeoutMS  = 5000
	DefaultBreakerThreshold = 5
	DefaultBreakerCooldown  = 30000
	DefaultRateLimit        = 100
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", DefaultPort),
		Env:              getEnv("ENV", DefaultEnv),
		LogLevel:         getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:      os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		SourceTimeout:    time.Duration(getEnvInt64("SOURCE_TIMEOUT_MS", DefaultSourceTimeoutMS)) * time.Millisecond,
		BreakerThreshold: int(getEnvInt64("BREAKER_THRESHOLD", DefaultBreakerThreshold)),
		BreakerCooldown:  time.Duration(getEnvInt64("BREAKER_COOLDOWN_MS", DefaultBreakerCooldown)) * time.Millisecond,
		RPCURL:           getEnv("RPC_URL", DefaultRPCURL),
		ChainID:          getEnvInt64("CHAIN_ID", DefaultChainID),
		StripeAPIKey:     os.Getenv("STRIPE_API_KEY"),
		AdverseMediaURL:  os.Getenv("ADVERSE_MEDIA_URL"),
		WebhookSecret:    os.Getenv("WEBHOOK_SECRET"),
		AdminSecret:      os.Getenv("ADMIN_SECRET"),
		RateLimitRPS:     int(getEnvInt64("RATE_LIMIT_RPS", int64(DefaultRateLimit))),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.SourceTimeout <= 0 {
		return fmt.Errorf("SOURCE_TIMEOUT_MS must be positive")
	}

	if c.BreakerThreshold <= 0 {
		return fmt.Errorf("BREAKER_THRESHOLD must be positive")
	}

	if c.IsProduction() && c.WebhookSecret == "" {
		return fmt.Errorf("WEBHOOK_SECRET is required in production")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}
