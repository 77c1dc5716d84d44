// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Host        string
	Port        int
	Environment string
	DevMode     bool
	LogLevel    string
	LogPretty   bool

	// AllowedOrigins is the CORS whitelist for browser clients.
	AllowedOrigins []string

	// RequestTimeout bounds every inbound request, including upstream calls.
	RequestTimeout time.Duration

	// Cache TTLs per data class. Quotes and search results go stale fast,
	// the SEC ticker directory barely changes.
	SearchCacheTTL    time.Duration
	QuoteCacheTTL     time.Duration
	FilingsCacheTTL   time.Duration
	DirectoryCacheTTL time.Duration

	// Minimum spacing between outbound calls, per upstream.
	YahooSearchDelay time.Duration
	SECDelay         time.Duration
	QuoteDelay       time.Duration
	EdgarDelay       time.Duration

	// SECUserAgent identifies us to the SEC. EDGAR rejects requests
	// without a descriptive User-Agent, so this must never be empty.
	SECUserAgent string

	MaxSearchResults     int
	MinQueryLength       int
	DefaultFilingsLimit  int
	MaxFilingsPerRequest int

	// CacheSweepSchedule is a cron expression for the expired-entry sweep.
	CacheSweepSchedule string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Host:        getEnv("HOST", "0.0.0.0"),
		Port:        getEnvAsInt("PORT", 8000),
		Environment: getEnv("ENVIRONMENT", "development"),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPretty:   getEnvAsBool("LOG_PRETTY", false),

		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		}),

		RequestTimeout: getEnvAsSeconds("REQUEST_TIMEOUT_SECONDS", 30),

		SearchCacheTTL:    getEnvAsSeconds("CACHE_TTL_SECONDS", 300),
		QuoteCacheTTL:     getEnvAsSeconds("QUOTE_CACHE_TTL_SECONDS", 300),
		FilingsCacheTTL:   getEnvAsSeconds("FILINGS_CACHE_TTL_SECONDS", 600),
		DirectoryCacheTTL: getEnvAsSeconds("DIRECTORY_CACHE_TTL_SECONDS", 86400),

		YahooSearchDelay: getEnvAsMillis("YAHOO_DELAY_MS", 500),
		SECDelay:         getEnvAsMillis("SEC_DELAY_MS", 1000),
		QuoteDelay:       getEnvAsMillis("QUOTE_DELAY_MS", 1500),
		EdgarDelay:       getEnvAsMillis("EDGAR_DELAY_MS", 100),

		SECUserAgent: getEnv("SEC_USER_AGENT", "companylookup/1.0 (contact@example.com)"),

		MaxSearchResults:     getEnvAsInt("MAX_SEARCH_RESULTS", 20),
		MinQueryLength:       getEnvAsInt("MIN_SEARCH_QUERY_LENGTH", 2),
		DefaultFilingsLimit:  getEnvAsInt("DEFAULT_FILINGS_LIMIT", 10),
		MaxFilingsPerRequest: getEnvAsInt("MAX_FILINGS_PER_REQUEST", 50),

		CacheSweepSchedule: getEnv("CACHE_SWEEP_SCHEDULE", "@every 10m"),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.SECUserAgent == "" {
		return fmt.Errorf("SEC_USER_AGENT must not be empty")
	}
	if c.MaxSearchResults < 1 {
		return fmt.Errorf("MAX_SEARCH_RESULTS must be at least 1, got %d", c.MaxSearchResults)
	}
	if c.MinQueryLength < 1 {
		return fmt.Errorf("MIN_SEARCH_QUERY_LENGTH must be at least 1, got %d", c.MinQueryLength)
	}
	if c.MaxFilingsPerRequest < 1 {
		return fmt.Errorf("MAX_FILINGS_PER_REQUEST must be at least 1, got %d", c.MaxFilingsPerRequest)
	}
	if c.DefaultFilingsLimit < 1 || c.DefaultFilingsLimit > c.MaxFilingsPerRequest {
		return fmt.Errorf("DEFAULT_FILINGS_LIMIT must be between 1 and %d, got %d", c.MaxFilingsPerRequest, c.DefaultFilingsLimit)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * time.Second
}

func getEnvAsMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * time.Millisecond
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
