// Package yahoo provides the Yahoo Finance API client.
//
// Yahoo serves two roles here: a search source for company resolution
// and the quote source for market data. Yahoo has no official public
// API, so requests mimic a browser and every response is treated as
// potentially incomplete.
package yahoo

import (
	"net/http"
	"time"

	"github.com/aristath/companylookup/internal/cache"
	"github.com/aristath/companylookup/internal/ratelimit"
	"github.com/rs/zerolog"
)

const (
	// defaultBaseURL is the public Yahoo Finance query host.
	defaultBaseURL = "https://query1.finance.yahoo.com"

	// browserUserAgent mimics a browser. Yahoo rejects default Go
	// client user agents.
	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

	// Rate limiter keys. Quotes are paced per symbol.
	searchLimitKey = "yahoo-search"
	quoteLimitKey  = "quote"
)

// Config wires the client's dependencies.
type Config struct {
	// BaseURL overrides the Yahoo Finance host, for tests.
	BaseURL string

	// Cache holds quote snapshots between calls.
	Cache *cache.Store

	// Limiter paces outbound calls.
	Limiter *ratelimit.Limiter

	// QuoteTTL is how long quote snapshots stay cached.
	QuoteTTL time.Duration

	// MaxRetries bounds quote fetch attempts before falling back to
	// the chart endpoint. Defaults to 2.
	MaxRetries int
}

// Client is a Yahoo Finance API client
type Client struct {
	baseURL    string
	client     *http.Client
	cache      *cache.Store
	limiter    *ratelimit.Limiter
	quoteTTL   time.Duration
	maxRetries int
	log        zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(cfg Config, log zerolog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}

	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:      cfg.Cache,
		limiter:    cfg.Limiter,
		quoteTTL:   cfg.QuoteTTL,
		maxRetries: maxRetries,
		log:        log.With().Str("client", "yahoo").Logger(),
	}
}
