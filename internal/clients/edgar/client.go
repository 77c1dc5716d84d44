// Package edgar provides the SEC EDGAR API client.
//
// Two hosts are involved: www.sec.gov serves the company ticker
// directory and filing documents, data.sec.gov serves the submissions
// API. The SEC requires a descriptive User-Agent identifying the
// caller and enforces fair-use pacing, so every request goes through
// the shared rate limiter.
package edgar

import (
	"net/http"
	"time"

	"github.com/aristath/companylookup/internal/cache"
	"github.com/aristath/companylookup/internal/ratelimit"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL     = "https://www.sec.gov"
	defaultDataBaseURL = "https://data.sec.gov"

	// Rate limiter keys. The directory download is heavyweight and
	// paced slower than submissions lookups.
	directoryLimitKey   = "sec-directory"
	submissionsLimitKey = "sec-submissions"
)

// Config wires the client's dependencies.
type Config struct {
	// BaseURL overrides the www.sec.gov host, for tests.
	BaseURL string

	// DataBaseURL overrides the data.sec.gov host, for tests.
	DataBaseURL string

	// UserAgent identifies this service to the SEC. Must be set.
	UserAgent string

	// Cache holds the ticker directory and filing sets.
	Cache *cache.Store

	// Limiter paces outbound calls.
	Limiter *ratelimit.Limiter

	// FilingsTTL is how long filing sets stay cached.
	FilingsTTL time.Duration

	// DirectoryTTL is how long the ticker directory stays cached.
	DirectoryTTL time.Duration
}

// Client is a SEC EDGAR API client
type Client struct {
	baseURL      string
	dataBaseURL  string
	userAgent    string
	client       *http.Client
	cache        *cache.Store
	limiter      *ratelimit.Limiter
	filingsTTL   time.Duration
	directoryTTL time.Duration
	log          zerolog.Logger
}

// NewClient creates a new SEC EDGAR client
func NewClient(cfg Config, log zerolog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	dataBaseURL := cfg.DataBaseURL
	if dataBaseURL == "" {
		dataBaseURL = defaultDataBaseURL
	}

	return &Client{
		baseURL:     baseURL,
		dataBaseURL: dataBaseURL,
		userAgent:   cfg.UserAgent,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:        cfg.Cache,
		limiter:      cfg.Limiter,
		filingsTTL:   cfg.FilingsTTL,
		directoryTTL: cfg.DirectoryTTL,
		log:          log.With().Str("client", "edgar").Logger(),
	}
}
