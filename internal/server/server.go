// Package server provides the HTTP server and routing for the company
// lookup API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/companylookup/internal/config"
	"github.com/aristath/companylookup/internal/services"
)

// Version is reported by the root and health endpoints.
const Version = "1.0.0"

// Config holds server configuration.
type Config struct {
	Config  *config.Config
	Log     zerolog.Logger
	Lookup  *services.LookupService
	Quotes  *services.QuoteService
	Filings *services.FilingsService
}

// Server represents the HTTP server.
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	cfg       *config.Config
	lookup    *services.LookupService
	quotes    *services.QuoteService
	filings   *services.FilingsService
	startedAt time.Time

	// Probe targets for the health endpoints, overridable in tests.
	secProbeURL   string
	yahooProbeURL string
	probeClient   *http.Client
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		log:           cfg.Log.With().Str("component", "server").Logger(),
		cfg:           cfg.Config,
		lookup:        cfg.Lookup,
		quotes:        cfg.Quotes,
		filings:       cfg.Filings,
		startedAt:     time.Now().UTC(),
		secProbeURL:   defaultSECProbeURL,
		yahooProbeURL: defaultYahooProbeURL,
		probeClient:   &http.Client{Timeout: probeTimeout},
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Config.Host, cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures the middleware chain.
func (s *Server) setupMiddleware() {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Request ID
	s.router.Use(s.requestIDMiddleware)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Compress responses
	if !s.cfg.DevMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleRoot)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/search/suggestions", s.handleSearchSuggestions)
		r.Get("/search/validate", s.handleSearchValidate)

		r.Get("/company/lookup", s.handleCompanyLookup)
		r.Get("/company/{ticker}", s.handleCompanyByTicker)

		r.Get("/stock/batch", s.handleStockBatch)
		r.Get("/stock/{ticker}", s.handleStockQuote)

		r.Get("/filings/{cik}", s.handleFilings)

		r.Get("/health", s.handleHealth)
		r.Get("/health/simple", s.handleHealthSimple)
		r.Get("/health/dependencies", s.handleHealthDependencies)
	})
}

// handleRoot describes the service.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"service":     "Company Lookup Service",
		"version":     Version,
		"description": "Multi-source company search with stock quotes, SEC filings and educational analysis",
		"endpoints": map[string]string{
			"search":         "/api/v1/search?q={query}",
			"suggestions":    "/api/v1/search/suggestions?q={query}",
			"validate":       "/api/v1/search/validate?q={query}",
			"company_lookup": "/api/v1/company/lookup?q={query}",
			"company":        "/api/v1/company/{ticker}",
			"stock":          "/api/v1/stock/{ticker}",
			"stock_batch":    "/api/v1/stock/batch?symbols={a,b,c}",
			"filings":        "/api/v1/filings/{cik}",
			"health":         "/api/v1/health",
		},
	}
	s.respondSuccess(w, r, "Company Lookup Service is running", data, nil)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", requestIDFrom(r.Context())).
			Msg("HTTP request")
	})
}
