// Package main is the entry point for the company lookup service.
// It wires the shared cache and rate limiter into the upstream
// clients, composes the resolution pipeline and enrichment services,
// and serves the REST API until interrupted.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/companylookup/internal/cache"
	"github.com/aristath/companylookup/internal/clients/edgar"
	"github.com/aristath/companylookup/internal/clients/yahoo"
	"github.com/aristath/companylookup/internal/config"
	"github.com/aristath/companylookup/internal/domain"
	"github.com/aristath/companylookup/internal/enrich"
	"github.com/aristath/companylookup/internal/ratelimit"
	"github.com/aristath/companylookup/internal/resolve"
	"github.com/aristath/companylookup/internal/scheduler"
	"github.com/aristath/companylookup/internal/server"
	"github.com/aristath/companylookup/internal/services"
	"github.com/aristath/companylookup/pkg/logger"
)

func main() {
	// Load configuration first to get the log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	log.Info().Str("environment", cfg.Environment).Msg("Starting company lookup service")

	// One cache and one limiter are shared by both upstream clients.
	// Limiter intervals pace each source class independently; the
	// quote class is keyed per symbol inside the client.
	store := cache.New()
	limiter := ratelimit.New(log)
	limiter.SetInterval("yahoo-search", cfg.YahooSearchDelay)
	limiter.SetInterval("quote", cfg.QuoteDelay)
	limiter.SetInterval("sec-directory", cfg.SECDelay)
	limiter.SetInterval("sec-submissions", cfg.EdgarDelay)

	yahooClient := yahoo.NewClient(yahoo.Config{
		Cache:    store,
		Limiter:  limiter,
		QuoteTTL: cfg.QuoteCacheTTL,
	}, log)

	edgarClient := edgar.NewClient(edgar.Config{
		UserAgent:    cfg.SECUserAgent,
		Cache:        store,
		Limiter:      limiter,
		FilingsTTL:   cfg.FilingsCacheTTL,
		DirectoryTTL: cfg.DirectoryCacheTTL,
	}, log)

	// EDGAR goes first: its ticker directory is authoritative for
	// CIKs, so its candidates win merge conflicts in the pipeline.
	pipeline := resolve.New(resolve.Config{
		Sources:    []domain.SearchSource{edgarClient, yahooClient},
		Cache:      store,
		SearchTTL:  cfg.SearchCacheTTL,
		MaxResults: cfg.MaxSearchResults,
	}, log)

	enricher := enrich.New(yahooClient, edgarClient, log)

	lookupService := services.NewLookupService(pipeline, enricher, log)
	quoteService := services.NewQuoteService(yahooClient, log)
	filingsService := services.NewFilingsService(edgarClient, log)

	// Periodic sweep keeps expired cache entries from accumulating
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.CacheSweepSchedule, cache.NewSweepJob(store, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule cache sweep")
	}
	sched.Start()

	srv := server.New(server.Config{
		Config:  cfg,
		Log:     log,
		Lookup:  lookupService,
		Quotes:  quoteService,
		Filings: filingsService,
	})

	// Start server in goroutine so shutdown handling below can run
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	sched.Stop()

	// Graceful shutdown: in-flight requests get up to 10 seconds to
	// drain before the server is forced down.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
