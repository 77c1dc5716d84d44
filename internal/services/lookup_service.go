/**
 * Package services provides the orchestration layer between the HTTP
 * handlers and the core resolution, enrichment and upstream-client
 * machinery.
 *
 * LookupService is the single entry point for a complete company
 * profile: identity from the resolution pipeline, live quote and
 * recent filings from the enrichment fan-out, plus the educational
 * analysis annotation.
 *
 * Usage:
 *   result, _ := lookupService.Lookup(ctx, "apple", services.DefaultLookupOptions())
 *   name := result.Company.Name
 *   price := result.Quote.Price
 */
package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aristath/companylookup/internal/domain"
	"github.com/aristath/companylookup/internal/enrich"
	"github.com/aristath/companylookup/internal/resolve"
)

// LookupOptions selects which parts of the profile to assemble.
type LookupOptions struct {
	IncludeQuote    bool
	IncludeFilings  bool
	IncludeAnalysis bool
	FilingsLimit    int
}

// DefaultLookupOptions enables the full profile.
func DefaultLookupOptions() LookupOptions {
	return LookupOptions{
		IncludeQuote:    true,
		IncludeFilings:  true,
		IncludeAnalysis: true,
		FilingsLimit:    5,
	}
}

// LookupResult is the assembled company profile.
type LookupResult struct {
	Company      domain.Company
	Quote        *domain.Quote
	Filings      *domain.FilingSet
	Analysis     *enrich.Report
	Completeness enrich.Completeness

	// DataSources names where each part of the profile came from,
	// keyed by profile section.
	DataSources map[string]string
}

// LookupService assembles complete company profiles.
type LookupService struct {
	resolver *resolve.Pipeline
	enricher *enrich.Enricher
	log      zerolog.Logger
}

// NewLookupService creates a LookupService over the pipeline and
// enricher.
func NewLookupService(resolver *resolve.Pipeline, enricher *enrich.Enricher, log zerolog.Logger) *LookupService {
	return &LookupService{
		resolver: resolver,
		enricher: enricher,
		log:      log.With().Str("service", "lookup").Logger(),
	}
}

/**
 * Lookup resolves a query to a company and enriches it according to
 * the options.
 *
 * Resolution failure is the only error path (ErrCompanyNotFound when
 * the query matches nothing). Enrichment branches degrade to missing
 * data instead of failing, and the Completeness flags report what was
 * actually fetched.
 */
func (s *LookupService) Lookup(ctx context.Context, query string, opts LookupOptions) (*LookupResult, error) {
	company, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	enriched := s.enricher.Enrich(ctx, *company, enrich.Options{
		IncludeQuote:   opts.IncludeQuote,
		IncludeFilings: opts.IncludeFilings,
		FilingsLimit:   opts.FilingsLimit,
	})

	result := &LookupResult{
		Company:      enriched.Company,
		Quote:        enriched.Quote,
		Filings:      enriched.Filings,
		Completeness: enriched.Completeness,
		DataSources:  dataSources(opts),
	}
	if opts.IncludeAnalysis {
		result.Analysis = enrich.Analyze(enriched.Company, enriched.Quote, enriched.Filings)
	}

	s.log.Debug().
		Str("query", query).
		Str("ticker", result.Company.Ticker).
		Bool("has_quote", result.Completeness.HasQuote).
		Bool("has_filings", result.Completeness.HasFilings).
		Msg("Company lookup assembled")

	return result, nil
}

// Search returns the ranked candidate matches for a query without
// enriching any of them.
func (s *LookupService) Search(ctx context.Context, query string) ([]domain.CandidateMatch, error) {
	return s.resolver.SearchAll(ctx, query)
}

// ResolveTicker resolves an exact ticker to a company without any
// enrichment.
func (s *LookupService) ResolveTicker(ctx context.Context, ticker string) (*domain.Company, error) {
	return s.resolver.ResolveTicker(ctx, ticker)
}

func dataSources(opts LookupOptions) map[string]string {
	sources := map[string]string{
		"company_info": "Multiple APIs (Yahoo Finance, SEC)",
	}
	if opts.IncludeQuote {
		sources["stock_quote"] = "Yahoo Finance"
	}
	if opts.IncludeFilings {
		sources["filings"] = "SEC EDGAR API"
	}
	return sources
}
