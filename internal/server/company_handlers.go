package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aristath/companylookup/internal/domain"
	"github.com/aristath/companylookup/internal/services"
)

// handleCompanyLookup resolves a query and assembles the full company
// profile: identity, quote, filings and the educational analysis.
func (s *Server) handleCompanyLookup(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(q) < s.cfg.MinQueryLength {
		s.respondValidationError(w, r, "q",
			fmt.Sprintf("Query must be at least %d characters", s.cfg.MinQueryLength))
		return
	}

	filingsLimit, err := intParam(r, "filings_limit", 5)
	if err != nil || filingsLimit < 1 || filingsLimit > 20 {
		s.respondValidationError(w, r, "filings_limit", "filings_limit must be between 1 and 20")
		return
	}

	opts := services.LookupOptions{
		IncludeQuote:    boolParam(r, "include_quote", true),
		IncludeFilings:  boolParam(r, "include_filings", true),
		IncludeAnalysis: boolParam(r, "include_analysis", true),
		FilingsLimit:    filingsLimit,
	}

	start := time.Now()
	result, err := s.lookup.Lookup(r.Context(), q, opts)
	if err != nil {
		if errors.Is(err, domain.ErrCompanyNotFound) {
			s.respondNotFound(w, r, CodeCompanyNotFound,
				fmt.Sprintf("No company found matching query: %s", q))
			return
		}
		s.respondUpstreamError(w, r, CodeExternalAPIError, "Company lookup failed")
		return
	}
	took := time.Since(start).Milliseconds()

	var filings interface{}
	if result.Filings != nil {
		filings = result.Filings.Filings
	}
	data := map[string]interface{}{
		"company_info":         result.Company,
		"stock_quote":          result.Quote,
		"filings":              filings,
		"educational_analysis": result.Analysis,
		"data_sources":         result.DataSources,
	}

	name := result.Company.Name
	var status Status
	var message string
	switch {
	case result.Completeness.HasQuote && result.Completeness.HasFilings:
		status = StatusSuccess
		message = fmt.Sprintf("Complete company information retrieved for %s", name)
	case result.Completeness.HasQuote || result.Completeness.HasFilings:
		status = StatusPartial
		message = fmt.Sprintf("Partial company information retrieved for %s", name)
	default:
		status = StatusSuccess
		message = fmt.Sprintf("Basic company information retrieved for %s", name)
	}

	metadata := map[string]interface{}{
		"response_time_ms": took,
		"data_completeness": map[string]bool{
			"company_info": true,
			"stock_quote":  result.Completeness.HasQuote,
			"filings":      result.Completeness.HasFilings,
		},
	}
	s.respondStatus(w, r, status, message, data, metadata)
}

// handleCompanyByTicker resolves an exact ticker to a company
// identity, with no enrichment.
func (s *Server) handleCompanyByTicker(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	company, err := s.lookup.ResolveTicker(r.Context(), ticker)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidTicker):
			s.respondValidationError(w, r, "ticker",
				fmt.Sprintf("Invalid ticker symbol: %s", ticker))
		case errors.Is(err, domain.ErrCompanyNotFound):
			s.respondNotFound(w, r, CodeCompanyNotFound,
				fmt.Sprintf("No company found for ticker: %s", domain.NormalizeTicker(ticker)))
		default:
			s.respondUpstreamError(w, r, CodeExternalAPIError, "Company lookup failed")
		}
		return
	}

	data := map[string]interface{}{"company": company}
	s.respondSuccess(w, r, fmt.Sprintf("Company information retrieved for %s", company.Name), data, nil)
}
