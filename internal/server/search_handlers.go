package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/aristath/companylookup/internal/domain"
)

// genericSuggestions is offered when a search comes back empty.
var genericSuggestions = []string{
	"Try searching with ticker symbol",
	"Include company suffix (Ltd, Inc, Corporation)",
	"Check spelling and try again",
}

// handleSearch runs the full resolution pipeline and returns the
// ranked candidate list.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		s.respondValidationError(w, r, "q", "Query parameter 'q' is required")
		return
	}
	if len(q) > maxQueryLength {
		s.respondValidationError(w, r, "q", fmt.Sprintf("Query must be at most %d characters", maxQueryLength))
		return
	}

	limit, err := intParam(r, "limit", s.cfg.MaxSearchResults)
	if err != nil || limit < 1 || limit > s.cfg.MaxSearchResults {
		s.respondValidationError(w, r, "limit", fmt.Sprintf("Limit must be between 1 and %d", s.cfg.MaxSearchResults))
		return
	}

	start := time.Now()
	results, err := s.lookup.Search(r.Context(), q)
	if err != nil {
		// Zero candidates surfaces as an empty result, not a failure.
		results = nil
	}
	if len(results) > limit {
		results = results[:limit]
	}
	took := time.Since(start).Milliseconds()

	suggestions := []string{}
	message := fmt.Sprintf("Found %d companies", len(results))
	if len(results) == 0 {
		suggestions = genericSuggestions
		message = "No companies found matching your search"
	}
	if results == nil {
		results = []domain.CandidateMatch{}
	}

	data := map[string]interface{}{
		"query":         q,
		"results":       results,
		"total_results": len(results),
		"took_ms":       took,
		"suggestions":   suggestions,
	}
	metadata := map[string]interface{}{
		"response_time_ms": took,
		"search_algorithm": "enhanced_fuzzy_match",
		"data_sources":     []string{"yahoo_finance", "sec_edgar"},
	}
	s.respondSuccess(w, r, message, data, metadata)
}

// handleSearchSuggestions returns typeahead entries for a partial
// query.
func (s *Server) handleSearchSuggestions(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		s.respondValidationError(w, r, "q", "Query parameter 'q' is required")
		return
	}

	limit, err := intParam(r, "limit", 5)
	if err != nil || limit < 1 || limit > 10 {
		s.respondValidationError(w, r, "limit", "Limit must be between 1 and 10")
		return
	}

	results, err := s.lookup.Search(r.Context(), q)
	if err != nil {
		results = nil
	}
	if len(results) > limit {
		results = results[:limit]
	}

	type suggestion struct {
		Text   string `json:"text"`
		Ticker string `json:"ticker,omitempty"`
		Type   string `json:"type"`
	}

	suggestions := make([]suggestion, 0, limit)
	for _, m := range results {
		suggestions = append(suggestions, suggestion{Text: m.Name, Ticker: m.Ticker, Type: "company"})
	}
	if len(suggestions) == 0 {
		for _, tip := range genericSuggestions {
			suggestions = append(suggestions, suggestion{Text: tip, Type: "tip"})
		}
	}

	data := map[string]interface{}{
		"query":       q,
		"suggestions": suggestions,
	}
	s.respondSuccess(w, r, fmt.Sprintf("Found %d suggestions", len(suggestions)), data, nil)
}

// handleSearchValidate inspects a query without calling any upstream.
func (s *Server) handleSearchValidate(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	issues := []string{}
	suggestions := []string{}

	if q == "" {
		issues = append(issues, "Query cannot be empty")
		suggestions = append(suggestions, "Enter a company name, ticker symbol, or CIK number")
	}
	if len(q) > maxQueryLength {
		issues = append(issues, fmt.Sprintf("Query is too long (maximum %d characters)", maxQueryLength))
		suggestions = append(suggestions, "Shorten the query to the company name or ticker")
	}

	data := map[string]interface{}{
		"query":       q,
		"is_valid":    len(issues) == 0,
		"query_type":  classifyQuery(q),
		"issues":      issues,
		"suggestions": suggestions,
	}
	s.respondSuccess(w, r, "Query validation completed", data, nil)
}

// classifyQuery guesses what kind of identifier the user typed.
// Short all-letter strings read as tickers, all-digit strings as
// CIKs, anything else as a company name.
func classifyQuery(q string) string {
	if q == "" {
		return "company_name"
	}
	allLetters := true
	allDigits := true
	for _, r := range q {
		if !unicode.IsLetter(r) {
			allLetters = false
		}
		if !unicode.IsDigit(r) {
			allDigits = false
		}
	}
	switch {
	case allLetters && len(q) <= 5:
		return "ticker"
	case allDigits:
		return "cik"
	default:
		return "company_name"
	}
}
