package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aristath/companylookup/internal/domain"
)

const maxBatchSymbols = 20

// handleStockQuote returns the current quote for a single ticker.
// ?detailed=true swaps in the richer quote with 52-week range and
// average volume.
func (s *Server) handleStockQuote(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	detailed := boolParam(r, "detailed", false)

	start := time.Now()
	var (
		quote interface{}
		err   error
	)
	if detailed {
		quote, err = s.quotes.QuoteDetail(r.Context(), ticker)
	} else {
		quote, err = s.quotes.Quote(r.Context(), ticker)
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidTicker):
			s.respondValidationError(w, r, "ticker",
				fmt.Sprintf("Invalid ticker symbol: %s", ticker))
		case errors.Is(err, domain.ErrQuoteNotFound):
			s.respondNotFound(w, r, CodeStockNotFound,
				fmt.Sprintf("No quote found for ticker: %s", domain.NormalizeTicker(ticker)))
		case isRateLimited(err):
			s.respondRateLimited(w, r, "Quote provider is rate limiting requests, try again shortly")
		default:
			s.respondUpstreamError(w, r, CodeExternalAPIError, "Failed to fetch quote from provider")
		}
		return
	}
	took := time.Since(start).Milliseconds()

	data := map[string]interface{}{"quote": quote}
	metadata := map[string]interface{}{
		"data_source":      "yahoo_finance",
		"response_time_ms": took,
	}
	s.respondSuccess(w, r,
		fmt.Sprintf("Quote retrieved for %s", domain.NormalizeTicker(ticker)), data, metadata)
}

// handleStockBatch fetches quotes for up to maxBatchSymbols tickers in
// one request. Per-symbol failures never fail the batch, the envelope
// status reports how much of it came back.
func (s *Server) handleStockBatch(w http.ResponseWriter, r *http.Request) {
	symbols := listParam(r, "symbols")
	if len(symbols) == 0 {
		s.respondValidationError(w, r, "symbols", "At least one symbol is required")
		return
	}
	if len(symbols) > maxBatchSymbols {
		s.respondValidationError(w, r, "symbols",
			fmt.Sprintf("Maximum %d symbols per batch request", maxBatchSymbols))
		return
	}

	start := time.Now()
	result := s.quotes.BatchQuotes(r.Context(), symbols)
	took := time.Since(start).Milliseconds()

	var status Status
	var message string
	var errs []ErrorDetail
	switch {
	case result.Summary.Failed == 0:
		status = StatusSuccess
		message = fmt.Sprintf("Retrieved %d quotes", result.Summary.Successful)
	case result.Summary.Successful > 0:
		status = StatusPartial
		message = fmt.Sprintf("Retrieved %d of %d quotes",
			result.Summary.Successful, result.Summary.TotalRequested)
	default:
		status = StatusError
		message = "Failed to retrieve any quotes"
		errs = []ErrorDetail{{
			Type:    "external_api_error",
			Message: "All quote requests failed",
			Code:    CodeExternalAPIError,
		}}
	}

	metadata := map[string]interface{}{
		"data_source":      "yahoo_finance",
		"response_time_ms": took,
	}
	s.respond(w, r, http.StatusOK, Envelope{
		Status:   status,
		Message:  message,
		Data:     result,
		Errors:   errs,
		Metadata: metadata,
	})
}
