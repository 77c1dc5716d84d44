package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aristath/companylookup/internal/domain"
)

// handleFilings returns recent SEC filings for a CIK, optionally
// filtered to specific form types.
func (s *Server) handleFilings(w http.ResponseWriter, r *http.Request) {
	cik := chi.URLParam(r, "cik")
	formTypes := listParam(r, "form_types")

	limit, err := intParam(r, "limit", s.cfg.DefaultFilingsLimit)
	if err != nil || limit < 1 || limit > s.cfg.MaxFilingsPerRequest {
		s.respondValidationError(w, r, "limit",
			fmt.Sprintf("limit must be between 1 and %d", s.cfg.MaxFilingsPerRequest))
		return
	}

	start := time.Now()
	set, err := s.filings.RecentFilings(r.Context(), cik, formTypes, limit)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCIK):
			s.respondValidationError(w, r, "cik",
				fmt.Sprintf("Invalid CIK: %s", cik))
		case isRateLimited(err):
			s.respondRateLimited(w, r, "SEC EDGAR is rate limiting requests, try again shortly")
		default:
			s.respondUpstreamError(w, r, CodeSECAPIError, "Failed to fetch filings from SEC EDGAR")
		}
		return
	}
	took := time.Since(start).Milliseconds()

	metadata := map[string]interface{}{
		"data_source":      "sec_edgar",
		"response_time_ms": took,
		"filters_applied": map[string]interface{}{
			"form_types": formTypes,
			"limit":      limit,
		},
	}
	s.respondSuccess(w, r,
		fmt.Sprintf("Retrieved %d filings for CIK %s", set.FilingsReturned, set.CIK), set, metadata)
}
