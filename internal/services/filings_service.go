package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/companylookup/internal/domain"
)

// deepFetchLimit is how many filings we pull upstream before applying
// form filters. Filtering a shallow page would starve narrow filters
// like form_types=10-K.
const deepFetchLimit = 100

// FilingsService fetches and filters SEC filing histories.
type FilingsService struct {
	filings domain.FilingsSource
	log     zerolog.Logger
}

// NewFilingsService creates a FilingsService.
func NewFilingsService(filings domain.FilingsSource, log zerolog.Logger) *FilingsService {
	return &FilingsService{
		filings: filings,
		log:     log.With().Str("service", "filings").Logger(),
	}
}

// RecentFilings returns up to limit filings for a CIK, optionally
// restricted to the given form types (matched case-insensitively).
// The CIK is validated and zero-padded first; an unknown CIK yields
// an empty set, not an error.
func (s *FilingsService) RecentFilings(ctx context.Context, cik string, formTypes []string, limit int) (*domain.FilingSet, error) {
	normalized, err := domain.ValidateCIK(cik)
	if err != nil {
		return nil, err
	}

	set, err := s.filings.RecentFilings(ctx, normalized, deepFetchLimit)
	if err != nil {
		return nil, err
	}

	filtered := filterForms(set.Filings, formTypes)
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	out := *set
	out.Filings = filtered
	out.FilingsReturned = len(filtered)
	out.DateRange = dateRangeOf(filtered)

	s.log.Debug().
		Str("cik", normalized).
		Strs("form_types", formTypes).
		Int("returned", out.FilingsReturned).
		Msg("Filings fetched")

	return &out, nil
}

// filterForms keeps filings whose form matches one of the wanted
// types. An empty filter keeps everything.
func filterForms(filings []domain.Filing, formTypes []string) []domain.Filing {
	if len(formTypes) == 0 {
		return filings
	}

	wanted := make(map[string]bool, len(formTypes))
	for _, ft := range formTypes {
		if trimmed := strings.ToUpper(strings.TrimSpace(ft)); trimmed != "" {
			wanted[trimmed] = true
		}
	}
	if len(wanted) == 0 {
		return filings
	}

	kept := make([]domain.Filing, 0, len(filings))
	for _, f := range filings {
		if wanted[strings.ToUpper(f.Form)] {
			kept = append(kept, f)
		}
	}
	return kept
}

func dateRangeOf(filings []domain.Filing) *domain.DateRange {
	if len(filings) == 0 {
		return nil
	}
	dr := &domain.DateRange{Earliest: filings[0].FilingDate, Latest: filings[0].FilingDate}
	for _, f := range filings[1:] {
		if f.FilingDate < dr.Earliest {
			dr.Earliest = f.FilingDate
		}
		if f.FilingDate > dr.Latest {
			dr.Latest = f.FilingDate
		}
	}
	return dr
}
