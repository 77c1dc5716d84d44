// Package enrich decorates a resolved company with live market and
// filing data. Both branches run concurrently and are best effort: a
// failed fetch is logged and leaves its slot empty rather than
// failing the whole lookup.
package enrich

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/companylookup/internal/domain"
)

// maxFilingsFetch is how many filings we pull upstream regardless of
// the requested count. Fetching a fixed window keeps one cache entry
// per company and trimming happens locally.
const maxFilingsFetch = 20

// Options selects which branches to run.
type Options struct {
	IncludeQuote   bool
	IncludeFilings bool
	FilingsLimit   int
}

// DefaultOptions enables everything with a small filings window.
func DefaultOptions() Options {
	return Options{IncludeQuote: true, IncludeFilings: true, FilingsLimit: 5}
}

// Completeness records which branches actually produced data.
type Completeness struct {
	HasQuote   bool `json:"has_quote"`
	HasFilings bool `json:"has_filings"`
}

// Enrichment carries the company plus whatever the branches managed
// to fetch.
type Enrichment struct {
	Company      domain.Company
	Quote        *domain.Quote
	Filings      *domain.FilingSet
	Completeness Completeness
}

// Enricher fans out to the quote and filings sources.
type Enricher struct {
	quotes  domain.QuoteSource
	filings domain.FilingsSource
	log     zerolog.Logger
}

// New creates an enricher over the given sources.
func New(quotes domain.QuoteSource, filings domain.FilingsSource, log zerolog.Logger) *Enricher {
	return &Enricher{
		quotes:  quotes,
		filings: filings,
		log:     log.With().Str("component", "enrich").Logger(),
	}
}

// Enrich fetches quote and filings for the company in parallel.
// Filings are only attempted when the company resolved to a real CIK.
// The call never fails; missing branches show up in Completeness.
func (e *Enricher) Enrich(ctx context.Context, company domain.Company, opts Options) *Enrichment {
	enr := &Enrichment{Company: company}
	var wg sync.WaitGroup

	if opts.IncludeQuote && company.Ticker != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			quote, err := e.quotes.Quote(ctx, company.Ticker)
			if err != nil {
				e.log.Warn().Err(err).Str("ticker", company.Ticker).Msg("Quote enrichment failed")
				return
			}
			enr.Quote = quote
		}()
	}

	if opts.IncludeFilings && company.HasCIK() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set, err := e.filings.RecentFilings(ctx, company.CIK, maxFilingsFetch)
			if err != nil {
				e.log.Warn().Err(err).Str("cik", company.CIK).Msg("Filings enrichment failed")
				return
			}
			enr.Filings = trimFilings(set, opts.FilingsLimit)
		}()
	}

	wg.Wait()

	enr.Completeness = Completeness{
		HasQuote:   enr.Quote != nil,
		HasFilings: enr.Filings != nil && len(enr.Filings.Filings) > 0,
	}
	return enr
}

// trimFilings cuts the set down to limit entries and fixes up the
// derived counts and date range.
func trimFilings(set *domain.FilingSet, limit int) *domain.FilingSet {
	if set == nil {
		return nil
	}
	if limit <= 0 || limit >= len(set.Filings) {
		return set
	}

	trimmed := *set
	trimmed.Filings = set.Filings[:limit]
	trimmed.FilingsReturned = limit
	trimmed.DateRange = filingDateRange(trimmed.Filings)
	return &trimmed
}

func filingDateRange(filings []domain.Filing) *domain.DateRange {
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
