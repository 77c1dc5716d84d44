package domain

import "context"

// SearchSource defines a company search adapter. Each upstream (Yahoo
// Finance, SEC EDGAR) implements this so the resolution pipeline can
// fan out without knowing transport details.
type SearchSource interface {
	// ID identifies the source in logs and merge ordering
	ID() string

	// Search returns scored candidates for a free-text query.
	// Implementations must already rate-limit their outbound calls.
	Search(ctx context.Context, query string, limit int) ([]CandidateMatch, error)
}

// QuoteSource defines market data operations for a ticker symbol
type QuoteSource interface {
	// Quote returns the current snapshot, or ErrQuoteNotFound when
	// every upstream fallback came back empty
	Quote(ctx context.Context, symbol string) (*Quote, error)

	// QuoteDetail returns the snapshot plus fundamentals
	QuoteDetail(ctx context.Context, symbol string) (*QuoteDetail, error)
}

// FilingsSource defines regulatory filing operations for a CIK
type FilingsSource interface {
	// RecentFilings returns up to limit filings, newest first.
	// A company with no filings yields an empty set, not an error.
	RecentFilings(ctx context.Context, cik string, limit int) (*FilingSet, error)
}
