package domain

import "errors"

// Sentinel errors for lookup outcomes. Callers wrap these with
// fmt.Errorf("...: %w", err) and match with errors.Is at the API boundary.
var (
	// ErrCompanyNotFound means no source produced a usable match
	ErrCompanyNotFound = errors.New("company not found")

	// ErrQuoteNotFound means every quote fallback came back empty
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrInvalidTicker means the symbol failed format validation
	ErrInvalidTicker = errors.New("invalid ticker symbol")

	// ErrInvalidCIK means the CIK failed format validation
	ErrInvalidCIK = errors.New("invalid CIK")

	// ErrInvalidQuery means the search query failed validation
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrRateLimited means an upstream kept throttling us after retries
	ErrRateLimited = errors.New("upstream rate limited")
)
