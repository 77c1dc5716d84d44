package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/companylookup/internal/domain"
)

// BatchSummary totals one batch quote request. Failed counts both
// invalid symbols and upstream misses.
type BatchSummary struct {
	TotalRequested int `json:"total_requested"`
	Successful     int `json:"successful"`
	Failed         int `json:"failed"`
}

// BatchResult maps each requested symbol to its quote, nil where the
// fetch failed.
type BatchResult struct {
	Quotes  map[string]*domain.Quote `json:"quotes"`
	Summary BatchSummary             `json:"summary"`
}

// QuoteService validates symbols and delegates to the quote source.
type QuoteService struct {
	quotes domain.QuoteSource
	log    zerolog.Logger
}

// NewQuoteService creates a QuoteService.
func NewQuoteService(quotes domain.QuoteSource, log zerolog.Logger) *QuoteService {
	return &QuoteService{
		quotes: quotes,
		log:    log.With().Str("service", "quote").Logger(),
	}
}

// Quote returns the current quote for a ticker symbol.
func (s *QuoteService) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	normalized, err := domain.ValidateTicker(symbol)
	if err != nil {
		return nil, err
	}
	return s.quotes.Quote(ctx, normalized)
}

// QuoteDetail returns the extended quote for a ticker symbol.
func (s *QuoteService) QuoteDetail(ctx context.Context, symbol string) (*domain.QuoteDetail, error) {
	normalized, err := domain.ValidateTicker(symbol)
	if err != nil {
		return nil, err
	}
	return s.quotes.QuoteDetail(ctx, normalized)
}

/**
 * BatchQuotes fetches quotes for several symbols concurrently.
 *
 * One goroutine per symbol; the per-symbol limiter keys inside the
 * client keep pacing independent, so a batch does not serialize.
 * Failures never abort the batch: a symbol that cannot be validated
 * or fetched gets a nil entry and counts as failed. The caller bounds
 * the batch size at the API boundary.
 */
func (s *QuoteService) BatchQuotes(ctx context.Context, symbols []string) *BatchResult {
	type slot struct {
		symbol string
		quote  *domain.Quote
	}
	slots := make([]slot, len(symbols))

	var wg sync.WaitGroup
	for i, symbol := range symbols {
		normalized, err := domain.ValidateTicker(symbol)
		if err != nil {
			s.log.Debug().Str("symbol", symbol).Msg("Skipping invalid batch symbol")
			slots[i] = slot{symbol: domain.NormalizeTicker(symbol)}
			continue
		}
		slots[i] = slot{symbol: normalized}

		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			quote, err := s.quotes.Quote(ctx, symbol)
			if err != nil {
				s.log.Warn().Err(err).Str("symbol", symbol).Msg("Batch quote fetch failed")
				return
			}
			slots[i].quote = quote
		}(i, normalized)
	}
	wg.Wait()

	result := &BatchResult{
		Quotes:  make(map[string]*domain.Quote, len(slots)),
		Summary: BatchSummary{TotalRequested: len(symbols)},
	}
	for _, sl := range slots {
		result.Quotes[sl.symbol] = sl.quote
	}
	for _, quote := range result.Quotes {
		if quote != nil {
			result.Summary.Successful++
		}
	}
	result.Summary.Failed = result.Summary.TotalRequested - result.Summary.Successful

	s.log.Debug().
		Int("requested", result.Summary.TotalRequested).
		Int("successful", result.Summary.Successful).
		Msg("Batch quotes completed")

	return result
}
