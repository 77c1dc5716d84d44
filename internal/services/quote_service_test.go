package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/companylookup/internal/domain"
)

func newTestQuoteService(quotes *stubQuoteSource) *QuoteService {
	return NewQuoteService(quotes, zerolog.Nop())
}

func TestQuoteNormalizesAndDelegates(t *testing.T) {
	quotes := &stubQuoteSource{quotes: map[string]*domain.Quote{"AAPL": appleQuote()}}
	svc := newTestQuoteService(quotes)

	quote, err := svc.Quote(context.Background(), "  aapl ")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
}

func TestQuoteRejectsInvalidSymbol(t *testing.T) {
	quotes := &stubQuoteSource{}
	svc := newTestQuoteService(quotes)

	_, err := svc.Quote(context.Background(), "NOT A SYMBOL")
	assert.ErrorIs(t, err, domain.ErrInvalidTicker)
	assert.Equal(t, int32(0), quotes.calls.Load())
}

func TestQuoteDetailDelegates(t *testing.T) {
	detail := &domain.QuoteDetail{Quote: *appleQuote()}
	quotes := &stubQuoteSource{details: map[string]*domain.QuoteDetail{"AAPL": detail}}
	svc := newTestQuoteService(quotes)

	got, err := svc.QuoteDetail(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)

	_, err = svc.QuoteDetail(context.Background(), "!!")
	assert.ErrorIs(t, err, domain.ErrInvalidTicker)
}

func TestBatchQuotesMixedOutcomes(t *testing.T) {
	msft := &domain.Quote{Symbol: "MSFT", Price: 420.5, Currency: "USD"}
	quotes := &stubQuoteSource{quotes: map[string]*domain.Quote{"AAPL": appleQuote(), "MSFT": msft}}
	svc := newTestQuoteService(quotes)

	result := svc.BatchQuotes(context.Background(), []string{"aapl", "MSFT", "MISS", "not valid"})

	assert.Equal(t, 4, result.Summary.TotalRequested)
	assert.Equal(t, 2, result.Summary.Successful)
	assert.Equal(t, 2, result.Summary.Failed)

	require.Contains(t, result.Quotes, "AAPL")
	require.Contains(t, result.Quotes, "MSFT")
	require.Contains(t, result.Quotes, "MISS")
	assert.NotNil(t, result.Quotes["AAPL"])
	assert.NotNil(t, result.Quotes["MSFT"])
	assert.Nil(t, result.Quotes["MISS"])

	// Invalid symbols keep a slot so the caller sees what was skipped.
	require.Contains(t, result.Quotes, "NOT VALID")
	assert.Nil(t, result.Quotes["NOT VALID"])
}

func TestBatchQuotesAllSucceed(t *testing.T) {
	quotes := &stubQuoteSource{quotes: map[string]*domain.Quote{"AAPL": appleQuote()}}
	svc := newTestQuoteService(quotes)

	result := svc.BatchQuotes(context.Background(), []string{"AAPL"})

	assert.Equal(t, BatchSummary{TotalRequested: 1, Successful: 1, Failed: 0}, result.Summary)
}

func TestBatchQuotesCollapsesDuplicateSymbols(t *testing.T) {
	quotes := &stubQuoteSource{quotes: map[string]*domain.Quote{"AAPL": appleQuote()}}
	svc := newTestQuoteService(quotes)

	result := svc.BatchQuotes(context.Background(), []string{"AAPL", "aapl"})

	// Two requests, one distinct symbol. The summary still counts the
	// request size, so the duplicate shows up as a failure.
	assert.Len(t, result.Quotes, 1)
	assert.Equal(t, 2, result.Summary.TotalRequested)
	assert.Equal(t, 1, result.Summary.Successful)
	assert.Equal(t, 1, result.Summary.Failed)
}

func TestBatchQuotesEmptyInput(t *testing.T) {
	svc := newTestQuoteService(&stubQuoteSource{})

	result := svc.BatchQuotes(context.Background(), nil)

	assert.Empty(t, result.Quotes)
	assert.Equal(t, BatchSummary{}, result.Summary)
}
