package enrich

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/companylookup/internal/domain"
)

type stubQuoteSource struct {
	quote *domain.Quote
	err   error
	calls atomic.Int32
}

func (s *stubQuoteSource) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.quote, nil
}

func (s *stubQuoteSource) QuoteDetail(ctx context.Context, symbol string) (*domain.QuoteDetail, error) {
	return nil, errors.New("not used")
}

type stubFilingsSource struct {
	set       *domain.FilingSet
	err       error
	calls     atomic.Int32
	lastLimit atomic.Int32
}

func (s *stubFilingsSource) RecentFilings(ctx context.Context, cik string, limit int) (*domain.FilingSet, error) {
	s.calls.Add(1)
	s.lastLimit.Store(int32(limit))
	if s.err != nil {
		return nil, s.err
	}
	return s.set, nil
}

func testQuote() *domain.Quote {
	return &domain.Quote{Symbol: "AAPL", Price: 150.25, Currency: "USD", LastUpdated: time.Now().UTC()}
}

func testFilingSet(n int) *domain.FilingSet {
	set := &domain.FilingSet{CIK: "0000320193", TotalFilings: 100}
	for i := 0; i < n; i++ {
		set.Filings = append(set.Filings, domain.Filing{
			Form:       "10-Q",
			FilingDate: time.Date(2024, time.December, 20-i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			CIK:        "0000320193",
		})
	}
	set.FilingsReturned = n
	if n > 0 {
		set.DateRange = &domain.DateRange{
			Earliest: set.Filings[n-1].FilingDate,
			Latest:   set.Filings[0].FilingDate,
		}
	}
	return set
}

func newTestEnricher(quotes *stubQuoteSource, filings *stubFilingsSource) *Enricher {
	return New(quotes, filings, zerolog.Nop())
}

func resolvedCompany() domain.Company {
	return domain.Company{Name: "Apple Inc.", Ticker: "AAPL", CIK: "0000320193"}
}

func TestEnrichFetchesBothBranches(t *testing.T) {
	quotes := &stubQuoteSource{quote: testQuote()}
	filings := &stubFilingsSource{set: testFilingSet(3)}
	e := newTestEnricher(quotes, filings)

	enr := e.Enrich(context.Background(), resolvedCompany(), DefaultOptions())

	require.NotNil(t, enr.Quote)
	require.NotNil(t, enr.Filings)
	assert.Equal(t, "AAPL", enr.Quote.Symbol)
	assert.True(t, enr.Completeness.HasQuote)
	assert.True(t, enr.Completeness.HasFilings)
	assert.Equal(t, int32(1), quotes.calls.Load())
	assert.Equal(t, int32(1), filings.calls.Load())
}

func TestEnrichFetchesFixedFilingsWindow(t *testing.T) {
	quotes := &stubQuoteSource{quote: testQuote()}
	filings := &stubFilingsSource{set: testFilingSet(10)}
	e := newTestEnricher(quotes, filings)

	opts := DefaultOptions()
	opts.FilingsLimit = 3
	enr := e.Enrich(context.Background(), resolvedCompany(), opts)

	// Upstream is always asked for the full window, trimming is local.
	assert.Equal(t, int32(maxFilingsFetch), filings.lastLimit.Load())
	require.NotNil(t, enr.Filings)
	assert.Len(t, enr.Filings.Filings, 3)
	assert.Equal(t, 3, enr.Filings.FilingsReturned)
	assert.Equal(t, 100, enr.Filings.TotalFilings)
	require.NotNil(t, enr.Filings.DateRange)
	assert.Equal(t, "2024-12-18", enr.Filings.DateRange.Earliest)
	assert.Equal(t, "2024-12-20", enr.Filings.DateRange.Latest)
}

func TestEnrichTrimLeavesSmallSetsAlone(t *testing.T) {
	quotes := &stubQuoteSource{quote: testQuote()}
	filings := &stubFilingsSource{set: testFilingSet(2)}
	e := newTestEnricher(quotes, filings)

	opts := DefaultOptions()
	opts.FilingsLimit = 5
	enr := e.Enrich(context.Background(), resolvedCompany(), opts)

	require.NotNil(t, enr.Filings)
	assert.Len(t, enr.Filings.Filings, 2)
	assert.Equal(t, 2, enr.Filings.FilingsReturned)
}

func TestEnrichSkipsFilingsWithoutCIK(t *testing.T) {
	quotes := &stubQuoteSource{quote: testQuote()}
	filings := &stubFilingsSource{set: testFilingSet(3)}
	e := newTestEnricher(quotes, filings)

	company := resolvedCompany()
	company.CIK = domain.UnknownCIK
	enr := e.Enrich(context.Background(), company, DefaultOptions())

	assert.Nil(t, enr.Filings)
	assert.False(t, enr.Completeness.HasFilings)
	assert.Equal(t, int32(0), filings.calls.Load())
	assert.True(t, enr.Completeness.HasQuote)
}

func TestEnrichSkipsDisabledBranches(t *testing.T) {
	quotes := &stubQuoteSource{quote: testQuote()}
	filings := &stubFilingsSource{set: testFilingSet(3)}
	e := newTestEnricher(quotes, filings)

	enr := e.Enrich(context.Background(), resolvedCompany(), Options{})

	assert.Nil(t, enr.Quote)
	assert.Nil(t, enr.Filings)
	assert.Equal(t, int32(0), quotes.calls.Load())
	assert.Equal(t, int32(0), filings.calls.Load())
	assert.False(t, enr.Completeness.HasQuote)
	assert.False(t, enr.Completeness.HasFilings)
}

func TestEnrichQuoteFailureDegrades(t *testing.T) {
	quotes := &stubQuoteSource{err: errors.New("upstream down")}
	filings := &stubFilingsSource{set: testFilingSet(3)}
	e := newTestEnricher(quotes, filings)

	enr := e.Enrich(context.Background(), resolvedCompany(), DefaultOptions())

	assert.Nil(t, enr.Quote)
	assert.False(t, enr.Completeness.HasQuote)
	require.NotNil(t, enr.Filings)
	assert.True(t, enr.Completeness.HasFilings)
}

func TestEnrichFilingsFailureDegrades(t *testing.T) {
	quotes := &stubQuoteSource{quote: testQuote()}
	filings := &stubFilingsSource{err: errors.New("sec unavailable")}
	e := newTestEnricher(quotes, filings)

	enr := e.Enrich(context.Background(), resolvedCompany(), DefaultOptions())

	require.NotNil(t, enr.Quote)
	assert.Nil(t, enr.Filings)
	assert.True(t, enr.Completeness.HasQuote)
	assert.False(t, enr.Completeness.HasFilings)
}

func TestEnrichEmptyFilingSetIsNotComplete(t *testing.T) {
	quotes := &stubQuoteSource{quote: testQuote()}
	filings := &stubFilingsSource{set: &domain.FilingSet{CIK: "0000320193", Filings: []domain.Filing{}}}
	e := newTestEnricher(quotes, filings)

	enr := e.Enrich(context.Background(), resolvedCompany(), DefaultOptions())

	require.NotNil(t, enr.Filings)
	assert.False(t, enr.Completeness.HasFilings)
}

func TestEnrichSkipsQuoteWithoutTicker(t *testing.T) {
	quotes := &stubQuoteSource{quote: testQuote()}
	filings := &stubFilingsSource{set: testFilingSet(1)}
	e := newTestEnricher(quotes, filings)

	company := resolvedCompany()
	company.Ticker = ""
	enr := e.Enrich(context.Background(), company, DefaultOptions())

	assert.Nil(t, enr.Quote)
	assert.Equal(t, int32(0), quotes.calls.Load())
	assert.True(t, enr.Completeness.HasFilings)
}
