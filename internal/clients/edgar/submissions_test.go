package edgar

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aristath/companylookup/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const submissionsJSON = `{
	"cik": "320193",
	"name": "Apple Inc.",
	"filings": {
		"recent": {
			"accessionNumber": ["0000320193-24-000123", "000032019324000081", "0000320193-24-000069"],
			"filingDate": ["2024-11-01", "2024-08-02", "2024-05-03"],
			"reportDate": ["2024-09-28", "2024-06-29", ""],
			"form": ["10-K", "8-K", "10-Q"],
			"primaryDocument": ["aapl-20240928.htm", "", "aapl-20240330.htm"],
			"size": [3455982, 120034, 2981220],
			"isXBRL": [1, 0, 1],
			"isInlineXBRL": [1, 0, 1]
		}
	}
}`

func TestRecentFilingsParses(t *testing.T) {
	var capturedPath, capturedUA string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedUA = r.Header.Get("User-Agent")
		w.Write([]byte(submissionsJSON))
	})

	c := newTestClient(t, handler)
	fs, err := c.RecentFilings(context.Background(), "320193", 2)
	require.NoError(t, err)

	assert.Equal(t, "/submissions/CIK0000320193.json", capturedPath)
	assert.Equal(t, testUserAgent, capturedUA)

	assert.Equal(t, "0000320193", fs.CIK)
	assert.Equal(t, "Apple Inc.", fs.CompanyName)
	assert.Equal(t, 3, fs.TotalFilings)
	assert.Equal(t, 2, fs.FilingsReturned)
	require.Len(t, fs.Filings, 2)

	first := fs.Filings[0]
	assert.Equal(t, "10-K", first.Form)
	assert.Equal(t, "2024-11-01", first.FilingDate)
	assert.Equal(t, "0000320193-24-000123", first.AccessionNumber)
	assert.Equal(t, "2024-09-28", first.ReportDate)
	assert.Equal(t, int64(3455982), first.Size)
	assert.True(t, first.IsXBRL)
	assert.True(t, first.IsInlineXBRL)
	assert.Equal(t, "Apple Inc.", first.CompanyName)

	// The undashed accession number gets normalized and the missing
	// primary document falls back to a form-derived name.
	second := fs.Filings[1]
	assert.Equal(t, "0000320193-24-000081", second.AccessionNumber)
	assert.Contains(t, second.DocumentURL, "/000032019324000081/8k.htm")
	assert.False(t, second.IsXBRL)

	require.NotNil(t, fs.DateRange)
	assert.Equal(t, "2024-08-02", fs.DateRange.Earliest)
	assert.Equal(t, "2024-11-01", fs.DateRange.Latest)
}

func TestRecentFilingsDocumentURL(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(submissionsJSON))
	})

	c := newTestClient(t, handler)
	fs, err := c.RecentFilings(context.Background(), "320193", 1)
	require.NoError(t, err)
	require.Len(t, fs.Filings, 1)

	want := fmt.Sprintf("%s/Archives/edgar/data/0000320193/000032019324000123/aapl-20240928.htm", c.baseURL)
	assert.Equal(t, want, fs.Filings[0].DocumentURL)
}

func TestRecentFilingsUnknownCIK(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	c := newTestClient(t, handler)
	fs, err := c.RecentFilings(context.Background(), "999999999", 10)
	require.NoError(t, err, "a CIK unknown to EDGAR is not an error")

	assert.Equal(t, "0999999999", fs.CIK)
	assert.NotNil(t, fs.Filings)
	assert.Empty(t, fs.Filings)
	assert.Zero(t, fs.TotalFilings)
	assert.Nil(t, fs.DateRange)
}

func TestRecentFilingsInvalidCIK(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())
	_, err := c.RecentFilings(context.Background(), "no digits here", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidCIK)
}

func TestRecentFilingsRetriesAfterRateLimit(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(submissionsJSON))
	})

	c := newTestClient(t, handler)
	fs, err := c.RecentFilings(context.Background(), "320193", 1)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, fs.FilingsReturned)
}

func TestRecentFilingsGivesUpAfterSecondRateLimit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	c := newTestClient(t, handler)
	_, err := c.RecentFilings(context.Background(), "320193", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestRecentFilingsCached(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(submissionsJSON))
	})

	c := newTestClient(t, handler)
	ctx := context.Background()

	first, err := c.RecentFilings(ctx, "320193", 2)
	require.NoError(t, err)
	second, err := c.RecentFilings(ctx, "0000320193", 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "same CIK and limit must hit the cache")

	// A different limit is a different cache entry.
	_, err = c.RecentFilings(ctx, "320193", 3)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFormatAccessionNumber(t *testing.T) {
	assert.Equal(t, "0000320193-24-000123", formatAccessionNumber("0000320193-24-000123"))
	assert.Equal(t, "0000320193-24-000123", formatAccessionNumber("000032019324000123"))
	assert.Equal(t, "not-an-accession", formatAccessionNumber("not-an-accession"))
	assert.Equal(t, "", formatAccessionNumber(""))
}

func TestNormalizeFilingDate(t *testing.T) {
	assert.Equal(t, "2024-11-01", normalizeFilingDate("2024-11-01"))

	today := time.Now().UTC().Format("2006-01-02")
	assert.Equal(t, today, normalizeFilingDate("garbage"))
	assert.Equal(t, today, normalizeFilingDate(""))
}
