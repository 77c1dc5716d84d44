package edgar

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/companylookup/internal/cache"
	"github.com/aristath/companylookup/internal/ratelimit"
	"github.com/rs/zerolog"
)

const testUserAgent = "companylookup-tests/1.0 (test@example.com)"

// newTestClient points both EDGAR hosts at a local test server with
// pacing reduced to nothing so tests stay fast.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	limiter := ratelimit.New(zerolog.Nop())
	limiter.SetInterval(directoryLimitKey, time.Millisecond)
	limiter.SetInterval(submissionsLimitKey, time.Millisecond)

	return NewClient(Config{
		BaseURL:      server.URL,
		DataBaseURL:  server.URL,
		UserAgent:    testUserAgent,
		Cache:        cache.New(),
		Limiter:      limiter,
		FilingsTTL:   time.Minute,
		DirectoryTTL: time.Minute,
	}, zerolog.Nop())
}
