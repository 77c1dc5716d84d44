package yahoo

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/companylookup/internal/cache"
	"github.com/aristath/companylookup/internal/ratelimit"
	"github.com/rs/zerolog"
)

// newTestClient points a client at a local test server with pacing
// reduced to nothing so tests stay fast.
func newTestClient(t *testing.T, handler http.Handler, maxRetries int) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	limiter := ratelimit.New(zerolog.Nop())
	limiter.SetInterval(searchLimitKey, time.Millisecond)
	limiter.SetInterval(quoteLimitKey, time.Millisecond)

	return NewClient(Config{
		BaseURL:    server.URL,
		Cache:      cache.New(),
		Limiter:    limiter,
		QuoteTTL:   time.Minute,
		MaxRetries: maxRetries,
	}, zerolog.Nop())
}
