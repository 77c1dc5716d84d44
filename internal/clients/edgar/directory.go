package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/aristath/companylookup/internal/cache"
	"github.com/aristath/companylookup/internal/domain"
	"github.com/aristath/companylookup/internal/resolve"
)

// directoryEntry is one row of the SEC company ticker directory.
type directoryEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// ID identifies this source in logs and merge ordering
func (c *Client) ID() string {
	return "sec_edgar"
}

// Search scans the SEC ticker directory and scores every entry
// against the query. Only candidates clearing the relevance floor are
// returned, best first. The directory covers all SEC registrants, so
// every hit carries an authoritative CIK.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.CandidateMatch, error) {
	if limit <= 0 {
		limit = 10
	}

	entries, err := c.directory(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]domain.CandidateMatch, 0, limit)
	for _, e := range entries {
		score := resolve.Score(query, e.Title, e.Ticker)
		if score <= resolve.MinScore {
			continue
		}
		matches = append(matches, domain.CandidateMatch{
			Name:   e.Title,
			Ticker: e.Ticker,
			CIK:    fmt.Sprintf("%010d", e.CIK),
			// The plain ticker directory carries no exchange field.
			Exchange:   "NASDAQ",
			MatchScore: score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	c.log.Debug().
		Str("query", query).
		Int("results", len(matches)).
		Msg("Directory search completed")

	return matches, nil
}

// directory returns the full ticker directory, fetching it at most
// once per TTL. Entries keep the file's own ordering so tied scores
// rank deterministically.
func (c *Client) directory(ctx context.Context) ([]directoryEntry, error) {
	cacheKey := cache.Key("directory")
	if entries, ok := cache.GetAs[[]directoryEntry](c.cache, cacheKey); ok {
		return entries, nil
	}

	if err := c.limiter.Wait(ctx, directoryLimitKey); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + "/files/company_tickers.json"
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ticker directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("SEC directory returned status %d: %s", resp.StatusCode, string(body))
	}

	// The file is a JSON object keyed "0", "1", ... in registration
	// order; restore that order after decoding.
	var raw map[string]directoryEntry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse ticker directory: %w", err)
	}

	keys := make([]int, 0, len(raw))
	byIndex := make(map[int]directoryEntry, len(raw))
	for k, e := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		keys = append(keys, idx)
		byIndex[idx] = e
	}
	sort.Ints(keys)

	entries := make([]directoryEntry, 0, len(keys))
	for _, idx := range keys {
		entries = append(entries, byIndex[idx])
	}

	c.cache.Put(cacheKey, entries, c.directoryTTL)
	c.log.Info().
		Int("entries", len(entries)).
		Msg("Loaded SEC ticker directory")

	return entries, nil
}
