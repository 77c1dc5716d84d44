package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aristath/companylookup/internal/domain"
	"github.com/aristath/companylookup/internal/resolve"
)

// searchResponse represents the response from the Yahoo Finance search API
type searchResponse struct {
	Quotes []map[string]interface{} `json:"quotes"`
}

// ID identifies this source in logs and merge ordering
func (c *Client) ID() string {
	return "yahoo"
}

// Search queries Yahoo Finance for companies matching the query and
// scores each result. Results without a symbol or a usable name are
// skipped; Yahoo mixes in currencies, futures and indexes that carry
// no longname.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.CandidateMatch, error) {
	if limit <= 0 {
		limit = 10
	}
	if err := c.limiter.Wait(ctx, searchLimitKey); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Add("q", query)
	params.Add("lang", "en-US")
	params.Add("region", "US")
	params.Add("quotesCount", strconv.Itoa(limit))
	params.Add("newsCount", "0")

	reqURL := c.baseURL + "/v1/finance/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search Yahoo Finance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Yahoo Finance search returned status %d: %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	matches := make([]domain.CandidateMatch, 0, len(result.Quotes))
	for _, q := range result.Quotes {
		symbol := getString(q, "symbol", "")
		name := getString(q, "longname", "")
		if name == "" {
			name = getString(q, "shortname", "")
		}
		if symbol == "" || name == "" {
			continue
		}

		matches = append(matches, domain.CandidateMatch{
			Name:       name,
			Ticker:     symbol,
			CIK:        domain.UnknownCIK,
			Exchange:   getString(q, "exchange", ""),
			MatchScore: resolve.Score(query, name, symbol),
		})
	}

	c.log.Debug().
		Str("query", query).
		Int("results", len(matches)).
		Msg("Yahoo search completed")

	return matches, nil
}
