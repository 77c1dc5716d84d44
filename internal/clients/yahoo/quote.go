package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aristath/companylookup/internal/cache"
	"github.com/aristath/companylookup/internal/domain"
)

// quoteFields is what the v7 quote endpoint is asked for. Yahoo only
// returns fields it has, so missing fundamentals simply come back absent.
const quoteFields = "symbol,currency,marketState,regularMarketPrice,currentPrice," +
	"previousClose,regularMarketPreviousClose,regularMarketVolume,marketCap," +
	"preMarketPrice,postMarketPrice,regularMarketOpen,regularMarketDayHigh," +
	"regularMarketDayLow,averageDailyVolume3Month,fiftyTwoWeekHigh,fiftyTwoWeekLow," +
	"trailingPE,epsTrailingTwelveMonths,trailingAnnualDividendYield,beta," +
	"sharesOutstanding,longName,shortName"

// quoteResponse represents the response from the v7 quote API
type quoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}

// chartResponse carries the meta block of the v8 chart API, the
// fallback when the quote endpoint misbehaves
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta map[string]interface{} `json:"meta"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// Quote returns the current market snapshot for a symbol. The v7
// quote endpoint is tried first with retries; on failure the v8 chart
// endpoint supplies a reduced snapshot. Only when both come back
// empty does this return ErrQuoteNotFound.
func (c *Client) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol = domain.NormalizeTicker(symbol)

	cacheKey := cache.Key("quote", symbol)
	if q, ok := cache.GetAs[*domain.Quote](c.cache, cacheKey); ok {
		c.log.Debug().Str("symbol", symbol).Msg("Quote cache hit")
		return q, nil
	}

	if err := c.limiter.Wait(ctx, quoteLimitKey+":"+symbol); err != nil {
		return nil, err
	}

	info, err := c.fetchQuoteInfo(ctx, symbol)
	if err == nil {
		if q := quoteFromInfo(symbol, info); q != nil {
			c.cache.Put(cacheKey, q, c.quoteTTL)
			return q, nil
		}
	} else {
		c.log.Warn().Err(err).
			Str("symbol", symbol).
			Msg("Quote endpoint failed, falling back to chart")
	}

	meta, chartErr := c.fetchChartMeta(ctx, symbol)
	if chartErr != nil {
		c.log.Warn().Err(chartErr).
			Str("symbol", symbol).
			Msg("Chart fallback failed")
		return nil, fmt.Errorf("%w: %s", domain.ErrQuoteNotFound, symbol)
	}

	q := quoteFromChartMeta(symbol, meta)
	if q == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrQuoteNotFound, symbol)
	}

	c.cache.Put(cacheKey, q, c.quoteTTL)
	return q, nil
}

// QuoteDetail returns the snapshot plus fundamentals. The chart
// fallback carries no fundamentals, so a degraded detail view may
// hold only the base quote fields.
func (c *Client) QuoteDetail(ctx context.Context, symbol string) (*domain.QuoteDetail, error) {
	symbol = domain.NormalizeTicker(symbol)

	cacheKey := cache.Key("quotedetail", symbol)
	if d, ok := cache.GetAs[*domain.QuoteDetail](c.cache, cacheKey); ok {
		c.log.Debug().Str("symbol", symbol).Msg("Quote detail cache hit")
		return d, nil
	}

	if err := c.limiter.Wait(ctx, quoteLimitKey+":"+symbol); err != nil {
		return nil, err
	}

	info, err := c.fetchQuoteInfo(ctx, symbol)
	if err == nil {
		if d := detailFromInfo(symbol, info); d != nil {
			c.cache.Put(cacheKey, d, c.quoteTTL)
			return d, nil
		}
	} else {
		c.log.Warn().Err(err).
			Str("symbol", symbol).
			Msg("Quote endpoint failed, falling back to chart")
	}

	meta, chartErr := c.fetchChartMeta(ctx, symbol)
	if chartErr != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrQuoteNotFound, symbol)
	}

	q := quoteFromChartMeta(symbol, meta)
	if q == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrQuoteNotFound, symbol)
	}

	d := &domain.QuoteDetail{Quote: *q}
	if prev := firstFloat(meta, "previousClose", "chartPreviousClose"); prev != nil {
		d.PreviousClose = prev
	}

	c.cache.Put(cacheKey, d, c.quoteTTL)
	return d, nil
}

// fetchQuoteInfo fetches the v7 quote payload with exponential backoff
// between attempts.
func (c *Client) fetchQuoteInfo(ctx context.Context, symbol string) (map[string]interface{}, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		info, err := c.requestQuote(ctx, symbol)
		if err == nil {
			return info, nil
		}
		lastErr = err

		if attempt < c.maxRetries-1 {
			waitTime := time.Duration(1<<uint(attempt)) * time.Second // exponential backoff
			c.log.Warn().Err(err).
				Str("symbol", symbol).
				Int("attempt", attempt+1).
				Dur("wait", waitTime).
				Msg("Failed to fetch quote, retrying")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(waitTime):
			}
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

// requestQuote performs a single v7 quote call.
func (c *Client) requestQuote(ctx context.Context, symbol string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Add("symbols", symbol)
	params.Add("fields", quoteFields)

	reqURL := c.baseURL + "/v7/finance/quote?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Yahoo Finance API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse quote response: %w", err)
	}

	if result.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("Yahoo Finance API error: %v", result.QuoteResponse.Error)
	}
	if len(result.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote data returned for symbol %s", symbol)
	}

	return result.QuoteResponse.Result[0], nil
}

// fetchChartMeta performs a single v8 chart call and returns its meta
// block.
func (c *Client) fetchChartMeta(ctx context.Context, symbol string) (map[string]interface{}, error) {
	reqURL := c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Yahoo Finance chart API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("Yahoo Finance chart API error: %v", result.Chart.Error)
	}
	if len(result.Chart.Result) == 0 || result.Chart.Result[0].Meta == nil {
		return nil, fmt.Errorf("no chart data returned for symbol %s", symbol)
	}

	return result.Chart.Result[0].Meta, nil
}

// quoteFromInfo builds a Quote from a v7 payload. Returns nil when no
// positive price is present, which sends the caller to the fallback.
func quoteFromInfo(symbol string, info map[string]interface{}) *domain.Quote {
	price := firstFloat(info, "currentPrice", "regularMarketPrice")
	if price == nil || *price <= 0 {
		return nil
	}

	q := &domain.Quote{
		Symbol:      symbol,
		Price:       round2(*price),
		Currency:    currencyOrDefault(info),
		Volume:      getInt64OrZero(info, "regularMarketVolume"),
		MarketCap:   getFloat64(info, "marketCap"),
		MarketState: marketStateFromInfo(info),
		LastUpdated: time.Now().UTC(),
	}
	applyChange(q, firstFloat(info, "previousClose", "regularMarketPreviousClose"))
	return q
}

// quoteFromChartMeta builds a reduced Quote from a v8 chart meta
// block. The chart endpoint reports no session data, so the market
// state is unknown.
func quoteFromChartMeta(symbol string, meta map[string]interface{}) *domain.Quote {
	price := getFloat64(meta, "regularMarketPrice")
	if price == nil || *price <= 0 {
		return nil
	}

	q := &domain.Quote{
		Symbol:      symbol,
		Price:       round2(*price),
		Currency:    currencyOrDefault(meta),
		Volume:      getInt64OrZero(meta, "regularMarketVolume"),
		MarketState: domain.MarketStateUnknown,
		LastUpdated: time.Now().UTC(),
	}
	applyChange(q, firstFloat(meta, "previousClose", "chartPreviousClose"))
	return q
}

// detailFromInfo builds a QuoteDetail from a v7 payload.
func detailFromInfo(symbol string, info map[string]interface{}) *domain.QuoteDetail {
	base := quoteFromInfo(symbol, info)
	if base == nil {
		return nil
	}

	return &domain.QuoteDetail{
		Quote:             *base,
		Open:              getFloat64(info, "regularMarketOpen"),
		DayHigh:           getFloat64(info, "regularMarketDayHigh"),
		DayLow:            getFloat64(info, "regularMarketDayLow"),
		PreviousClose:     firstFloat(info, "previousClose", "regularMarketPreviousClose"),
		AverageVolume:     getInt64(info, "averageDailyVolume3Month"),
		FiftyTwoWeekHigh:  getFloat64(info, "fiftyTwoWeekHigh"),
		FiftyTwoWeekLow:   getFloat64(info, "fiftyTwoWeekLow"),
		PERatio:           getFloat64(info, "trailingPE"),
		EPS:               getFloat64(info, "epsTrailingTwelveMonths"),
		DividendYield:     getFloat64(info, "trailingAnnualDividendYield"),
		Beta:              getFloat64(info, "beta"),
		SharesOutstanding: getInt64(info, "sharesOutstanding"),
	}
}

// applyChange fills Change and ChangePercent when a positive previous
// close is known. Without one both stay nil.
func applyChange(q *domain.Quote, prevClose *float64) {
	if prevClose == nil || *prevClose <= 0 {
		return
	}
	change := round2(q.Price - *prevClose)
	pct := round2((q.Price - *prevClose) / *prevClose * 100)
	q.Change = &change
	q.ChangePercent = &pct
}

// marketStateFromInfo maps Yahoo's marketState to ours. Yahoo also
// reports variants like PREPRE and POSTPOST; those fall through to
// inference from which price fields are populated.
func marketStateFromInfo(info map[string]interface{}) domain.MarketState {
	switch strings.ToUpper(getString(info, "marketState", "")) {
	case "REGULAR":
		return domain.MarketStateRegular
	case "CLOSED":
		return domain.MarketStateClosed
	case "PRE":
		return domain.MarketStatePre
	case "POST":
		return domain.MarketStatePost
	}

	switch {
	case getFloat64(info, "regularMarketPrice") != nil:
		return domain.MarketStateRegular
	case getFloat64(info, "preMarketPrice") != nil:
		return domain.MarketStatePre
	case getFloat64(info, "postMarketPrice") != nil:
		return domain.MarketStatePost
	}
	return domain.MarketStateClosed
}

// currencyOrDefault returns the uppercased currency code, defaulting
// to USD.
func currencyOrDefault(m map[string]interface{}) string {
	currency := strings.ToUpper(strings.TrimSpace(getString(m, "currency", "")))
	if currency == "" {
		return "USD"
	}
	return currency
}

// firstFloat returns the first present key's value.
func firstFloat(m map[string]interface{}, keys ...string) *float64 {
	for _, key := range keys {
		if v := getFloat64(m, key); v != nil {
			return v
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
