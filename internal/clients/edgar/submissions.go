package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/companylookup/internal/cache"
	"github.com/aristath/companylookup/internal/domain"
)

// submissionsResponse mirrors the EDGAR submissions payload. Filing
// attributes arrive as parallel arrays indexed together, newest first.
type submissionsResponse struct {
	Name    string `json:"name"`
	Filings struct {
		Recent struct {
			AccessionNumber []string `json:"accessionNumber"`
			FilingDate      []string `json:"filingDate"`
			ReportDate      []string `json:"reportDate"`
			Form            []string `json:"form"`
			PrimaryDocument []string `json:"primaryDocument"`
			Size            []int64  `json:"size"`
			IsXBRL          []int    `json:"isXBRL"`
			IsInlineXBRL    []int    `json:"isInlineXBRL"`
		} `json:"recent"`
	} `json:"filings"`
}

// RecentFilings returns up to limit filings for a CIK, newest first.
// A CIK unknown to EDGAR yields an empty set, not an error; plenty of
// real companies have no SEC registration.
func (c *Client) RecentFilings(ctx context.Context, cik string, limit int) (*domain.FilingSet, error) {
	padded := domain.NormalizeCIK(cik)
	if padded == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCIK, cik)
	}
	if limit <= 0 {
		limit = 10
	}

	cacheKey := cache.Key("filings", padded, strconv.Itoa(limit))
	if fs, ok := cache.GetAs[*domain.FilingSet](c.cache, cacheKey); ok {
		c.log.Debug().Str("cik", padded).Msg("Filings cache hit")
		return fs, nil
	}

	if err := c.limiter.Wait(ctx, submissionsLimitKey); err != nil {
		return nil, err
	}

	payload, found, err := c.fetchSubmissions(ctx, padded)
	if err != nil {
		return nil, err
	}

	fs := &domain.FilingSet{
		CIK:     padded,
		Filings: []domain.Filing{},
	}

	if found {
		recent := payload.Filings.Recent
		total := len(recent.Form)
		count := total
		if count > limit {
			count = limit
		}

		filings := make([]domain.Filing, 0, count)
		for i := 0; i < count; i++ {
			accession := formatAccessionNumber(stringAt(recent.AccessionNumber, i))
			f := domain.Filing{
				Form:            recent.Form[i],
				FilingDate:      normalizeFilingDate(stringAt(recent.FilingDate, i)),
				AccessionNumber: accession,
				DocumentURL:     c.documentURL(padded, accession, stringAt(recent.PrimaryDocument, i), recent.Form[i]),
				CIK:             padded,
				CompanyName:     payload.Name,
				ReportDate:      stringAt(recent.ReportDate, i),
			}
			if i < len(recent.Size) {
				f.Size = recent.Size[i]
			}
			if i < len(recent.IsXBRL) {
				f.IsXBRL = recent.IsXBRL[i] == 1
			}
			if i < len(recent.IsInlineXBRL) {
				f.IsInlineXBRL = recent.IsInlineXBRL[i] == 1
			}
			filings = append(filings, f)
		}

		fs.CompanyName = payload.Name
		fs.Filings = filings
		fs.TotalFilings = total
		fs.FilingsReturned = len(filings)
		fs.DateRange = dateRange(filings)
	}

	c.cache.Put(cacheKey, fs, c.filingsTTL)
	c.log.Debug().
		Str("cik", padded).
		Int("total", fs.TotalFilings).
		Int("returned", fs.FilingsReturned).
		Msg("Fetched filings")

	return fs, nil
}

// fetchSubmissions performs the submissions API call. found is false
// when EDGAR does not know the CIK. A 429 is retried once after a
// short pause per SEC fair-use guidance.
func (c *Client) fetchSubmissions(ctx context.Context, paddedCIK string) (*submissionsResponse, bool, error) {
	reqURL := c.dataBaseURL + "/submissions/CIK" + paddedCIK + ".json"

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return nil, false, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, false, fmt.Errorf("failed to fetch submissions: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var payload submissionsResponse
			err := json.NewDecoder(resp.Body).Decode(&payload)
			resp.Body.Close()
			if err != nil {
				return nil, false, fmt.Errorf("failed to parse submissions: %w", err)
			}
			return &payload, true, nil

		case http.StatusNotFound:
			resp.Body.Close()
			return nil, false, nil

		case http.StatusTooManyRequests:
			resp.Body.Close()
			if attempt > 0 {
				return nil, false, fmt.Errorf("SEC submissions for CIK %s: %w", paddedCIK, domain.ErrRateLimited)
			}
			c.log.Warn().
				Str("cik", paddedCIK).
				Msg("SEC rate limit hit, retrying once")
			select {
			case <-ctx.Done():
				return nil, false, ctx.Err()
			case <-time.After(time.Second):
			}

		default:
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, false, fmt.Errorf("SEC submissions returned status %d: %s", resp.StatusCode, string(body))
		}
	}
}

// formatAccessionNumber normalizes an accession number to the dashed
// 0000320193-24-000123 form. Inputs that are not 18 digits once
// dashes are stripped pass through unchanged.
func formatAccessionNumber(raw string) string {
	digits := strings.ReplaceAll(raw, "-", "")
	if len(digits) != 18 {
		return raw
	}
	return digits[:10] + "-" + digits[10:12] + "-" + digits[12:]
}

// documentURL builds the Archives URL for a filing's primary document.
// Filings without a primary document get a best-effort name derived
// from the form type.
func (c *Client) documentURL(paddedCIK, accession, primaryDoc, form string) string {
	if primaryDoc == "" {
		primaryDoc = strings.ToLower(strings.ReplaceAll(form, "-", "")) + ".htm"
	}
	noDashes := strings.ReplaceAll(accession, "-", "")
	return fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s", c.baseURL, paddedCIK, noDashes, primaryDoc)
}

// normalizeFilingDate keeps valid YYYY-MM-DD values and replaces
// anything else with today's date.
func normalizeFilingDate(raw string) string {
	if _, err := time.Parse("2006-01-02", raw); err == nil {
		return raw
	}
	return time.Now().UTC().Format("2006-01-02")
}

// dateRange spans the earliest and latest dates of the returned
// filings. ISO dates compare correctly as strings.
func dateRange(filings []domain.Filing) *domain.DateRange {
	if len(filings) == 0 {
		return nil
	}
	earliest, latest := filings[0].FilingDate, filings[0].FilingDate
	for _, f := range filings[1:] {
		if f.FilingDate < earliest {
			earliest = f.FilingDate
		}
		if f.FilingDate > latest {
			latest = f.FilingDate
		}
	}
	return &domain.DateRange{Earliest: earliest, Latest: latest}
}

func stringAt(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}
