// Package domain provides core domain models and types.
package domain

import "time"

// UnknownCIK is the placeholder identifier for candidates coming from
// sources that do not track SEC registration. Filings lookups are skipped
// for companies carrying it.
const UnknownCIK = "0000000000"

// MarketState represents the trading session a quote was captured in
type MarketState string

const (
	// MarketStateRegular means normal trading hours
	MarketStateRegular MarketState = "REGULAR"
	// MarketStatePre means pre-market trading
	MarketStatePre MarketState = "PRE"
	// MarketStatePost means after-hours trading
	MarketStatePost MarketState = "POST"
	// MarketStateClosed means the market is closed
	MarketStateClosed MarketState = "CLOSED"
	// MarketStateUnknown means the upstream gave no session information
	MarketStateUnknown MarketState = "UNKNOWN"
)

// CandidateMatch is a single scored search result from one data source
type CandidateMatch struct {
	Name       string  `json:"name"`
	Ticker     string  `json:"ticker"`
	CIK        string  `json:"cik"`      // Zero-padded 10 digits, UnknownCIK when the source has none
	Exchange   string  `json:"exchange"` // Best-effort, sources disagree on naming
	MatchScore float64 `json:"match_score"`
}

// HasCIK reports whether the candidate carries a real SEC identifier
func (c CandidateMatch) HasCIK() bool {
	return c.CIK != "" && c.CIK != UnknownCIK
}

// Company is a resolved company identity
type Company struct {
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
	CIK      string `json:"cik"`
	Exchange string `json:"exchange"`
}

// HasCIK reports whether the company carries a real SEC identifier
func (c Company) HasCIK() bool {
	return c.CIK != "" && c.CIK != UnknownCIK
}

// Quote is a point-in-time market snapshot for one symbol.
// Change and ChangePercent are nil when the upstream gave no previous
// close to compute them from.
type Quote struct {
	Symbol        string      `json:"symbol"`
	Price         float64     `json:"price"`
	Currency      string      `json:"currency"`
	Change        *float64    `json:"change"`
	ChangePercent *float64    `json:"change_percent"`
	Volume        int64       `json:"volume"`
	MarketCap     *float64    `json:"market_cap,omitempty"`
	MarketState   MarketState `json:"market_state"`
	LastUpdated   time.Time   `json:"last_updated"`
}

// QuoteDetail extends Quote with fundamentals for the detailed stock view.
// All extended fields use pointers for optional data (nil = not reported).
type QuoteDetail struct {
	Quote
	Open              *float64 `json:"open,omitempty"`
	DayHigh           *float64 `json:"day_high,omitempty"`
	DayLow            *float64 `json:"day_low,omitempty"`
	PreviousClose     *float64 `json:"previous_close,omitempty"`
	AverageVolume     *int64   `json:"avg_volume,omitempty"`
	FiftyTwoWeekHigh  *float64 `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow   *float64 `json:"fifty_two_week_low,omitempty"`
	PERatio           *float64 `json:"pe_ratio,omitempty"`
	EPS               *float64 `json:"eps,omitempty"`
	DividendYield     *float64 `json:"dividend_yield,omitempty"`
	Beta              *float64 `json:"beta,omitempty"`
	SharesOutstanding *int64   `json:"shares_outstanding,omitempty"`
}

// Filing is a single SEC EDGAR filing
type Filing struct {
	Form            string `json:"form"`        // e.g. "10-K", "8-K", "10-Q"
	FilingDate      string `json:"filing_date"` // YYYY-MM-DD format
	AccessionNumber string `json:"accession_number"`
	DocumentURL     string `json:"document_url"`
	CIK             string `json:"cik"`
	CompanyName     string `json:"company_name,omitempty"`
	ReportDate      string `json:"report_date,omitempty"` // YYYY-MM-DD format
	Size            int64  `json:"size,omitempty"`
	IsXBRL          bool   `json:"is_xbrl"`
	IsInlineXBRL    bool   `json:"is_inline_xbrl"`
}

// DateRange spans the earliest and latest filing dates in a result set
type DateRange struct {
	Earliest string `json:"earliest"` // YYYY-MM-DD format
	Latest   string `json:"latest"`   // YYYY-MM-DD format
}

// FilingSet is a page of filings for one company plus counts over the
// full filing history known upstream
type FilingSet struct {
	CIK             string     `json:"cik"`
	CompanyName     string     `json:"company_name,omitempty"`
	Filings         []Filing   `json:"filings"`
	TotalFilings    int        `json:"total_filings"`    // All filings upstream knows about
	FilingsReturned int        `json:"filings_returned"` // Filings in this set after limiting
	DateRange       *DateRange `json:"date_range,omitempty"`
}
