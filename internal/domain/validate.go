package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// tickerPattern accepts 1-5 uppercase letters with an optional class
// suffix, e.g. AAPL, BRK.A, RDS.B.
var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}(\.[A-Z]{1,2})?$`)

// cikPattern accepts 1-10 digits. EDGAR pads to 10 internally.
var cikPattern = regexp.MustCompile(`^[0-9]{1,10}$`)

// NormalizeTicker uppercases and trims a ticker symbol
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// ValidateTicker normalizes the symbol and checks it against the
// accepted ticker format. Returns the normalized symbol.
func ValidateTicker(ticker string) (string, error) {
	normalized := NormalizeTicker(ticker)
	if !tickerPattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTicker, ticker)
	}
	return normalized, nil
}

// NormalizeCIK strips non-digits and zero-pads to the canonical
// 10-digit EDGAR form. An input with no digits normalizes to an
// empty string.
func NormalizeCIK(cik string) string {
	var digits strings.Builder
	for _, r := range cik {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	return fmt.Sprintf("%010s", digits.String())
}

// ValidateCIK checks the raw CIK format and returns the canonical
// 10-digit form.
func ValidateCIK(cik string) (string, error) {
	trimmed := strings.TrimSpace(cik)
	if !cikPattern.MatchString(trimmed) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCIK, cik)
	}
	return NormalizeCIK(trimmed), nil
}

// NormalizeQuery lowercases and trims a search query. Cache keys and
// match scoring both work on the normalized form.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
