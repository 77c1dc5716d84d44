// Package resolve turns free-text queries into ranked company matches.
//
// Scoring and merging are deterministic so that identical queries rank
// identically regardless of which upstream answered first.
package resolve

import "strings"

// MinScore is the relevance floor. Candidates scoring at or below it
// are dropped from results; 0.31 survives, 0.3 does not.
const MinScore = 0.3

// Score rates how well a candidate's name and ticker match a query.
// Comparison is case-insensitive and the query is trimmed first.
//
// The rules are ordered and the first hit wins:
//
//	1.00  query equals ticker
//	0.95  query equals name
//	0.90  ticker starts with query
//	0.85  name starts with query
//	0.80  name contains query
//	0.75  any word of the name starts with query
//	0.00  no match
//
// An empty query matches nothing.
func Score(query, name, ticker string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}
	n := strings.ToLower(name)
	t := strings.ToLower(ticker)

	switch {
	case q == t:
		return 1.0
	case q == n:
		return 0.95
	case strings.HasPrefix(t, q):
		return 0.9
	case strings.HasPrefix(n, q):
		return 0.85
	case strings.Contains(n, q):
		return 0.8
	}

	for _, word := range strings.Fields(n) {
		if strings.HasPrefix(word, q) {
			return 0.75
		}
	}
	return 0
}
