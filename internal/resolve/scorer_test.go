package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreLadder(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		cName  string
		ticker string
		want   float64
	}{
		{"exact ticker", "aapl", "Apple Inc.", "AAPL", 1.0},
		{"exact name", "apple inc.", "Apple Inc.", "AAPL", 0.95},
		{"ticker prefix", "aap", "Apple Inc.", "AAPL", 0.9},
		{"name prefix", "appl", "Apple Inc.", "AAPL", 0.85},
		{"name substring", "pple", "Apple Inc.", "AAPL", 0.8},
		{"interior word", "inc", "Apple Inc.", "AAPL", 0.8},
		{"no match", "tesla", "Apple Inc.", "AAPL", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.query, tt.cName, tt.ticker), 1e-9)
		})
	}
}

func TestScoreFirstRuleWins(t *testing.T) {
	// "v" equals the ticker and is also a substring of the name; the
	// ticker-exact rule takes precedence.
	assert.InDelta(t, 1.0, Score("v", "Visa Inc.", "V"), 1e-9)

	// "micro" is both a name prefix and a name substring; prefix wins.
	assert.InDelta(t, 0.85, Score("micro", "Microsoft Corporation", "MSFT"), 1e-9)
}

func TestScoreCaseAndWhitespace(t *testing.T) {
	assert.InDelta(t, 1.0, Score("  AAPL  ", "Apple Inc.", "aapl"), 1e-9)
	assert.InDelta(t, 0.95, Score("APPLE INC.", "apple inc.", "AAPL"), 1e-9)
}

func TestScoreEmptyInputs(t *testing.T) {
	assert.Zero(t, Score("", "Apple Inc.", "AAPL"))
	assert.Zero(t, Score("   ", "Apple Inc.", "AAPL"))
	assert.Zero(t, Score("apple", "", ""))
}

func TestScoreInteriorWordStarts(t *testing.T) {
	// A query starting a non-leading word is also a substring of the
	// name, so the substring rule fires before the word-prefix rule.
	assert.InDelta(t, 0.8, Score("hath", "Berkshire Hathaway Inc.", "BRK.A"), 1e-9)
	assert.InDelta(t, 0.8, Score("moto", "General Motors Company", "GM"), 1e-9)

	// Non-contiguous multi-word queries fall through every rule.
	assert.Zero(t, Score("general company", "General Motors Company", "GM"))
}

func TestScoreOutputSet(t *testing.T) {
	// Every possible score is one of the ladder values.
	valid := map[float64]bool{0: true, 0.75: true, 0.8: true, 0.85: true, 0.9: true, 0.95: true, 1.0: true}
	queries := []string{"a", "apple", "aapl", "inc", "xyz", "", "pp"}
	for _, q := range queries {
		s := Score(q, "Apple Inc.", "AAPL")
		assert.True(t, valid[s], "unexpected score %v for query %q", s, q)
	}
}
