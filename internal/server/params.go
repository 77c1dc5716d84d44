package server

import (
	"net/http"
	"strconv"
	"strings"
)

// maxQueryLength bounds free-text search input at the boundary.
const maxQueryLength = 100

// intParam parses a query parameter as int, returning the fallback
// when the parameter is absent. A present but malformed value is an
// error so the boundary can reject it instead of guessing.
func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// boolParam parses a query parameter as bool with a fallback for
// absent or malformed values.
func boolParam(r *http.Request, name string, fallback bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

// listParam collects a parameter given either repeated
// (?x=a&x=b) or comma-separated (?x=a,b) or both. Blank entries are
// dropped.
func listParam(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}
