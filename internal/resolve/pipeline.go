/**
 * Resolution pipeline: query -> ranked candidates -> resolved company.
 *
 * The pipeline fans out to every configured search source concurrently,
 * merges the answers in source priority order, and ranks the result.
 * Source failures degrade to empty result lists; one upstream being
 * down must never fail a search that another upstream can answer.
 *
 * Merge rules:
 *   - Sources are consulted in the order they were configured.
 *     The first source is the most authoritative: when two sources
 *     return the same ticker, the earlier source's entry survives.
 *   - Dedupe is by uppercased ticker. Candidates without a ticker
 *     pass through untouched.
 *   - Ranking is a stable sort by score, descending, then the
 *     relevance floor and the result cap are applied.
 */
package resolve

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aristath/companylookup/internal/cache"
	"github.com/aristath/companylookup/internal/domain"
	"github.com/rs/zerolog"
)

// Config wires the pipeline's dependencies.
type Config struct {
	// Sources in merge priority order, most authoritative first.
	Sources []domain.SearchSource

	// Cache for ranked result lists, keyed "search:<query>".
	Cache *cache.Store

	// SearchTTL is how long a ranked list stays cached.
	SearchTTL time.Duration

	// MaxResults caps the ranked list.
	MaxResults int
}

// sourceFetchLimit is how many candidates each source is asked for.
// The merged list is capped by MaxResults after dedupe and ranking.
const sourceFetchLimit = 10

// Pipeline resolves free-text queries against all search sources.
type Pipeline struct {
	sources    []domain.SearchSource
	cache      *cache.Store
	searchTTL  time.Duration
	maxResults int
	log        zerolog.Logger
}

// New creates a resolution pipeline.
func New(cfg Config, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		sources:    cfg.Sources,
		cache:      cfg.Cache,
		searchTTL:  cfg.SearchTTL,
		maxResults: cfg.MaxResults,
		log:        log.With().Str("component", "resolve").Logger(),
	}
}

// SearchAll returns the ranked candidate list for a query. An empty
// normalized query returns ErrCompanyNotFound without touching any
// source. No candidates clearing the relevance floor yields an empty
// list and a nil error.
func (p *Pipeline) SearchAll(ctx context.Context, query string) ([]domain.CandidateMatch, error) {
	normalized := domain.NormalizeQuery(query)
	if normalized == "" {
		return nil, domain.ErrCompanyNotFound
	}

	cacheKey := cache.Key("search", normalized)
	if ranked, ok := cache.GetAs[[]domain.CandidateMatch](p.cache, cacheKey); ok {
		p.log.Debug().Str("query", normalized).Msg("Search cache hit")
		return ranked, nil
	}

	merged := p.collect(ctx, normalized)
	ranked := p.rank(merged)

	p.cache.Put(cacheKey, ranked, p.searchTTL)
	p.log.Info().
		Str("query", normalized).
		Int("candidates", len(merged)).
		Int("ranked", len(ranked)).
		Msg("Search completed")

	return ranked, nil
}

// Resolve turns a query into a concrete company identity by taking
// the top ranked candidate. Returns ErrCompanyNotFound when nothing
// matches.
func (p *Pipeline) Resolve(ctx context.Context, query string) (*domain.Company, error) {
	ranked, err := p.SearchAll(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, domain.ErrCompanyNotFound
	}

	top := ranked[0]
	return companyFrom(top), nil
}

// ResolveTicker resolves a ticker symbol to a company. Unlike Resolve
// it insists on an exact ticker match among the candidates, so a
// near-miss query cannot silently return a different company.
func (p *Pipeline) ResolveTicker(ctx context.Context, ticker string) (*domain.Company, error) {
	normalized, err := domain.ValidateTicker(ticker)
	if err != nil {
		return nil, err
	}

	ranked, err := p.SearchAll(ctx, normalized)
	if err != nil {
		return nil, err
	}
	for _, m := range ranked {
		if strings.ToUpper(m.Ticker) == normalized {
			return companyFrom(m), nil
		}
	}
	return nil, domain.ErrCompanyNotFound
}

func companyFrom(m domain.CandidateMatch) *domain.Company {
	return &domain.Company{
		Name:     m.Name,
		Ticker:   m.Ticker,
		CIK:      m.CIK,
		Exchange: m.Exchange,
	}
}

// collect fans out to all sources concurrently and merges the results
// in source priority order. Each source writes into its own slot, so
// no locking is needed around the result slices.
func (p *Pipeline) collect(ctx context.Context, query string) []domain.CandidateMatch {
	slots := make([][]domain.CandidateMatch, len(p.sources))

	var wg sync.WaitGroup
	for i, src := range p.sources {
		wg.Add(1)
		go func(i int, src domain.SearchSource) {
			defer wg.Done()
			matches, err := src.Search(ctx, query, sourceFetchLimit)
			if err != nil {
				p.log.Warn().
					Err(err).
					Str("source", src.ID()).
					Str("query", query).
					Msg("Search source failed")
				return
			}
			slots[i] = matches
		}(i, src)
	}
	wg.Wait()

	var merged []domain.CandidateMatch
	for _, matches := range slots {
		merged = append(merged, matches...)
	}
	return merged
}

// rank dedupes, sorts and filters a merged candidate list.
func (p *Pipeline) rank(merged []domain.CandidateMatch) []domain.CandidateMatch {
	seen := make(map[string]bool, len(merged))
	deduped := make([]domain.CandidateMatch, 0, len(merged))
	for _, m := range merged {
		ticker := strings.ToUpper(m.Ticker)
		if ticker != "" {
			if seen[ticker] {
				continue
			}
			seen[ticker] = true
		}
		deduped = append(deduped, m)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].MatchScore > deduped[j].MatchScore
	})

	ranked := make([]domain.CandidateMatch, 0, len(deduped))
	for _, m := range deduped {
		if m.MatchScore <= MinScore {
			continue
		}
		ranked = append(ranked, m)
		if len(ranked) == p.maxResults {
			break
		}
	}
	return ranked
}
