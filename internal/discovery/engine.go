// Package discovery finds author emails that the metadata sources lack:
// a cache lookup, then rate-budgeted search provider queries, then snippet
// and page scraping with blacklist filtering.
package discovery

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/helixir/citation-contact-service/internal/observability"
	"github.com/helixir/citation-contact-service/internal/pacer"
)

// SearchProvider is the subset of SearchClient the engine depends on.
type SearchProvider interface {
	Configured() bool
	Search(ctx context.Context, query string, numResults int) ([]SearchItem, error)
}

// Engine discovers an author's email address. All failures degrade to
// "no email": transport errors, budget exhaustion, and blacklist rejections
// surface only as an empty result.
type Engine struct {
	provider        SearchProvider
	store           *Store
	fetcher         PageFetcher
	pacer           pacer.Pacer
	metrics         *observability.Metrics
	logger          zerolog.Logger
	resultsPerQuery int
}

// EngineConfig wires an Engine.
type EngineConfig struct {
	// Provider issues search queries. Required.
	Provider SearchProvider

	// Store owns the email cache and the query budget. Required.
	Store *Store

	// Fetcher retrieves result pages when snippets yield nothing. Required.
	Fetcher PageFetcher

	// Pacer spaces consecutive queries within one discovery call. Required.
	Pacer pacer.Pacer

	// Metrics records discovery counters. Required.
	Metrics *observability.Metrics

	// ResultsPerQuery is how many results to request per query.
	// Defaults to DefaultResultsPerQuery.
	ResultsPerQuery int
}

// NewEngine creates a discovery engine.
func NewEngine(cfg EngineConfig, logger zerolog.Logger) *Engine {
	if cfg.ResultsPerQuery == 0 {
		cfg.ResultsPerQuery = DefaultResultsPerQuery
	}
	return &Engine{
		provider:        cfg.Provider,
		store:           cfg.Store,
		fetcher:         cfg.Fetcher,
		pacer:           cfg.Pacer,
		metrics:         cfg.Metrics,
		logger:          logger.With().Str("component", "discovery-engine").Logger(),
		resultsPerQuery: cfg.ResultsPerQuery,
	}
}

// Discover attempts to find an email for the author. It returns "" when
// the provider is unconfigured, the name is absent, the query budget is
// spent, or every query comes up empty. Negative results are not cached.
func (e *Engine) Discover(ctx context.Context, name, affiliation string) string {
	if !e.provider.Configured() {
		return ""
	}

	key := CacheKey(name, affiliation)
	if email, ok := e.store.Lookup(key); ok {
		e.metrics.DiscoveryCacheHits.Inc()
		return email
	}

	queries := buildQueries(name, affiliation)
	if len(queries) == 0 {
		return ""
	}

	for i, query := range queries {
		if !e.store.TryConsumeQuery() {
			e.logger.Warn().Str("author", name).Msg("search query budget exhausted")
			return ""
		}
		e.metrics.DiscoveryQueriesIssued.Inc()

		items, err := e.provider.Search(ctx, query, e.resultsPerQuery)
		if err != nil {
			// A failed query still consumed its budget unit; move on
			// to the next query without retrying.
			e.logger.Warn().Err(err).Str("query", query).Msg("search query failed")
			items = nil
		}

		for _, item := range items {
			email := FirstAcceptable(item.Snippet)
			if email == "" && item.Link != "" {
				email = e.emailFromPage(ctx, item.Link)
			}
			if email != "" {
				e.store.Insert(key, email)
				e.metrics.EmailsDiscovered.Inc()
				e.logger.Debug().Str("author", name).Str("email", email).Msg("email discovered")
				return email
			}
		}

		if i < len(queries)-1 {
			if err := e.pacer.Wait(ctx); err != nil {
				return ""
			}
		}
	}

	return ""
}

// emailFromPage fetches a result page and extracts the first acceptable
// email from its body. Fetch failures degrade to "".
func (e *Engine) emailFromPage(ctx context.Context, link string) string {
	body, err := e.fetcher.Fetch(ctx, link)
	if err != nil {
		e.logger.Debug().Err(err).Str("url", link).Msg("page fetch failed")
		return ""
	}
	return FirstAcceptable(body)
}

// buildQueries constructs the ordered candidate query list for an author.
// An absent name yields no queries.
func buildQueries(name, affiliation string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	affiliation = strings.TrimSpace(affiliation)

	queries := []string{name + " email"}
	if affiliation != "" {
		queries = append(queries,
			name+" "+affiliation+" email",
			name+" contact "+affiliation,
		)
	}
	queries = append(queries,
		name+" faculty email",
		name+" profile email",
	)
	return queries
}
