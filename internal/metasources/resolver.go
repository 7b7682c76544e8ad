package metasources

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/helixir/citation-contact-service/internal/domain"
	"github.com/helixir/citation-contact-service/internal/observability"
)

// Lookup outcome labels for metrics.
const (
	outcomeOK    = "ok"
	outcomeEmpty = "empty"
	outcomeError = "error"
)

// Resolver resolves a document identifier to an author list by trying an
// ordered chain of metadata sources until one yields authors.
//
// Source failures never abort a batch: transport and parse errors are
// logged and treated as an empty result from that source.
type Resolver struct {
	sources []AuthorSource
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// NewResolver creates a resolver over the given sources, tried in order.
func NewResolver(logger zerolog.Logger, metrics *observability.Metrics, sources ...AuthorSource) *Resolver {
	return &Resolver{
		sources: sources,
		metrics: metrics,
		logger:  logger.With().Str("component", "metadata-resolver").Logger(),
	}
}

// Resolve returns the ordered author list for the identifier, or an empty
// slice when every source came up empty or failed.
func (r *Resolver) Resolve(ctx context.Context, id domain.Identifier) []domain.AuthorRecord {
	if id.IsZero() {
		return nil
	}

	for _, source := range r.sources {
		if !source.CanResolve(id) {
			continue
		}

		authors, err := source.Lookup(ctx, id)
		if err != nil {
			r.metrics.AuthorLookups.WithLabelValues(source.Name(), outcomeError).Inc()
			r.logger.Warn().
				Err(err).
				Str("source", source.Name()).
				Str("identifier", id.String()).
				Msg("metadata lookup failed, trying next source")
			continue
		}
		if len(authors) == 0 {
			r.metrics.AuthorLookups.WithLabelValues(source.Name(), outcomeEmpty).Inc()
			r.logger.Debug().
				Str("source", source.Name()).
				Str("identifier", id.String()).
				Msg("metadata source returned no authors")
			continue
		}

		r.metrics.AuthorLookups.WithLabelValues(source.Name(), outcomeOK).Inc()
		r.logger.Debug().
			Str("source", source.Name()).
			Str("identifier", id.String()).
			Int("authors", len(authors)).
			Msg("resolved author list")
		return authors
	}

	return nil
}
