// Package pipeline drives citations through identifier extraction, metadata
// resolution, and row expansion, and aggregates the resulting report rows.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/citation-contact-service/internal/citation"
	"github.com/helixir/citation-contact-service/internal/domain"
	"github.com/helixir/citation-contact-service/internal/metasources"
	"github.com/helixir/citation-contact-service/internal/observability"
	"github.com/helixir/citation-contact-service/internal/pacer"
)

// DefaultCitationInterval is the default pause between citations. It paces
// every downstream network call, not just search queries.
const DefaultCitationInterval = 500 * time.Millisecond

// Batch processes an ordered citation list one citation at a time: each is
// handled start to finish, including blocking network calls and deliberate
// pacing, before the next begins. That keeps external call order and cache
// write order deterministic.
type Batch struct {
	resolver *metasources.Resolver
	finder   EmailFinder
	pacer    pacer.Pacer
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

// NewBatch creates a batch pipeline.
func NewBatch(resolver *metasources.Resolver, finder EmailFinder, p pacer.Pacer, metrics *observability.Metrics, logger zerolog.Logger) *Batch {
	return &Batch{
		resolver: resolver,
		finder:   finder,
		pacer:    p,
		metrics:  metrics,
		logger:   logger.With().Str("component", "batch-pipeline").Logger(),
	}
}

// Process runs the batch and returns the accumulated rows with their
// summary statistics. Blank citations are skipped without producing a row
// or a pacing pause. Per-citation degradations surface only as row status.
func (b *Batch) Process(ctx context.Context, citations []domain.Citation) ([]domain.ResultRow, domain.SummaryStats, error) {
	start := time.Now()
	b.metrics.BatchesStarted.Inc()

	var rows []domain.ResultRow
	for _, cit := range citations {
		if cit.IsBlank() {
			continue
		}

		citRows, err := b.processOne(ctx, cit)
		if err != nil {
			b.metrics.BatchesFailed.Inc()
			return nil, domain.SummaryStats{}, err
		}
		rows = append(rows, citRows...)

		if err := b.pacer.Wait(ctx); err != nil {
			b.metrics.BatchesFailed.Inc()
			return nil, domain.SummaryStats{}, err
		}
	}

	stats := Summarize(rows)
	b.metrics.BatchesCompleted.Inc()
	b.metrics.BatchDuration.Observe(time.Since(start).Seconds())
	b.logger.Info().
		Int("rows", stats.TotalRows).
		Int("emails_found", stats.EmailsFound).
		Dur("duration", time.Since(start)).
		Msg("batch completed")

	return rows, stats, nil
}

// processOne handles a single citation. The only error it can return is
// context cancellation; everything else degrades to a row status.
func (b *Batch) processOne(ctx context.Context, cit domain.Citation) ([]domain.ResultRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.metrics.CitationsProcessed.Inc()

	id, ok := citation.Extract(string(cit))
	if !ok {
		b.countRow(domain.StatusNoIdentifier)
		return []domain.ResultRow{{
			Citation: cit,
			Status:   domain.StatusNoIdentifier,
		}}, nil
	}

	logger := observability.WithCitationContext(b.logger, id.String())
	logger.Debug().Msg("processing citation")

	authors := b.resolver.Resolve(ctx, id)
	rows := expandRows(ctx, b.finder, cit, id, authors)
	for _, row := range rows {
		b.countRow(row.Status)
	}

	return rows, nil
}

func (b *Batch) countRow(status domain.RowStatus) {
	b.metrics.RowsEmitted.WithLabelValues(string(status)).Inc()
}
