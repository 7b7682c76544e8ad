package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the citation contact service.
// Metrics are organized by subsystem: batches, citations, metadata lookups,
// discovery, and dedup. Counters and histograms are registered on the given
// registerer via promauto so tests can use an isolated registry.
type Metrics struct {
	// BatchesStarted counts the total number of batch runs initiated.
	BatchesStarted prometheus.Counter

	// BatchesCompleted counts the total number of batch runs that finished successfully.
	BatchesCompleted prometheus.Counter

	// BatchesFailed counts the total number of batch runs that ended in failure.
	BatchesFailed prometheus.Counter

	// BatchDuration observes the end-to-end duration of batch runs in seconds.
	BatchDuration prometheus.Histogram

	// CitationsProcessed counts citations processed across all batches.
	CitationsProcessed prometheus.Counter

	// RowsEmitted counts result rows, labeled by row status.
	RowsEmitted *prometheus.CounterVec

	// AuthorLookups counts metadata source lookups, labeled by source and outcome.
	AuthorLookups *prometheus.CounterVec

	// DiscoveryQueriesIssued counts search provider queries issued.
	DiscoveryQueriesIssued prometheus.Counter

	// DiscoveryCacheHits counts discovery calls answered from the email cache.
	DiscoveryCacheHits prometheus.Counter

	// EmailsDiscovered counts emails accepted by the discovery engine.
	EmailsDiscovered prometheus.Counter

	// DedupRuns counts dedup passes performed.
	DedupRuns prometheus.Counter

	// DedupRowsRemoved counts duplicate rows dropped across all dedup passes.
	DedupRowsRemoved prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized
// and registered on reg. The namespace is used as a prefix for all metric
// names.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		BatchesStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_started_total",
			Help:      "Total number of citation batches started",
		}),
		BatchesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_completed_total",
			Help:      "Total number of citation batches completed successfully",
		}),
		BatchesFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_failed_total",
			Help:      "Total number of citation batches that failed",
		}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "End-to-end duration of citation batches in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
		}),
		CitationsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "citations_processed_total",
			Help:      "Total number of citations processed",
		}),
		RowsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_emitted_total",
			Help:      "Total number of result rows emitted, by status",
		}, []string{"status"}),
		AuthorLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "author_lookups_total",
			Help:      "Total number of metadata source lookups, by source and outcome",
		}, []string{"source", "outcome"}),
		DiscoveryQueriesIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discovery_queries_issued_total",
			Help:      "Total number of search provider queries issued",
		}),
		DiscoveryCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discovery_cache_hits_total",
			Help:      "Total number of discovery calls answered from the email cache",
		}),
		EmailsDiscovered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_discovered_total",
			Help:      "Total number of emails accepted by the discovery engine",
		}),
		DedupRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_runs_total",
			Help:      "Total number of dedup passes performed",
		}),
		DedupRowsRemoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_rows_removed_total",
			Help:      "Total number of duplicate rows removed",
		}),
	}
}
