package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics for the literature search service,
// organized by subsystem: aggregations, source searches, papers, and
// comparisons. Everything registers via promauto against the default
// registry.
type Metrics struct {
	// AggregationsStarted counts aggregation runs initiated.
	AggregationsStarted prometheus.Counter

	// AggregationsCompleted counts aggregation runs that produced a corpus.
	AggregationsCompleted prometheus.Counter

	// AggregationDuration observes the end-to-end duration of aggregation
	// runs in seconds.
	AggregationDuration prometheus.Histogram

	// FallbacksTriggered counts runs that needed fallback queries because
	// the primary search under-returned.
	FallbacksTriggered prometheus.Counter

	// SearchesStarted counts source searches initiated, labeled by source.
	SearchesStarted *prometheus.CounterVec

	// SearchesCompleted counts successful source searches, labeled by source.
	SearchesCompleted *prometheus.CounterVec

	// SearchesFailed counts failed source searches, labeled by source.
	SearchesFailed *prometheus.CounterVec

	// SearchDuration observes source search duration in seconds, labeled by source.
	SearchDuration *prometheus.HistogramVec

	// PapersFetched counts papers returned by sources, labeled by source.
	PapersFetched *prometheus.CounterVec

	// PapersExcluded counts papers rejected by the category filter.
	PapersExcluded prometheus.Counter

	// PapersDuplicate counts duplicates removed during merging.
	PapersDuplicate prometheus.Counter

	// ComparisonsTotal counts literature comparison runs.
	ComparisonsTotal prometheus.Counter

	// ComparisonDuration observes comparison duration in seconds.
	ComparisonDuration prometheus.Histogram
}

// NewMetrics creates a Metrics instance with all metrics registered under
// the given namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		AggregationsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_started_total",
			Help:      "Total number of literature aggregation runs started",
		}),
		AggregationsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_completed_total",
			Help:      "Total number of literature aggregation runs completed",
		}),
		AggregationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of literature aggregation runs in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		FallbacksTriggered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_triggered_total",
			Help:      "Total number of runs that needed fallback queries",
		}),

		SearchesStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_started_total",
			Help:      "Total number of source searches started by source",
		}, []string{"source"}),
		SearchesCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_completed_total",
			Help:      "Total number of source searches completed by source",
		}, []string{"source"}),
		SearchesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Total number of source searches that failed by source",
		}, []string{"source"}),
		SearchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of source searches in seconds by source",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"source"}),

		PapersFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_fetched_total",
			Help:      "Total number of papers returned by sources",
		}, []string{"source"}),
		PapersExcluded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_excluded_total",
			Help:      "Total number of papers rejected by the category filter",
		}),
		PapersDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_duplicate_total",
			Help:      "Total number of duplicate papers removed",
		}),

		ComparisonsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Total number of literature comparison runs",
		}),
		ComparisonDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "comparison_duration_seconds",
			Help:      "Duration of literature comparisons in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

// RecordAggregationStarted records that an aggregation run has started.
func (m *Metrics) RecordAggregationStarted() {
	m.AggregationsStarted.Inc()
}

// RecordAggregationCompleted records that an aggregation run finished.
func (m *Metrics) RecordAggregationCompleted(durationSeconds float64) {
	m.AggregationsCompleted.Inc()
	m.AggregationDuration.Observe(durationSeconds)
}

// RecordFallbackTriggered records that a run needed fallback queries.
func (m *Metrics) RecordFallbackTriggered() {
	m.FallbacksTriggered.Inc()
}

// RecordSearchStarted records that a source search has started.
func (m *Metrics) RecordSearchStarted(source string) {
	m.SearchesStarted.WithLabelValues(source).Inc()
}

// RecordSearchCompleted records a successful source search.
func (m *Metrics) RecordSearchCompleted(source string, paperCount int, durationSeconds float64) {
	m.SearchesCompleted.WithLabelValues(source).Inc()
	m.SearchDuration.WithLabelValues(source).Observe(durationSeconds)
	m.PapersFetched.WithLabelValues(source).Add(float64(paperCount))
}

// RecordSearchFailed records a failed source search.
func (m *Metrics) RecordSearchFailed(source string, durationSeconds float64) {
	m.SearchesFailed.WithLabelValues(source).Inc()
	m.SearchDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordPapersExcluded records papers rejected by the category filter.
func (m *Metrics) RecordPapersExcluded(count int) {
	m.PapersExcluded.Add(float64(count))
}

// RecordPaperDuplicates records duplicates removed during merging.
func (m *Metrics) RecordPaperDuplicates(count int) {
	m.PapersDuplicate.Add(float64(count))
}

// RecordComparison records one literature comparison run.
func (m *Metrics) RecordComparison(durationSeconds float64) {
	m.ComparisonsTotal.Inc()
	m.ComparisonDuration.Observe(durationSeconds)
}
