// Package metrics provides observability for the citation core.
// Tracks duplicate-lookup outcomes, merge activity, and intake volume.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all registered collectors for the citation core.
type Metrics struct {
	MatchRequests      *prometheus.CounterVec
	MatchDuration      prometheus.Histogram
	MergesCompleted    prometheus.Counter
	CitationsRepointed prometheus.Counter
	CitationsRecorded  prometheus.Counter
}

// New creates a Metrics instance with all collectors registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		MatchRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "citation_match_requests_total",
			Help: "Duplicate-driver lookups by outcome (matched, fallback, empty)",
		}, []string{"outcome"}),
		MatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "citation_match_duration_seconds",
			Help:    "Duration of duplicate-driver lookups (interactive path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		MergesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citation_merges_completed_total",
			Help: "Total number of successful driver merges",
		}),
		CitationsRepointed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citation_merge_citations_repointed_total",
			Help: "Total citations repointed to a primary driver by merges",
		}),
		CitationsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citation_intakes_recorded_total",
			Help: "Total citations recorded through intake",
		}),
	}
}

// MatchOutcome labels for MatchRequests.
const (
	OutcomeMatched  = "matched"
	OutcomeFallback = "fallback"
	OutcomeEmpty    = "empty"
)
