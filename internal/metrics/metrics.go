// Package metrics holds the Prometheus collectors for the recommender.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Generation
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_generations_total",
			Help: "Recommendation generations by the strategy that produced the list",
		},
		[]string{"strategy"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_generation_duration_seconds",
			Help:    "Wall time of a full recommendation generation",
			Buckets: prometheus.DefBuckets,
		},
	)

	SignalCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_signal_candidates",
			Help:    "Candidates produced per signal generator per generation",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"source"},
	)

	SignalErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_signal_errors_total",
			Help: "Signal generators that failed and were treated as empty",
		},
		[]string{"source"},
	)

	Warnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_warnings_total",
			Help: "Non-fatal failures swallowed during generation, by stage",
		},
		[]string{"stage"},
	)

	PreferenceUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_preference_updates_total",
			Help: "Genre preference upserts by action",
		},
		[]string{"action"},
	)

	// Catalog
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Requests to the movie catalog by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Latency of movie catalog requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_lookups_total",
			Help: "Catalog cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)
)
