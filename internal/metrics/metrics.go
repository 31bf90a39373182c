// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CategorizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finshare_categorizations_total",
			Help: "Total number of categorizations by predicted category",
		},
		[]string{"category"},
	)

	CategorizationConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "finshare_categorization_confidence",
			Help:    "Confidence of returned categorizations",
			Buckets: []float64{0.3, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	RefinementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finshare_refinements_total",
			Help: "Generative refinement attempts by outcome",
		},
		[]string{"outcome"},
	)

	FeedbackRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "finshare_feedback_recorded_total",
			Help: "Total number of feedback records accepted",
		},
	)

	AdaptationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finshare_adaptations_total",
			Help: "Lexicon adaptation runs by result",
		},
		[]string{"result"},
	)

	OverlayTokensLearned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "finshare_overlay_tokens_learned_total",
			Help: "Total number of keywords added to user overlays",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "finshare_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"route", "status"},
	)

	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finshare_llm_requests_total",
			Help: "Generative model calls by provider and result",
		},
		[]string{"provider", "result"},
	)
)

// Adaptation results.
const (
	ResultApplied = "applied"
	ResultNoop    = "noop"
	ResultFailed  = "failed"
)
