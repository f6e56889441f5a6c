package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ChatOutcomeAnswered  = "answered"
	ChatOutcomeClarified = "clarified"
	ChatOutcomeFailed    = "failed"
)

var (
	chatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datachat_chat_requests_total",
			Help: "Total number of chat pipeline runs by terminal outcome.",
		},
		[]string{"outcome"},
	)
	chatStageFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datachat_chat_stage_failures_total",
			Help: "Total number of chat pipeline failures by stage.",
		},
		[]string{"stage"},
	)
	generationLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datachat_generation_latency_seconds",
			Help:    "Latency of generative model calls by purpose.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"purpose"},
	)
	queryExecutionLatencySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "datachat_query_execution_latency_seconds",
			Help:    "Latency of validated query execution.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)
	schemaCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "datachat_schema_cache_hits_total",
			Help: "Total number of schema description cache hits.",
		},
	)
	schemaCacheRebuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "datachat_schema_cache_rebuilds_total",
			Help: "Total number of schema description rebuilds.",
		},
	)
	schemaCacheFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "datachat_schema_cache_failures_total",
			Help: "Total number of failed schema description rebuilds.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		chatRequestsTotal,
		chatStageFailuresTotal,
		generationLatencySeconds,
		queryExecutionLatencySeconds,
		schemaCacheHitsTotal,
		schemaCacheRebuildsTotal,
		schemaCacheFailuresTotal,
	)
}

func ObserveChatOutcome(outcome string) {
	chatRequestsTotal.WithLabelValues(outcome).Inc()
}

func ObserveChatStageFailure(stage string) {
	chatStageFailuresTotal.WithLabelValues(stage).Inc()
}

func ObserveGeneration(purpose string, elapsed time.Duration) {
	generationLatencySeconds.WithLabelValues(purpose).Observe(elapsed.Seconds())
}

func ObserveQueryExecution(elapsed time.Duration) {
	queryExecutionLatencySeconds.Observe(elapsed.Seconds())
}

func ObserveSchemaCacheHit() {
	schemaCacheHitsTotal.Inc()
}

func ObserveSchemaCacheRebuild(failed bool) {
	schemaCacheRebuildsTotal.Inc()
	if failed {
		schemaCacheFailuresTotal.Inc()
	}
}
