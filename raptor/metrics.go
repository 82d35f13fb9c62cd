package raptor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	_QueryCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transit_plan_queries_total",
		Help: "Number of plan queries by outcome.",
	}, []string{"outcome"})
	_QueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "transit_plan_duration_seconds",
		Help:    "Duration of plan queries.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})
	_WideningCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transit_plan_widenings_total",
		Help: "Number of search attempts repeated with a larger walk distance.",
	})
	_RoundCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transit_plan_rounds_total",
		Help: "Number of rounds run by the round engine.",
	})
	_PrunedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transit_plan_pruned_total",
		Help: "Number of states rejected by the target bound.",
	}, []string{"reason"})
	_MalformedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transit_plan_malformed_transitions_total",
		Help: "Number of transitions skipped because of missing schedule data.",
	})
)
