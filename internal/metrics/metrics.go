// Package metrics exposes the hub's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace    = "transithub"
	LabelOutcome = "outcome"
)

// Metrics groups the hub's collectors behind a private registry so tests can
// create as many instances as they like.
type Metrics struct {
	registry *prometheus.Registry

	Questions        *prometheus.CounterVec
	ClampedQuestions prometheus.Counter
	DecodeErrors     prometheus.Counter
	DispatchErrors   prometheus.Counter
	Verdicts         prometheus.Counter
	MissedVerdicts   prometheus.Counter
	LastScore        prometheus.Gauge
	GraphNodes       prometheus.Gauge
	GraphEdges       prometheus.Gauge
	PathCost         prometheus.Histogram
	SearchDuration   prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Questions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_total",
			Help:      "Questions handled, by search outcome.",
		}, []string{LabelOutcome}),
		ClampedQuestions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clamped_questions_total",
			Help:      "Questions whose declared road count disagreed with the supplied roads.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Inbound payloads that could not be decoded.",
		}),
		DispatchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_errors_total",
			Help:      "Answers the bus failed to send.",
		}),
		Verdicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Judge replies received.",
		}),
		MissedVerdicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missed_verdicts_total",
			Help:      "Answers with no judge reply within the reply timeout.",
		}),
		LastScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_score",
			Help:      "Score of the most recent judge reply.",
		}),
		GraphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Cities in the current road description.",
		}),
		GraphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Roads in the current road description.",
		}),
		PathCost: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "path_cost",
			Help:      "Total length of found routes.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time spent rebuilding the graph and searching it.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.Questions,
		m.ClampedQuestions,
		m.DecodeErrors,
		m.DispatchErrors,
		m.Verdicts,
		m.MissedVerdicts,
		m.LastScore,
		m.GraphNodes,
		m.GraphEdges,
		m.PathCost,
		m.SearchDuration,
	)
	return m
}

// Registry returns the registry backing these collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
