package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/weft/pkg/domain"
)

const namespace = "weft"

// Metrics holds the engine collectors.
type Metrics struct {
	Computes       *prometheus.CounterVec
	ComputeSeconds *prometheus.HistogramVec
	StaleResults   *prometheus.CounterVec
	NodeErrors     *prometheus.CounterVec
	OutputChanges  prometheus.Counter
	GraphChanges   *prometheus.CounterVec
	Nodes          prometheus.Gauge
	Connections    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// skips registration.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Computes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_computes_total",
			Help:      "Finished node computations.",
		}, []string{"node_type", "async", "failed"}),
		ComputeSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_compute_duration_seconds",
			Help:      "Duration of node computations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"node_type"}),
		StaleResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_total",
			Help:      "Async results discarded because a newer compute superseded them.",
		}, []string{"node_type"}),
		NodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_errors_total",
			Help:      "Compute failures per node.",
		}, []string{"node_id"}),
		OutputChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_changes_total",
			Help:      "Node output changes, including drops.",
		}),
		GraphChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_changes_total",
			Help:      "Structural graph changes by kind.",
		}, []string{"event"}),
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Nodes currently in the graph.",
		}),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Connections currently in the graph.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Computes, m.ComputeSeconds, m.StaleResults, m.NodeErrors,
		m.OutputChanges, m.GraphChanges, m.Nodes, m.Connections,
	}
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCompute: func(_ context.Context, e *domain.ComputeEvent) {
			if e.Stale {
				m.StaleResults.WithLabelValues(e.NodeType).Inc()
				return
			}
			m.Computes.WithLabelValues(e.NodeType, strconv.FormatBool(e.Async), strconv.FormatBool(e.Failed)).Inc()
			m.ComputeSeconds.WithLabelValues(e.NodeType).Observe(e.Duration.Seconds())
		},
		OnNodeError: func(_ context.Context, e *domain.ErrorEvent) {
			m.NodeErrors.WithLabelValues(e.NodeID).Inc()
		},
		OnOutputChanged: func(context.Context, *domain.OutputEvent) {
			m.OutputChanges.Inc()
		},
		OnGraphChange: func(_ context.Context, e *domain.GraphEvent) {
			m.GraphChanges.WithLabelValues(string(e.Type)).Inc()
			switch e.Type {
			case domain.EventNodeAdded:
				m.Nodes.Inc()
			case domain.EventNodeRemoved:
				m.Nodes.Dec()
			case domain.EventConnected:
				m.Connections.Inc()
			case domain.EventDisconnected:
				m.Connections.Dec()
			}
		},
	}
}
