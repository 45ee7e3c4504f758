package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Iron-Ham/framegraph/internal/event"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
)

const (
	metricsNamespace = "framegraph"
	metricsSubsystem = "server"
)

// Build results recorded by BuildsTotal.
const (
	resultBuilt  = "built"
	resultCached = "cached"
	resultFailed = "failed"
)

// Metrics holds the Prometheus collectors exported on /metrics.
type Metrics struct {
	// RequestsTotal counts requests.
	// Labels: method, route, status
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures request latency.
	// Labels: method, route
	RequestDurationSeconds *prometheus.HistogramVec

	// BuildsTotal counts graph loads.
	// Labels: result (built, cached, failed)
	BuildsTotal *prometheus.CounterVec

	// LastBuildSeconds is the duration of the most recent successful load.
	LastBuildSeconds prometheus.Gauge

	// Graph size of the current graph.
	Frames prometheus.Gauge
	Passes prometheus.Gauge
	Edges  prometheus.Gauge
}

// NewMetrics registers the server collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDurationSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by method and route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		BuildsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "builds_total",
				Help:      "Graph loads by result",
			},
			[]string{"result"},
		),
		LastBuildSeconds: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "last_build_seconds",
			Help:      "Duration of the most recent successful graph load",
		}),
		Frames: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "graph_frames",
			Help:      "Frames in the current graph",
		}),
		Passes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "graph_passes",
			Help:      "Passes in the current graph",
		}),
		Edges: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "graph_edges",
			Help:      "Dependency edges in the current graph",
		}),
	}
}

// Middleware records request count and latency. Unmatched routes are
// grouped under "unmatched" to bound label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDurationSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// SetGraph updates the graph size gauges.
func (m *Metrics) SetGraph(g *framegraph.Graph) {
	if g == nil {
		return
	}
	st := g.Stats()
	m.Frames.Set(float64(st.Frames))
	m.Passes.Set(float64(st.Passes))
	m.Edges.Set(float64(st.Edges))
}

// Observe handles workspace build events.
func (m *Metrics) Observe(e event.Event) {
	switch ev := e.(type) {
	case event.BuildFinishedEvent:
		result := resultBuilt
		if ev.Cached {
			result = resultCached
		}
		m.BuildsTotal.WithLabelValues(result).Inc()
		m.LastBuildSeconds.Set(ev.Duration.Seconds())
		m.SetGraph(ev.Graph)
	case event.BuildFailedEvent:
		m.BuildsTotal.WithLabelValues(resultFailed).Inc()
	}
}
