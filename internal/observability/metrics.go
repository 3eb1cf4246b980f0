package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LikeToggles counts like toggles by direction and outcome.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quilog_like_toggles_total",
		Help: "Total number of like toggles by direction and result",
	}, []string{"direction", "result"})

	// CommentAppends counts comment appends by outcome.
	CommentAppends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quilog_comment_appends_total",
		Help: "Total number of comment appends by result",
	}, []string{"result"})

	// AggregationFanout records how many lookups one aggregation issued.
	AggregationFanout = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quilog_aggregation_fanout",
		Help:    "Number of store lookups per engagement aggregation",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	}, []string{"kind"})

	// AggregationLatency records end-to-end engagement aggregation latency.
	AggregationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quilog_aggregation_latency_seconds",
		Help:    "Engagement aggregation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// StoreQueryLatency records document store latency by backend, operation and collection.
	StoreQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quilog_store_query_latency_seconds",
		Help:    "Document store query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "operation", "collection"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quilog_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// RealtimeEvents counts realtime events published by type.
	RealtimeEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quilog_realtime_events_total",
		Help: "Total realtime events published by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quilog_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// StoreMetrics records query latency for one backend.
type StoreMetrics struct {
	backend string
}

// NewStoreMetrics returns a StoreMetrics for the named backend.
func NewStoreMetrics(backend string) *StoreMetrics {
	return &StoreMetrics{backend: backend}
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *StoreMetrics) TrackQuery(operation, collection string) func() {
	start := time.Now()
	return func() {
		StoreQueryLatency.WithLabelValues(m.backend, operation, collection).Observe(time.Since(start).Seconds())
	}
}

// TrackAggregation returns a function that records aggregation latency.
func TrackAggregation(kind string) func() {
	start := time.Now()
	return func() {
		AggregationLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}
}
