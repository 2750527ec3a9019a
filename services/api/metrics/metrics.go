// Package metrics exposes Prometheus collectors for the occupancy pipeline
// and the HTTP surface.
//
// Collectors are registered on a caller-supplied registry so tests can build
// isolated instances:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	engine.GET("/metrics", gin.WrapH(metrics.Handler(reg)))
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh outcome labels.
const (
	ResultSuccess          = "success"
	ResultStoreUnavailable = "store_unavailable"
	ResultMalformedInput   = "malformed_input"
	ResultNoValidData      = "no_valid_data"
	ResultDiscarded        = "discarded_out_of_order"
	ResultError            = "error"
)

// Metrics bundles every collector the service reports.
type Metrics struct {
	RefreshTotal      *prometheus.CounterVec
	RefreshDuration   prometheus.Histogram
	ReadingsSkipped   prometheus.Counter
	SnapshotLatest    prometheus.Gauge
	SnapshotAverage   prometheus.Gauge
	SnapshotCurrent   prometheus.Gauge
	MirrorErrors      prometheus.Counter
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RefreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "occupancy_refresh_total",
			Help: "Snapshot refresh attempts by result.",
		}, []string{"result"}),
		RefreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "occupancy_refresh_duration_seconds",
			Help:    "Time spent on one refresh cycle.",
			Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 10},
		}),
		ReadingsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "occupancy_readings_skipped_total",
			Help: "Raw readings dropped by validation.",
		}),
		SnapshotLatest: factory.NewGauge(prometheus.GaugeOpts{
			Name: "occupancy_snapshot_latest_timestamp_seconds",
			Help: "Unix time of the newest reading in the cached snapshot.",
		}),
		SnapshotAverage: factory.NewGauge(prometheus.GaugeOpts{
			Name: "occupancy_snapshot_average_persons",
			Help: "Average persons in the cached snapshot.",
		}),
		SnapshotCurrent: factory.NewGauge(prometheus.GaugeOpts{
			Name: "occupancy_snapshot_current_persons",
			Help: "Latest single reading in the cached snapshot.",
		}),
		MirrorErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "occupancy_mirror_errors_total",
			Help: "Failed writes of the snapshot to the external mirror.",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"method", "route"}),
	}
}

// ObserveRefresh records one refresh outcome and its duration.
func (m *Metrics) ObserveRefresh(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues(result).Inc()
	m.RefreshDuration.Observe(elapsed.Seconds())
}

// ObserveSnapshot publishes the gauges describing a freshly cached snapshot.
func (m *Metrics) ObserveSnapshot(latest time.Time, average, current float64, skipped int) {
	if m == nil {
		return
	}
	m.SnapshotLatest.Set(float64(latest.Unix()))
	m.SnapshotAverage.Set(average)
	m.SnapshotCurrent.Set(current)
	if skipped > 0 {
		m.ReadingsSkipped.Add(float64(skipped))
	}
}

// MirrorFailed counts one failed mirror write.
func (m *Metrics) MirrorFailed() {
	if m == nil {
		return
	}
	m.MirrorErrors.Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
