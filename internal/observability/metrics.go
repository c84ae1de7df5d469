package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce             sync.Once
	httpRequestsTotal        *prometheus.CounterVec
	httpLatencySeconds       *prometheus.HistogramVec
	httpErrorsTotal          *prometheus.CounterVec
	realtimeConnections      prometheus.Gauge
	realtimeEventsTotal      *prometheus.CounterVec
	realtimeDroppedFrames    *prometheus.CounterVec
	notificationsTotal       *prometheus.CounterVec
	notificationPushesTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hive_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hive_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hive_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		realtimeConnections = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hive_realtime_connections_active",
			Help: "Number of websocket sessions currently connected.",
		})

		realtimeEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hive_realtime_events_total",
			Help: "Total number of inbound realtime events dispatched.",
		}, []string{"event"})

		realtimeDroppedFrames = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hive_realtime_dropped_frames_total",
			Help: "Outbound frames dropped because a client was too slow.",
		}, []string{"event"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hive_notifications_created_total",
			Help: "Notifications persisted, labelled by category.",
		}, []string{"type"})

		notificationPushesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hive_notification_pushes_total",
			Help: "newNotification events pushed to personal channels.",
		}, []string{"type"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			realtimeConnections,
			realtimeEventsTotal,
			realtimeDroppedFrames,
			notificationsTotal,
			notificationPushesTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// RealtimeConnections exposes the active-session gauge.
func RealtimeConnections() prometheus.Gauge {
	RegisterMetrics()
	return realtimeConnections
}

// RealtimeEvents exposes the inbound-event counter.
func RealtimeEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return realtimeEventsTotal
}

// RealtimeDroppedFrames exposes the slow-client drop counter.
func RealtimeDroppedFrames() *prometheus.CounterVec {
	RegisterMetrics()
	return realtimeDroppedFrames
}

// NotificationsCreated exposes the persisted-notification counter.
func NotificationsCreated() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// NotificationPushes exposes the personal-channel push counter.
func NotificationPushes() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationPushesTotal
}
