// Package metrics exposes Prometheus collectors for club operations,
// notification delivery and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cookbookclub"

// ClubMetrics records service level outcomes. A nil *ClubMetrics is valid and
// records nothing.
type ClubMetrics struct {
	operations *prometheus.CounterVec
	queued     *prometheus.CounterVec
	delivered  prometheus.Counter
}

// NewClubMetrics registers the club collectors on reg. A nil registerer
// yields a no-op recorder.
func NewClubMetrics(reg prometheus.Registerer) *ClubMetrics {
	if reg == nil {
		return &ClubMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Club service operations by outcome.",
	}, []string{"operation", "outcome"})
	queued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_queued_total",
		Help:      "Notifications queued, split by whether a new record was created or a pending one updated.",
	}, []string{"type", "result"})
	delivered := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_delivered_total",
		Help:      "Notifications marked delivered by notification runs.",
	})
	reg.MustRegister(operations, queued, delivered)
	return &ClubMetrics{operations: operations, queued: queued, delivered: delivered}
}

// OperationCompleted counts one finished service call.
func (m *ClubMetrics) OperationCompleted(operation, outcome string) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// NotificationQueued counts an upserted notification.
func (m *ClubMetrics) NotificationQueued(notificationType string, created bool) {
	if m == nil || m.queued == nil {
		return
	}
	result := "updated"
	if created {
		result = "created"
	}
	m.queued.WithLabelValues(normalizeLabel(notificationType), result).Inc()
}

// NotificationsDelivered adds count to the delivered total.
func (m *ClubMetrics) NotificationsDelivered(count int) {
	if m == nil || m.delivered == nil || count <= 0 {
		return
	}
	m.delivered.Add(float64(count))
}

// HTTPMetrics records request counts and latency per route pattern.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP collectors on reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
	reg.MustRegister(requests, duration)
	return &HTTPMetrics{requests: requests, duration: duration}
}

// ObserveRequest records one served request.
func (m *HTTPMetrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeLabel(route)
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
