package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestClubMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClubMetrics(reg)

	m.OperationCompleted("InitClub", "ok")
	m.OperationCompleted("InitClub", "ok")
	m.OperationCompleted("AddRecipe", "unauthorized")
	m.NotificationQueued("meetup_reminder", true)
	m.NotificationQueued("meetup_reminder", false)
	m.NotificationsDelivered(3)
	m.NotificationsDelivered(0)

	if got := testutil.ToFloat64(m.operations.WithLabelValues("InitClub", "ok")); got != 2 {
		t.Fatalf("expected InitClub ok=2, got %f", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("AddRecipe", "unauthorized")); got != 1 {
		t.Fatalf("expected AddRecipe unauthorized=1, got %f", got)
	}
	if got := testutil.ToFloat64(m.queued.WithLabelValues("meetup_reminder", "created")); got != 1 {
		t.Fatalf("expected created=1, got %f", got)
	}
	if got := testutil.ToFloat64(m.queued.WithLabelValues("meetup_reminder", "updated")); got != 1 {
		t.Fatalf("expected updated=1, got %f", got)
	}
	if got := testutil.ToFloat64(m.delivered); got != 3 {
		t.Fatalf("expected delivered=3, got %f", got)
	}
}

func TestNilRecordersAreSafe(t *testing.T) {
	var club *ClubMetrics
	club.OperationCompleted("x", "ok")
	club.NotificationQueued("x", true)
	club.NotificationsDelivered(1)

	NewClubMetrics(nil).OperationCompleted("x", "ok")

	var web *HTTPMetrics
	web.ObserveRequest("/api/club", "GET", 200, time.Millisecond)
	NewHTTPMetrics(nil).ObserveRequest("/api/club", "GET", 200, time.Millisecond)
}

func TestHTTPMetricsObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest("/api/club", "GET", 200, 20*time.Millisecond)
	m.ObserveRequest("", "GET", 404, time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/api/club", "GET", "200")); got != 1 {
		t.Fatalf("expected one 200 request, got %f", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("unknown", "GET", "404")); got != 1 {
		t.Fatalf("expected unknown route label, got %f", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 2 {
		t.Fatalf("expected two histogram series, got %d", n)
	}
}
