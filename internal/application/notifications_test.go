package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduledClub(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.initClub()
	f.addMember("Bob")
	_, err := f.svc.ScheduleUpcomingMeetup(f.ctx, ScheduleMeetupParams{ActorUserID: "user_1", ScheduledFor: "2026-04-03T18:30:00Z"})
	require.NoError(t, err)
	return f
}

func TestListPendingNotificationsDoesNotMutate(t *testing.T) {
	t.Parallel()

	f := scheduledClub(t)

	all, err := f.svc.ListPendingNotifications(f.ctx, ListNotificationsParams{})
	require.NoError(t, err)
	assert.Len(t, all, 12)

	due, err := f.svc.ListPendingNotifications(f.ctx, ListNotificationsParams{At: "2026-04-02T18:30:00Z", UserID: "user_2"})
	require.NoError(t, err)
	// meetup_updated, 168h, 24h and the 48h recipe prompt are due; 3h and 0h are not.
	assert.Len(t, due, 4)
	for _, n := range due {
		assert.Equal(t, "user_2", n.UserID)
		assert.Equal(t, "Bob", n.User.Name)
	}

	for _, n := range f.svc.Snapshot().Notifications {
		assert.Nil(t, n.DeliveredAt)
	}

	_, err = f.svc.ListPendingNotifications(f.ctx, ListNotificationsParams{UserID: "user_9"})
	assert.EqualError(t, err, "Unknown user: user_9")

	_, err = f.svc.ListPendingNotifications(f.ctx, ListNotificationsParams{At: "soon"})
	assert.EqualError(t, err, "Invalid notification timestamp. Use ISO format.")
}

func TestRunNotificationsDeliversOnce(t *testing.T) {
	t.Parallel()

	f := scheduledClub(t)
	metrics := &recordingMetrics{}
	f.svc.WithMetrics(metrics)

	at := "2026-04-02T18:30:00Z"
	first, err := f.svc.RunNotifications(f.ctx, RunNotificationsParams{At: at})
	require.NoError(t, err)
	assert.Len(t, first, 8)
	deliveredAt := time.Date(2026, time.April, 2, 18, 30, 0, 0, time.UTC)
	for _, n := range first {
		require.NotNil(t, n.DeliveredAt)
		assert.Equal(t, deliveredAt, *n.DeliveredAt)
	}

	again, err := f.svc.RunNotifications(f.ctx, RunNotificationsParams{At: at})
	require.NoError(t, err)
	assert.Empty(t, again)

	rest, err := f.svc.RunNotifications(f.ctx, RunNotificationsParams{At: "2026-04-03T18:30:00Z"})
	require.NoError(t, err)
	assert.Len(t, rest, 4)

	assert.Equal(t, 12, metrics.delivered)

	_, err = f.svc.RunNotifications(f.ctx, RunNotificationsParams{At: "tomorrow"})
	assert.EqualError(t, err, "Invalid notification timestamp. Use ISO format.")
}

func TestRunNotificationsDefaultsToNow(t *testing.T) {
	t.Parallel()

	f := scheduledClub(t)

	delivered, err := f.svc.RunNotifications(f.ctx, RunNotificationsParams{})
	require.NoError(t, err)
	// Only the meetup_updated notices are due at the reference time.
	assert.Len(t, delivered, 2)
	for _, n := range delivered {
		assert.Equal(t, referenceTime, *n.DeliveredAt)
	}
}
