package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjax13/CookbookClub/internal/reminder"
	"github.com/bjax13/CookbookClub/internal/state"
)

func floatPtr(v float64) *float64 { return &v }

func keyed(notifications []state.Notification) map[string]state.Notification {
	out := map[string]state.Notification{}
	for _, n := range notifications {
		if n.Key != nil {
			out[*n.Key] = n
		}
	}
	return out
}

func TestScheduleUpcomingMeetupQueuesPolicyReminders(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.initClub()
	bob := f.addMember("Bob")

	_, err := f.svc.SetReminderPolicy(f.ctx, SetReminderPolicyParams{
		ActorUserID: "user_1",
		Policy:      reminder.Input{MeetupWindowHours: []float64{72, 24, 0}, RecipePromptHours: floatPtr(36)},
	})
	require.NoError(t, err)

	meetup, err := f.svc.ScheduleUpcomingMeetup(f.ctx, ScheduleMeetupParams{ActorUserID: "user_1", ScheduledFor: "2026-04-03T18:30:00.000Z"})
	require.NoError(t, err)
	scheduled := time.Date(2026, time.April, 3, 18, 30, 0, 0, time.UTC)
	require.NotNil(t, meetup.ScheduledFor)
	assert.Equal(t, scheduled, *meetup.ScheduledFor)

	for _, userID := range []string{"user_1", bob.ID} {
		byKey := keyed(f.notificationsFor(userID))
		require.Len(t, byKey, 4, "user %s", userID)

		want := map[string]time.Duration{
			"meetup_72h":    72 * time.Hour,
			"meetup_24h":    24 * time.Hour,
			"meetup_0h":     0,
			"recipe_prompt": 36 * time.Hour,
		}
		for key, offset := range want {
			n, ok := byKey[key]
			require.True(t, ok, "missing %s", key)
			require.NotNil(t, n.DueAt)
			assert.Equal(t, scheduled.Add(-offset), *n.DueAt, key)
			assert.Equal(t, "meetup_1", n.Payload.MeetupID)
		}
		assert.Equal(t, state.NotificationRecipePrompt, byKey["recipe_prompt"].Type)
		assert.Equal(t, "Meetup starting now. Theme: TBD", byKey["meetup_0h"].Payload.Message)
		assert.Equal(t, "Reminder: meetup in 24 hour(s) (2026-04-03T18:30:00.000Z)", byKey["meetup_24h"].Payload.Message)
		assert.Equal(t, `Prompt: add your recipe and image for theme "TBD".`, byKey["recipe_prompt"].Payload.Message)

		all := f.notificationsFor(userID)
		assert.Len(t, all, 5)
	}

	updates := 0
	for _, n := range f.svc.Snapshot().Notifications {
		if n.Type == state.NotificationMeetupUpdated {
			updates++
			assert.Nil(t, n.Key)
			assert.Equal(t, "Meetup scheduled for 2026-04-03T18:30:00.000Z. Theme: TBD", n.Payload.Message)
			require.NotNil(t, n.DueAt)
			assert.Equal(t, referenceTime, *n.DueAt)
		}
	}
	assert.Equal(t, 2, updates)
}

func TestRescheduleUpdatesInPlace(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.initClub()
	f.addMember("Bob")

	_, err := f.svc.ScheduleUpcomingMeetup(f.ctx, ScheduleMeetupParams{ActorUserID: "user_1", ScheduledFor: "2026-04-03T18:30:00Z"})
	require.NoError(t, err)
	before := len(f.svc.Snapshot().Notifications)

	_, err = f.svc.ScheduleUpcomingMeetup(f.ctx, ScheduleMeetupParams{ActorUserID: "user_1", ScheduledFor: "2026-04-10T18:30:00Z"})
	require.NoError(t, err)
	_, err = f.svc.SetMeetupTheme(f.ctx, SetThemeParams{ActorUserID: "user_1", Theme: "Tacos"})
	require.NoError(t, err)

	snap := f.svc.Snapshot()
	assert.Equal(t, before, len(snap.Notifications))

	byKey := keyed(f.notificationsFor("user_1"))
	assert.Equal(t, time.Date(2026, time.April, 9, 18, 30, 0, 0, time.UTC), *byKey["meetup_24h"].DueAt)
	assert.Equal(t, "Meetup starting now. Theme: Tacos", byKey["meetup_0h"].Payload.Message)

	var updated []string
	for _, n := range f.notificationsFor("user_1") {
		if n.Type == state.NotificationMeetupUpdated {
			updated = append(updated, n.Payload.Message)
		}
	}
	assert.Equal(t, []string{"Theme updated: Tacos"}, updated)
}

func TestReminderDueTimesAreClampedToNow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.initClub()

	soon := referenceTime.Add(2 * time.Hour)
	_, err := f.svc.ScheduleUpcomingMeetup(f.ctx, ScheduleMeetupParams{ActorUserID: "user_1", ScheduledFor: soon.Format(time.RFC3339)})
	require.NoError(t, err)

	byKey := keyed(f.notificationsFor("user_1"))
	assert.Equal(t, referenceTime, *byKey["meetup_168h"].DueAt)
	assert.Equal(t, referenceTime, *byKey["meetup_24h"].DueAt)
	assert.Equal(t, referenceTime, *byKey["meetup_3h"].DueAt)
	assert.Equal(t, soon, *byKey["meetup_0h"].DueAt)
	assert.Equal(t, referenceTime, *byKey["recipe_prompt"].DueAt)
}

func TestLateJoinerOnlyGetsOwnReminders(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.initClub()
	f.addMember("Bob")
	_, err := f.svc.ScheduleUpcomingMeetup(f.ctx, ScheduleMeetupParams{ActorUserID: "user_1", ScheduledFor: "2026-04-03T18:30:00Z"})
	require.NoError(t, err)
	before := len(f.svc.Snapshot().Notifications)

	carol := f.addMember("Carol")

	after := len(f.svc.Snapshot().Notifications)
	assert.Equal(t, before+5, after)
	carols := f.notificationsFor(carol.ID)
	assert.Len(t, carols, 5)
	for _, n := range carols {
		assert.NotEqual(t, state.NotificationMeetupUpdated, n.Type)
	}
}

func TestDeliveredRemindersAreNotReused(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.initClub()

	_, err := f.svc.ScheduleUpcomingMeetup(f.ctx, ScheduleMeetupParams{ActorUserID: "user_1", ScheduledFor: "2026-04-03T18:30:00Z"})
	require.NoError(t, err)
	delivered, err := f.svc.RunNotifications(f.ctx, RunNotificationsParams{At: "2026-05-01T00:00:00Z"})
	require.NoError(t, err)
	assert.Len(t, delivered, 6)

	_, err = f.svc.ScheduleUpcomingMeetup(f.ctx, ScheduleMeetupParams{ActorUserID: "user_1", ScheduledFor: "2026-04-04T18:30:00Z"})
	require.NoError(t, err)
	assert.Len(t, f.svc.Snapshot().Notifications, 12)
}

func TestScheduleUpcomingMeetupValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.initClub()
	bob := f.addMember("Bob")

	_, err := f.svc.ScheduleUpcomingMeetup(f.ctx, ScheduleMeetupParams{ActorUserID: bob.ID, ScheduledFor: "2026-04-03T18:30:00Z"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.ScheduleUpcomingMeetup(f.ctx, ScheduleMeetupParams{ActorUserID: "user_1", ScheduledFor: "next friday"})
	assert.EqualError(t, err, "Invalid datetime. Use ISO format.")

	_, err = f.svc.SetMeetupTheme(f.ctx, SetThemeParams{ActorUserID: "user_1", Theme: " "})
	assert.EqualError(t, err, "Theme is required.")
	assert.Empty(t, f.svc.Snapshot().Notifications)
}

func TestAdvanceMeetup(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.initClub()
	bob := f.addMember("Bob")

	_, err := f.svc.AdvanceMeetup(f.ctx, bob.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	result, err := f.svc.AdvanceMeetup(f.ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "meetup_1", result.Past.ID)
	assert.Equal(t, state.MeetupPast, result.Past.Status)
	assert.Equal(t, "meetup_2", result.Next.ID)
	assert.Equal(t, int64(2), result.Next.Seq)
	assert.Equal(t, state.MeetupUpcoming, result.Next.Status)
	assert.Equal(t, "TBD", result.Next.Theme)
	assert.Nil(t, result.Next.ScheduledFor)

	upcoming := 0
	for _, m := range f.svc.Snapshot().Meetups {
		if m.Status == state.MeetupUpcoming {
			upcoming++
		}
	}
	assert.Equal(t, 1, upcoming)

	meetups, err := f.svc.ListMeetups(f.ctx)
	require.NoError(t, err)
	require.Len(t, meetups, 2)
	assert.Equal(t, "meetup_1", meetups[0].ID)
	assert.Equal(t, "Alice Host", meetups[1].Host.Name)

	view, err := f.svc.GetMeetup(f.ctx, "meetup_1")
	require.NoError(t, err)
	assert.Equal(t, state.MeetupPast, view.Status)

	_, err = f.svc.GetMeetup(f.ctx, "meetup_9")
	assert.EqualError(t, err, "Unknown meetup: meetup_9")
}

func TestListMeetupsOrdersBySequence(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.initClub()
	for i := 0; i < 10; i++ {
		_, err := f.svc.AdvanceMeetup(f.ctx, "user_1")
		require.NoError(t, err)
	}
	snap := f.svc.Snapshot()
	snap.Meetups[0], snap.Meetups[10] = snap.Meetups[10], snap.Meetups[0]

	meetups, err := f.svc.ListMeetups(f.ctx)
	require.NoError(t, err)
	require.Len(t, meetups, 11)
	assert.Equal(t, "meetup_1", meetups[0].ID)
	assert.Equal(t, "meetup_2", meetups[1].ID)
	assert.Equal(t, "meetup_11", meetups[10].ID)
}
