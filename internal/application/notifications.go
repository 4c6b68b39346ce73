package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bjax13/CookbookClub/internal/reminder"
	"github.com/bjax13/CookbookClub/internal/state"
)

// notificationKey identifies the single undelivered notification a reminder
// may upsert into.
type notificationKey struct {
	userID   string
	kind     state.NotificationType
	key      string
	hasKey   bool
	meetupID string
}

func keyOf(n *state.Notification) notificationKey {
	k := notificationKey{userID: n.UserID, kind: n.Type, meetupID: n.Payload.MeetupID}
	if n.Key != nil {
		k.key, k.hasKey = *n.Key, true
	}
	return k
}

// indexPending rebuilds the upsert index over undelivered notifications. The
// first match wins when legacy data contains duplicates.
func (s *Service) indexPending() {
	s.pending = make(map[notificationKey]int, len(s.state.Notifications))
	for i := range s.state.Notifications {
		n := &s.state.Notifications[i]
		if !n.Pending() {
			continue
		}
		k := keyOf(n)
		if _, ok := s.pending[k]; !ok {
			s.pending[k] = i
		}
	}
}

type queueOptions struct {
	dueAt   *time.Time
	userIDs []string
	key     *string
}

// queueReminder upserts one notification per target user. Undelivered
// notifications with the same user, type, key and meetup are updated in place.
func (s *Service) queueReminder(club *state.Club, kind state.NotificationType, payload state.NotificationPayload, opts queueOptions) {
	now := s.timestamp()
	dueAt := now
	if opts.dueAt != nil {
		dueAt = *opts.dueAt
	}
	targets := opts.userIDs
	if targets == nil {
		targets = s.memberUserIDs(club.ID)
	}

	seen := make(map[string]struct{}, len(targets))
	for _, userID := range targets {
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		k := notificationKey{userID: userID, kind: kind, meetupID: payload.MeetupID}
		if opts.key != nil {
			k.key, k.hasKey = *opts.key, true
		}
		if idx, ok := s.pending[k]; ok {
			existing := &s.state.Notifications[idx]
			existing.Payload = payload
			due := dueAt
			existing.DueAt = &due
			s.recordQueued(kind, false)
			continue
		}

		id, _ := s.state.NextID(state.KindNotification)
		due := dueAt
		n := state.Notification{
			ID:        id,
			ClubID:    club.ID,
			UserID:    userID,
			Type:      kind,
			Payload:   payload,
			DueAt:     &due,
			CreatedAt: now,
		}
		if opts.key != nil {
			key := *opts.key
			n.Key = &key
		}
		s.state.Notifications = append(s.state.Notifications, n)
		s.pending[k] = len(s.state.Notifications) - 1
		s.recordQueued(kind, true)
	}
}

func (s *Service) recordQueued(kind state.NotificationType, created bool) {
	if s.metrics != nil {
		s.metrics.NotificationQueued(string(kind), created)
	}
}

// scheduleMeetupReminders (re)computes window reminders and the recipe prompt
// for a scheduled meetup. A nil userIDs targets every member.
func (s *Service) scheduleMeetupReminders(club *state.Club, meetup *state.Meetup, userIDs []string) {
	if meetup.ScheduledFor == nil {
		return
	}
	now := s.timestamp()
	scheduled := *meetup.ScheduledFor
	policy := club.ReminderPolicy

	clamp := func(due time.Time) *time.Time {
		if due.Before(now) {
			due = now
		}
		return &due
	}
	offset := func(hours float64) time.Duration {
		return time.Duration(hours * float64(time.Hour))
	}

	for _, hours := range policy.MeetupWindowHours {
		message := fmt.Sprintf("Reminder: meetup in %s hour(s) (%s)", reminder.FormatHours(hours), FormatTimestamp(scheduled))
		if hours == 0 {
			message = "Meetup starting now. Theme: " + meetup.Theme
		}
		key := "meetup_" + reminder.FormatHours(hours) + "h"
		s.queueReminder(club, state.NotificationMeetupReminder,
			state.NotificationPayload{MeetupID: meetup.ID, Message: message},
			queueOptions{dueAt: clamp(scheduled.Add(-offset(hours))), userIDs: userIDs, key: &key})
	}

	key := "recipe_prompt"
	s.queueReminder(club, state.NotificationRecipePrompt,
		state.NotificationPayload{
			MeetupID: meetup.ID,
			Message:  fmt.Sprintf("Prompt: add your recipe and image for theme %q.", meetup.Theme),
		},
		queueOptions{dueAt: clamp(scheduled.Add(-offset(policy.RecipePromptHours))), userIDs: userIDs, key: &key})
}

func isDue(n *state.Notification, at *time.Time) bool {
	if at == nil || n.DueAt == nil {
		return true
	}
	return !n.DueAt.After(*at)
}

// RunNotifications delivers every pending notification due at or before the
// given instant. An empty instant means now.
func (s *Service) RunNotifications(ctx context.Context, params RunNotificationsParams) (delivered []NotificationView, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "RunNotifications")
	defer func() {
		s.logOutcome(ctx, logger, "RunNotifications", err, "notifications delivered", "delivered_count", len(delivered))
	}()

	at := s.timestamp()
	if params.At != "" {
		if at, err = parseTimestampField("now", params.At, "Invalid notification timestamp. Use ISO format."); err != nil {
			return nil, err
		}
	}

	delivered = make([]NotificationView, 0)
	for i := range s.state.Notifications {
		n := &s.state.Notifications[i]
		if !n.Pending() || !isDue(n, &at) {
			continue
		}
		user, uErr := s.requireUser(n.UserID)
		if uErr != nil {
			return nil, uErr
		}
		deliveredAt := at
		n.DeliveredAt = &deliveredAt
		if idx, ok := s.pending[keyOf(n)]; ok && idx == i {
			delete(s.pending, keyOf(n))
		}
		delivered = append(delivered, NotificationView{Notification: *n, User: *user})
	}

	if s.metrics != nil {
		s.metrics.NotificationsDelivered(len(delivered))
	}
	return delivered, nil
}

// ListPendingNotifications previews undelivered notifications without
// changing them.
func (s *Service) ListPendingNotifications(ctx context.Context, params ListNotificationsParams) (pending []NotificationView, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "ListPendingNotifications")
	defer func() {
		s.logOutcome(ctx, logger, "ListPendingNotifications", err, "notifications listed", "result_count", len(pending))
	}()

	var at *time.Time
	if params.At != "" {
		parsed, pErr := parseTimestampField("now", params.At, "Invalid notification timestamp. Use ISO format.")
		if pErr != nil {
			return nil, pErr
		}
		at = &parsed
	}
	if params.UserID != "" {
		if _, err = s.requireUser(params.UserID); err != nil {
			return nil, err
		}
	}

	pending = make([]NotificationView, 0)
	for i := range s.state.Notifications {
		n := s.state.Notifications[i]
		if !n.Pending() || !isDue(&n, at) {
			continue
		}
		if params.UserID != "" && n.UserID != params.UserID {
			continue
		}
		user, uErr := s.requireUser(n.UserID)
		if uErr != nil {
			return nil, uErr
		}
		pending = append(pending, NotificationView{Notification: n, User: *user})
	}
	return pending, nil
}
