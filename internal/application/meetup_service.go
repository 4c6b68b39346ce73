package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/bjax13/CookbookClub/internal/state"
)

// UpcomingMeetup returns the upcoming meetup, or nil when none exists.
func (s *Service) UpcomingMeetup(ctx context.Context) (*state.Meetup, error) {
	club, err := s.requireClub()
	if err != nil {
		return nil, err
	}
	upcoming := s.upcomingMeetup(club.ID)
	if upcoming == nil {
		return nil, nil
	}
	m := *upcoming
	return &m, nil
}

// GetMeetup returns one meetup of the club joined with its host.
func (s *Service) GetMeetup(ctx context.Context, meetupID string) (MeetupView, error) {
	club, err := s.requireClub()
	if err != nil {
		return MeetupView{}, err
	}
	meetup := s.findMeetup(meetupID)
	if meetup == nil || meetup.ClubID != club.ID {
		return MeetupView{}, notFound("Unknown meetup: %s", meetupID)
	}
	host, err := s.requireUser(meetup.HostUserID)
	if err != nil {
		return MeetupView{}, err
	}
	return MeetupView{Meetup: *meetup, Host: *host}, nil
}

// ListMeetups returns the club's meetups in creation order.
func (s *Service) ListMeetups(ctx context.Context) (meetups []MeetupView, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "ListMeetups")
	defer func() {
		s.logOutcome(ctx, logger, "ListMeetups", err, "meetups listed", "result_count", len(meetups))
	}()

	club, err := s.requireClub()
	if err != nil {
		return nil, err
	}
	meetups = make([]MeetupView, 0)
	for _, m := range s.state.Meetups {
		if m.ClubID != club.ID {
			continue
		}
		host, uErr := s.requireUser(m.HostUserID)
		if uErr != nil {
			return nil, uErr
		}
		meetups = append(meetups, MeetupView{Meetup: m, Host: *host})
	}
	sort.SliceStable(meetups, func(i, j int) bool { return meetups[i].Seq < meetups[j].Seq })
	return meetups, nil
}

// ScheduleUpcomingMeetup sets the time of the upcoming meetup and refreshes
// every member's reminders.
func (s *Service) ScheduleUpcomingMeetup(ctx context.Context, params ScheduleMeetupParams) (meetup state.Meetup, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "ScheduleUpcomingMeetup", "actor_user_id", params.ActorUserID)
	defer func() {
		s.logOutcome(ctx, logger, "ScheduleUpcomingMeetup", err, "meetup scheduled", "meetup_id", meetup.ID)
	}()

	club, err := s.requireClub()
	if err != nil {
		return state.Meetup{}, err
	}
	if err = s.requireHost(club, params.ActorUserID); err != nil {
		return state.Meetup{}, err
	}
	upcoming := s.upcomingMeetup(club.ID)
	if upcoming == nil {
		return state.Meetup{}, precondition("No upcoming meetup record exists.")
	}
	at, err := parseTimestampField("scheduledFor", params.ScheduledFor, "Invalid datetime. Use ISO format.")
	if err != nil {
		return state.Meetup{}, err
	}

	upcoming.ScheduledFor = &at
	s.scheduleMeetupReminders(club, upcoming, nil)
	s.queueReminder(club, state.NotificationMeetupUpdated, state.NotificationPayload{
		MeetupID: upcoming.ID,
		Message:  fmt.Sprintf("Meetup scheduled for %s. Theme: %s", FormatTimestamp(at), upcoming.Theme),
	}, queueOptions{})

	return *upcoming, nil
}

// SetMeetupTheme renames the upcoming meetup's theme and refreshes reminders.
func (s *Service) SetMeetupTheme(ctx context.Context, params SetThemeParams) (meetup state.Meetup, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "SetMeetupTheme", "actor_user_id", params.ActorUserID)
	defer func() {
		s.logOutcome(ctx, logger, "SetMeetupTheme", err, "meetup theme updated", "meetup_id", meetup.ID)
	}()

	club, err := s.requireClub()
	if err != nil {
		return state.Meetup{}, err
	}
	if err = s.requireHost(club, params.ActorUserID); err != nil {
		return state.Meetup{}, err
	}
	upcoming := s.upcomingMeetup(club.ID)
	if upcoming == nil {
		return state.Meetup{}, precondition("No upcoming meetup record exists.")
	}
	theme, err := requireText("theme", params.Theme, "Theme")
	if err != nil {
		return state.Meetup{}, err
	}

	upcoming.Theme = theme
	s.scheduleMeetupReminders(club, upcoming, nil)
	s.queueReminder(club, state.NotificationMeetupUpdated, state.NotificationPayload{
		MeetupID: upcoming.ID,
		Message:  "Theme updated: " + theme,
	}, queueOptions{})

	return *upcoming, nil
}

// AdvanceMeetup closes the upcoming meetup and opens its successor.
func (s *Service) AdvanceMeetup(ctx context.Context, actorUserID string) (result AdvanceMeetupResult, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "AdvanceMeetup", "actor_user_id", actorUserID)
	defer func() {
		s.logOutcome(ctx, logger, "AdvanceMeetup", err, "meetup advanced",
			"past_meetup_id", result.Past.ID,
			"next_meetup_id", result.Next.ID,
		)
	}()

	club, err := s.requireClub()
	if err != nil {
		return AdvanceMeetupResult{}, err
	}
	if err = s.requireHost(club, actorUserID); err != nil {
		return AdvanceMeetupResult{}, err
	}
	upcoming := s.upcomingMeetup(club.ID)
	if upcoming == nil {
		return AdvanceMeetupResult{}, precondition("No upcoming meetup to advance.")
	}

	upcoming.Status = state.MeetupPast
	past := *upcoming

	id, seq := s.state.NextID(state.KindMeetup)
	next := state.Meetup{
		ID:         id,
		Seq:        seq,
		ClubID:     club.ID,
		HostUserID: club.HostUserID,
		Theme:      "TBD",
		Status:     state.MeetupUpcoming,
		CreatedAt:  s.timestamp(),
	}
	s.state.Meetups = append(s.state.Meetups, next)

	return AdvanceMeetupResult{Past: past, Next: next}, nil
}
