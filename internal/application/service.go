package application

import (
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bjax13/CookbookClub/internal/state"
)

const serviceName = "ClubService"

// FileChecker reports whether a recipe image exists.
type FileChecker interface {
	Exists(path string) bool
}

// FileCheckerFunc adapts a function to FileChecker.
type FileCheckerFunc func(path string) bool

// Exists implements FileChecker.
func (f FileCheckerFunc) Exists(path string) bool {
	return f(path)
}

// OSFileChecker checks paths against the local filesystem.
type OSFileChecker struct{}

// Exists implements FileChecker.
func (OSFileChecker) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Metrics receives operation outcomes. A nil Metrics disables recording.
type Metrics interface {
	OperationCompleted(operation, outcome string)
	NotificationQueued(notificationType string, created bool)
	NotificationsDelivered(count int)
}

// Service applies club operations to one in-memory snapshot. It is not safe
// for concurrent use; Workspace serialises access.
type Service struct {
	state   *state.Snapshot
	files   FileChecker
	now     func() time.Time
	logger  *slog.Logger
	metrics Metrics
	pending map[notificationKey]int
}

// NewService constructs a Service over snapshot using the default logger.
func NewService(snapshot *state.Snapshot, files FileChecker, now func() time.Time) *Service {
	return NewServiceWithLogger(snapshot, files, now, nil)
}

// NewServiceWithLogger constructs a Service with an explicit logger.
func NewServiceWithLogger(snapshot *state.Snapshot, files FileChecker, now func() time.Time, logger *slog.Logger) *Service {
	if snapshot == nil {
		snapshot = state.New()
	}
	if files == nil {
		files = OSFileChecker{}
	}
	if now == nil {
		now = time.Now
	}
	s := &Service{
		state:  snapshot,
		files:  files,
		now:    now,
		logger: defaultLogger(logger),
	}
	s.indexPending()
	return s
}

// WithMetrics attaches an outcome recorder and returns the receiver.
func (s *Service) WithMetrics(metrics Metrics) *Service {
	s.metrics = metrics
	return s
}

// Snapshot exposes the state the service operates on.
func (s *Service) Snapshot() *state.Snapshot {
	return s.state
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) club() *state.Club {
	if len(s.state.Clubs) == 0 {
		return nil
	}
	return &s.state.Clubs[0]
}

func (s *Service) requireClub() (*state.Club, error) {
	club := s.club()
	if club == nil {
		return nil, precondition("Club is not initialized. Run `club init`.")
	}
	return club, nil
}

func (s *Service) findUser(userID string) *state.User {
	for i := range s.state.Users {
		if s.state.Users[i].ID == userID {
			return &s.state.Users[i]
		}
	}
	return nil
}

func (s *Service) requireUser(userID string) (*state.User, error) {
	user := s.findUser(userID)
	if user == nil {
		return nil, notFound("Unknown user: %s", userID)
	}
	return user, nil
}

func (s *Service) findMembership(clubID, userID string) *state.Membership {
	for i := range s.state.Memberships {
		m := &s.state.Memberships[i]
		if m.ClubID == clubID && m.UserID == userID {
			return m
		}
	}
	return nil
}

func (s *Service) memberUserIDs(clubID string) []string {
	ids := make([]string, 0, len(s.state.Memberships))
	for _, m := range s.state.Memberships {
		if m.ClubID == clubID {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

func (s *Service) findMeetup(meetupID string) *state.Meetup {
	for i := range s.state.Meetups {
		if s.state.Meetups[i].ID == meetupID {
			return &s.state.Meetups[i]
		}
	}
	return nil
}

func (s *Service) upcomingMeetup(clubID string) *state.Meetup {
	for i := range s.state.Meetups {
		m := &s.state.Meetups[i]
		if m.ClubID == clubID && m.Status == state.MeetupUpcoming {
			return m
		}
	}
	return nil
}

func (s *Service) pastMeetups(clubID string) []*state.Meetup {
	past := make([]*state.Meetup, 0)
	for i := range s.state.Meetups {
		m := &s.state.Meetups[i]
		if m.ClubID == clubID && m.Status == state.MeetupPast {
			past = append(past, m)
		}
	}
	sort.SliceStable(past, func(i, j int) bool { return past[i].Seq < past[j].Seq })
	return past
}

func (s *Service) findRecipe(recipeID string) *state.Recipe {
	for i := range s.state.Recipes {
		if s.state.Recipes[i].ID == recipeID {
			return &s.state.Recipes[i]
		}
	}
	return nil
}

// meetupSeq resolves the creation order of a meetup id, preferring the stored
// sequence and falling back to the id suffix.
func (s *Service) meetupSeq(meetupID string) int64 {
	if m := s.findMeetup(meetupID); m != nil && m.Seq > 0 {
		return m.Seq
	}
	return state.Sequence(meetupID)
}

func requireText(field, value, label string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", invalid(field, label+" is required.")
	}
	return trimmed, nil
}

func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
