package application

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bjax13/CookbookClub/internal/state"
)

var referenceTime = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

type fakeFiles map[string]bool

func (f fakeFiles) Exists(path string) bool { return f[path] }

type fixture struct {
	t     *testing.T
	ctx   context.Context
	now   time.Time
	files fakeFiles
	svc   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		now:   referenceTime,
		files: fakeFiles{"/tmp/dish.jpg": true},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewServiceWithLogger(state.New(), f.files, func() time.Time { return f.now }, logger)
	return f
}

// initClub founds "Sunday Supper" hosted by user_1.
func (f *fixture) initClub() InitClubResult {
	f.t.Helper()
	result, err := f.svc.InitClub(f.ctx, InitClubParams{ClubName: "Sunday Supper", HostName: "Alice Host"})
	require.NoError(f.t, err)
	return result
}

func (f *fixture) addUser(name string) state.User {
	f.t.Helper()
	user, err := f.svc.CreateUser(f.ctx, CreateUserParams{Name: name})
	require.NoError(f.t, err)
	return user
}

func (f *fixture) addMember(name string) state.User {
	f.t.Helper()
	user := f.addUser(name)
	_, err := f.svc.InviteMember(f.ctx, InviteMemberParams{ActorUserID: "user_1", UserID: user.ID})
	require.NoError(f.t, err)
	return user
}

func (f *fixture) notificationsFor(userID string) []state.Notification {
	var out []state.Notification
	for _, n := range f.svc.Snapshot().Notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}
