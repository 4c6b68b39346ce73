package testfixtures

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bjax13/CookbookClub/internal/application"
	"github.com/bjax13/CookbookClub/internal/state"
)

var referenceTime = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// DishImage is a recipe image path that Files reports as present by default.
const DishImage = "/tmp/cookbookclub/dish.jpg"

// Files is an in-memory application.FileChecker.
type Files struct {
	mu      sync.Mutex
	present map[string]bool
}

// NewFiles returns a checker that knows DishImage plus paths.
func NewFiles(paths ...string) *Files {
	f := &Files{present: map[string]bool{DishImage: true}}
	for _, p := range paths {
		f.present[p] = true
	}
	return f
}

// Exists implements application.FileChecker.
func (f *Files) Exists(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.present[path]
}

// Add marks path as present.
func (f *Files) Add(path string) {
	f.mu.Lock()
	f.present[path] = true
	f.mu.Unlock()
}

// ClubSeed names the people created by SeedClub.
type ClubSeed struct {
	Club    state.Club
	Host    state.User
	Members []state.User
	Meetup  state.Meetup
}

// SeedClub founds "Sunday Supper" hosted by Alice and invites one member per
// name through svc.
func SeedClub(tb testing.TB, svc *application.Service, memberNames ...string) ClubSeed {
	tb.Helper()
	ctx := context.Background()

	founded, err := svc.InitClub(ctx, application.InitClubParams{ClubName: "Sunday Supper", HostName: "Alice Host"})
	if err != nil {
		tb.Fatalf("init club: %v", err)
	}
	seed := ClubSeed{Club: founded.Club, Host: founded.Host, Meetup: founded.Meetup}
	for _, name := range memberNames {
		user, err := svc.CreateUser(ctx, application.CreateUserParams{Name: name})
		if err != nil {
			tb.Fatalf("create user %s: %v", name, err)
		}
		if _, err := svc.InviteMember(ctx, application.InviteMemberParams{ActorUserID: founded.Host.ID, UserID: user.ID}); err != nil {
			tb.Fatalf("invite %s: %v", name, err)
		}
		seed.Members = append(seed.Members, user)
	}
	return seed
}
