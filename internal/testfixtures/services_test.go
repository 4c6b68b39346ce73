package testfixtures

import (
	"context"
	"testing"

	"github.com/bjax13/CookbookClub/internal/application"
)

func TestServiceFactoryUsesClockAndFiles(t *testing.T) {
	factory := NewServiceFactory()
	ws, store := factory.NewWorkspace(t, nil)

	var seed ClubSeed
	err := ws.Update(context.Background(), func(svc *application.Service) error {
		seed = SeedClub(t, svc, "Bob")
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !seed.Club.CreatedAt.Equal(ReferenceTime()) {
		t.Fatalf("expected club created at reference time, got %v", seed.Club.CreatedAt)
	}
	if len(seed.Members) != 1 || seed.Members[0].ID != "user_2" {
		t.Fatalf("unexpected members: %+v", seed.Members)
	}
	if store.Saves() != 1 {
		t.Fatalf("expected one save, got %d", store.Saves())
	}
	if !factory.Files.Exists(DishImage) || factory.Files.Exists("/missing.jpg") {
		t.Fatalf("unexpected file checker state")
	}
}

func TestWorkspaceOverSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(t)
	factory := NewServiceFactory()

	ws, err := application.OpenWorkspace(ctx, store, factory.NewService)
	if err != nil {
		t.Fatalf("open workspace: %v", err)
	}
	if err := ws.Update(ctx, func(svc *application.Service) error {
		SeedClub(t, svc, "Bob", "Cleo")
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	reopened, err := application.OpenWorkspace(ctx, store, factory.NewService)
	if err != nil {
		t.Fatalf("reopen workspace: %v", err)
	}
	var members int
	if err := reopened.View(ctx, func(svc *application.Service) error {
		list, err := svc.ListMembers(ctx)
		members = len(list)
		return err
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if members != 3 {
		t.Fatalf("expected 3 members after reload, got %d", members)
	}
}
