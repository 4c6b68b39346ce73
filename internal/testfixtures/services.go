package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bjax13/CookbookClub/internal/application"
	"github.com/bjax13/CookbookClub/internal/persistence"
	"github.com/bjax13/CookbookClub/internal/state"
)

// ServiceFactory builds club services bound to a deterministic clock and an
// in-memory file checker.
type ServiceFactory struct {
	Clock   *Clock
	Files   *Files
	Logger  *slog.Logger
	Metrics application.Metrics
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with a reference clock, the
// default Files and a discarding logger.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:  NewClock(time.Time{}),
		Files:  NewFiles(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(factory)
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithMetrics attaches an outcome recorder to every built service.
func WithMetrics(metrics application.Metrics) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Metrics = metrics
	}
}

// NewService binds a service to snapshot.
func (f *ServiceFactory) NewService(snapshot *state.Snapshot) *application.Service {
	svc := application.NewServiceWithLogger(snapshot, f.Files, f.Clock.NowFunc(), f.Logger)
	if f.Metrics != nil {
		svc.WithMetrics(f.Metrics)
	}
	return svc
}

// NewWorkspace opens a workspace over an in-memory store seeded with
// snapshot, or an empty state when snapshot is nil.
func (f *ServiceFactory) NewWorkspace(tb testing.TB, snapshot *state.Snapshot) (*application.Workspace, *persistence.MemoryStore) {
	tb.Helper()
	store := persistence.NewMemoryStore(snapshot)
	ws, err := application.OpenWorkspace(context.Background(), store, f.NewService)
	if err != nil {
		tb.Fatalf("open workspace: %v", err)
	}
	return ws, store
}
