// Package datastore picks and opens the snapshot backend named by
// configuration or the --storage flag.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bjax13/CookbookClub/internal/persistence"
	"github.com/bjax13/CookbookClub/internal/persistence/jsonfile"
	"github.com/bjax13/CookbookClub/internal/persistence/sqlite"
)

// Kind names a storage backend.
type Kind string

const (
	KindJSON   Kind = "json"
	KindSQLite Kind = "sqlite"
)

// ErrUnknownKind is returned by ParseKind for anything but json or sqlite.
var ErrUnknownKind = errors.New("datastore: unknown storage kind")

// ParseKind validates a backend name. An empty name selects JSON.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case "", KindJSON:
		return KindJSON, nil
	case KindSQLite:
		return KindSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// DefaultPath is the data file used when no path is configured.
func DefaultPath(kind Kind) string {
	if kind == KindSQLite {
		return filepath.Join("data", "state.sqlite")
	}
	return filepath.Join("data", "state.json")
}

// Options selects and configures a backend.
type Options struct {
	Kind Kind
	// Path overrides DefaultPath(Kind).
	Path              string
	SQLiteBusyTimeout time.Duration
}

// Handle is an open backend. It satisfies persistence.Store.
type Handle struct {
	persistence.Store
	kind   Kind
	path   string
	sqlite *sqlite.Store
}

// Open resolves the data path and opens the backend. JSON files are not
// touched until the first load; SQLite databases are created and migrated.
func Open(ctx context.Context, opts Options) (*Handle, error) {
	kind, err := ParseKind(string(opts.Kind))
	if err != nil {
		return nil, err
	}
	path := opts.Path
	if path == "" {
		path = DefaultPath(kind)
	}

	switch kind {
	case KindSQLite:
		cfg := sqlite.DefaultConfig(path)
		if opts.SQLiteBusyTimeout > 0 {
			cfg.BusyTimeout = opts.SQLiteBusyTimeout
		}
		store, err := sqlite.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Handle{Store: store, kind: kind, path: store.Path(), sqlite: store}, nil
	default:
		store, err := jsonfile.Open(path)
		if err != nil {
			return nil, err
		}
		return &Handle{Store: store, kind: kind, path: store.Path()}, nil
	}
}

// Kind reports the backend in use.
func (h *Handle) Kind() Kind { return h.kind }

// Path is the absolute data file location.
func (h *Handle) Path() string { return h.path }

// SQLite exposes the diagnostics API when the backend is SQLite.
func (h *Handle) SQLite() (*sqlite.Store, bool) {
	return h.sqlite, h.sqlite != nil
}

// Close releases backend resources.
func (h *Handle) Close() error {
	if h.sqlite != nil {
		return h.sqlite.Close()
	}
	return nil
}
