// Package jsonfile stores the club snapshot as a single pretty-printed JSON
// document.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bjax13/CookbookClub/internal/persistence"
	"github.com/bjax13/CookbookClub/internal/state"
)

// Store reads and writes one snapshot file.
type Store struct {
	path string
}

// Open resolves path against the working directory. The file itself is not
// touched until Load or Save.
func Open(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve data path %q: %w", path, err)
	}
	return &Store{path: abs}, nil
}

// Path returns the absolute snapshot location.
func (s *Store) Path() string { return s.path }

// Load returns the stored snapshot. A missing or blank file yields an empty
// snapshot.
func (s *Store) Load(ctx context.Context) (*state.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return readSnapshot(s.path)
}

// Save replaces the file atomically.
func (s *Store) Save(ctx context.Context, snapshot *state.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := persistence.ValidateSnapshot(snapshot); err != nil {
		return err
	}
	return writeSnapshot(s.path, snapshot)
}

// ExportToFile writes snapshot to path and returns the absolute location.
func ExportToFile(path string, snapshot *state.Snapshot) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve export path %q: %w", path, err)
	}
	if err := persistence.ValidateSnapshot(snapshot); err != nil {
		return "", err
	}
	if err := writeSnapshot(abs, snapshot); err != nil {
		return "", err
	}
	return abs, nil
}

// ImportFromFile verifies and loads a snapshot document.
func ImportFromFile(path string) (*state.Snapshot, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve import path %q: %w", path, err)
	}
	raw, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &persistence.FileNotFoundError{Label: "Import file", Path: abs}
	}
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	if report := persistence.Verify(abs, raw); !report.OK {
		return nil, &persistence.InvalidSnapshotError{Issues: report.Issues}
	}
	return decode(abs, raw)
}

// VerifyFile checks the shape of a snapshot document without loading it.
func VerifyFile(path string) (persistence.Report, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return persistence.Report{}, fmt.Errorf("resolve snapshot path %q: %w", path, err)
	}
	raw, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return persistence.Report{}, &persistence.FileNotFoundError{Label: "Snapshot file", Path: abs}
	}
	if err != nil {
		return persistence.Report{}, fmt.Errorf("read snapshot file: %w", err)
	}
	return persistence.Verify(abs, raw), nil
}

func readSnapshot(path string) (*state.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return state.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return decode(path, raw)
}

func decode(path string, raw []byte) (*state.Snapshot, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return state.New(), nil
	}
	var snap state.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	snap.Normalize()
	return &snap, nil
}

func writeSnapshot(path string, snapshot *state.Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
