package persistence

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when the requested file or record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrInvalidSnapshot is returned when a snapshot fails shape verification.
	ErrInvalidSnapshot = errors.New("persistence: invalid snapshot")
)

// FileNotFoundError reports a missing input file by its absolute path.
type FileNotFoundError struct {
	Label string
	Path  string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Label, e.Path)
}

func (e *FileNotFoundError) Unwrap() error { return ErrNotFound }

// InvalidSnapshotError lists the shape issues that blocked an import.
type InvalidSnapshotError struct {
	Issues []string
}

func (e *InvalidSnapshotError) Error() string {
	return "Invalid snapshot for import: " + strings.Join(e.Issues, " ")
}

func (e *InvalidSnapshotError) Unwrap() error { return ErrInvalidSnapshot }
