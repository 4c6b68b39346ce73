package sqlite

import (
	"context"
	"testing"
)

// ExecForTest runs a raw statement against the store so tests can damage
// JSON columns the public API never writes badly.
func ExecForTest(t *testing.T, s *Store, stmt string) {
	t.Helper()
	if _, err := s.db.ExecContext(context.Background(), stmt); err != nil {
		t.Fatalf("exec %q: %v", stmt, err)
	}
}
