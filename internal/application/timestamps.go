package application

import (
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 instants. Values without a zone are read as
// UTC. The result is UTC truncated to milliseconds.
func ParseTimestamp(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC().Truncate(time.Millisecond), true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t the way notification messages and exports spell
// instants, e.g. 2026-04-03T18:30:00.000Z.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func parseTimestampField(field, value, message string) (time.Time, error) {
	t, ok := ParseTimestamp(value)
	if !ok {
		return time.Time{}, invalid(field, message)
	}
	return t, nil
}
