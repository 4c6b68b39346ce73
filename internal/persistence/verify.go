package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bjax13/CookbookClub/internal/state"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Report is the outcome of verifying a snapshot document.
type Report struct {
	FilePath string        `json:"filePath"`
	OK       bool          `json:"ok"`
	Issues   []string      `json:"issues"`
	Counts   *state.Counts `json:"counts"`
}

// shape mirrors the top level of a snapshot document. Collections stay raw
// so only their container type is checked.
type shape struct {
	Clubs                []json.RawMessage  `json:"clubs" validate:"required"`
	Users                []json.RawMessage  `json:"users" validate:"required"`
	Memberships          []json.RawMessage  `json:"memberships" validate:"required"`
	Meetups              []json.RawMessage  `json:"meetups" validate:"required"`
	Recipes              []json.RawMessage  `json:"recipes" validate:"required"`
	Favorites            []json.RawMessage  `json:"favorites" validate:"required"`
	PersonalCollections  []json.RawMessage  `json:"personalCollections" validate:"required"`
	CollectionItems      []json.RawMessage  `json:"collectionItems" validate:"required"`
	CookbookAccessGrants []json.RawMessage  `json:"cookbookAccessGrants" validate:"required"`
	Notifications        []json.RawMessage  `json:"notifications" validate:"required"`
	Counters             map[string]float64 `json:"counters" validate:"required,dive,gte=0"`
}

// Verify checks raw snapshot bytes and reports every shape problem found.
// filePath is copied into the report unchanged.
func Verify(filePath string, raw []byte) Report {
	report := Report{FilePath: filePath, Issues: []string{}}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		report.Issues = append(report.Issues, "Snapshot file is empty.")
		return report
	}

	var top any
	if err := json.Unmarshal(trimmed, &top); err != nil {
		report.Issues = append(report.Issues, "Invalid JSON: "+err.Error())
		return report
	}
	fields, ok := top.(map[string]any)
	if !ok {
		report.Issues = append(report.Issues, "Top-level value must be an object.")
		return report
	}

	doc := decodeShape(fields)
	report.Issues = append(report.Issues, shapeIssues(doc)...)
	if len(report.Issues) == 0 {
		report.OK = true
		report.Counts = &state.Counts{
			Clubs:         len(doc.Clubs),
			Users:         len(doc.Users),
			Meetups:       len(doc.Meetups),
			Recipes:       len(doc.Recipes),
			Notifications: len(doc.Notifications),
		}
	}
	return report
}

func decodeShape(fields map[string]any) shape {
	var doc shape
	arrays := map[string]*[]json.RawMessage{
		"clubs":                &doc.Clubs,
		"users":                &doc.Users,
		"memberships":          &doc.Memberships,
		"meetups":              &doc.Meetups,
		"recipes":              &doc.Recipes,
		"favorites":            &doc.Favorites,
		"personalCollections":  &doc.PersonalCollections,
		"collectionItems":      &doc.CollectionItems,
		"cookbookAccessGrants": &doc.CookbookAccessGrants,
		"notifications":        &doc.Notifications,
	}
	for key, dest := range arrays {
		items, ok := fields[key].([]any)
		if !ok {
			continue
		}
		*dest = make([]json.RawMessage, len(items))
	}

	if counters, ok := fields["counters"].(map[string]any); ok {
		doc.Counters = make(map[string]float64, len(counters))
		for key, value := range counters {
			doc.Counters[key] = counterValue(value)
		}
	}
	return doc
}

// counterValue coerces a counter the way loosely typed snapshots store it.
// Anything unusable becomes -1 so the gte rule rejects it.
func counterValue(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case bool:
		if v {
			return 1
		}
		return 0
	case float64:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return -1
		}
		return n
	default:
		return -1
	}
}

func shapeIssues(doc shape) []string {
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	var issues, counterIssues []string
	for _, fe := range verrs {
		field := fe.Field()
		switch {
		case field == "counters":
			issues = append(issues, "Field `counters` must be an object.")
		case strings.HasPrefix(field, "counters["):
			key := strings.TrimSuffix(strings.TrimPrefix(field, "counters["), "]")
			counterIssues = append(counterIssues, fmt.Sprintf("Counter `%s` must be a non-negative number.", key))
		default:
			issues = append(issues, fmt.Sprintf("Field `%s` must be an array.", field))
		}
	}
	sort.Strings(counterIssues)
	return append(issues, counterIssues...)
}

// ValidateSnapshot rejects a typed snapshot that would not pass Verify once
// written out.
func ValidateSnapshot(snapshot *state.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	if err := validate.Struct(snapshot); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return nil
}
