// Package reminder normalises reminder policies and manages the named
// templates a club can apply to its active policy.
package reminder

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Policy is the canonical reminder configuration of a club. Window hours are
// unique, non-negative and sorted descending.
type Policy struct {
	MeetupWindowHours []float64 `json:"meetupWindowHours"`
	RecipePromptHours float64   `json:"recipePromptHours"`
}

// Input carries a possibly incomplete or invalid policy. A nil window slice
// or prompt pointer selects the default for that field.
type Input struct {
	MeetupWindowHours []float64
	RecipePromptHours *float64
}

var (
	defaultWindowHours       = []float64{168, 24, 3, 0}
	defaultRecipePromptHours = 48.0
)

// Default returns the built-in default policy.
func Default() Policy {
	return Policy{
		MeetupWindowHours: append([]float64(nil), defaultWindowHours...),
		RecipePromptHours: defaultRecipePromptHours,
	}
}

// Normalize converts arbitrary input into canonical form. Invalid window
// entries are dropped; an empty result falls back to the default windows.
func Normalize(in Input) Policy {
	windows := make([]float64, 0, len(in.MeetupWindowHours))
	if in.MeetupWindowHours != nil {
		seen := make(map[float64]struct{}, len(in.MeetupWindowHours))
		for _, value := range in.MeetupWindowHours {
			if !validHours(value) {
				continue
			}
			if _, ok := seen[value]; ok {
				continue
			}
			seen[value] = struct{}{}
			windows = append(windows, value)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(windows)))
	if len(windows) == 0 {
		windows = append(windows, defaultWindowHours...)
	}

	prompt := defaultRecipePromptHours
	if in.RecipePromptHours != nil && validHours(*in.RecipePromptHours) {
		prompt = *in.RecipePromptHours
	}

	return Policy{MeetupWindowHours: windows, RecipePromptHours: prompt}
}

// Input returns the policy as normalisation input.
func (p Policy) Input() Input {
	prompt := p.RecipePromptHours
	return Input{
		MeetupWindowHours: append([]float64(nil), p.MeetupWindowHours...),
		RecipePromptHours: &prompt,
	}
}

// Clone returns a deep copy of the policy.
func (p Policy) Clone() Policy {
	return Policy{
		MeetupWindowHours: append([]float64(nil), p.MeetupWindowHours...),
		RecipePromptHours: p.RecipePromptHours,
	}
}

// UnmarshalJSON accepts loosely typed stored policies (numeric strings,
// missing fields, stray values) and always yields a normalised policy.
func (p *Policy) UnmarshalJSON(data []byte) error {
	var raw struct {
		MeetupWindowHours json.RawMessage `json:"meetupWindowHours"`
		RecipePromptHours json.RawMessage `json:"recipePromptHours"`
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
	}

	in := Input{}
	if values, ok := decodeNumberList(raw.MeetupWindowHours); ok {
		in.MeetupWindowHours = values
	}
	if value, ok := decodeNumber(raw.RecipePromptHours); ok {
		in.RecipePromptHours = &value
	}
	*p = Normalize(in)
	return nil
}

func validHours(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0) && value >= 0
}

func decodeNumberList(raw json.RawMessage) ([]float64, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	values := make([]float64, 0, len(items))
	for _, item := range items {
		if value, ok := decodeNumber(item); ok {
			values = append(values, value)
		}
	}
	return values, true
}

func decodeNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, true
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// FormatHours renders an hour offset the way keys and messages spell it.
func FormatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', -1, 64)
}
