package reminder

import (
	"regexp"
	"sort"
)

// Source identifies where a template definition lives.
type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceCustom  Source = "custom"
)

// Template is a named policy as presented to callers.
type Template struct {
	Name   string `json:"name"`
	Source Source `json:"source"`
	Policy Policy `json:"policy"`
}

type builtin struct {
	name   string
	policy Policy
}

var builtins = []builtin{
	{name: "standard", policy: Policy{MeetupWindowHours: []float64{168, 24, 3, 0}, RecipePromptHours: 48}},
	{name: "light", policy: Policy{MeetupWindowHours: []float64{24, 2, 0}, RecipePromptHours: 24}},
	{name: "tight", policy: Policy{MeetupWindowHours: []float64{336, 168, 72, 24, 3, 1, 0}, RecipePromptHours: 72}},
	{name: "same_day", policy: Policy{MeetupWindowHours: []float64{8, 3, 1, 0}, RecipePromptHours: 6}},
}

var (
	templateNamePattern = regexp.MustCompile(`^[a-z0-9_]{2,40}$`)
	prefixPattern       = regexp.MustCompile(`^[a-z0-9_]{1,20}$`)
)

// ValidTemplateName reports whether name can identify a custom template.
func ValidTemplateName(name string) bool {
	return templateNamePattern.MatchString(name)
}

// ValidPrefix reports whether prefix can be prepended to imported names.
func ValidPrefix(prefix string) bool {
	return prefixPattern.MatchString(prefix)
}

// Builtin looks up a built-in template.
func Builtin(name string) (Policy, bool) {
	for _, b := range builtins {
		if b.name == name {
			return b.policy.Clone(), true
		}
	}
	return Policy{}, false
}

// IsBuiltin reports whether name is reserved by a built-in template.
func IsBuiltin(name string) bool {
	_, ok := Builtin(name)
	return ok
}

// List returns built-in templates in declaration order followed by custom
// templates sorted by name.
func List(custom map[string]Policy) []Template {
	templates := make([]Template, 0, len(builtins)+len(custom))
	for _, b := range builtins {
		templates = append(templates, Template{Name: b.name, Source: SourceBuiltin, Policy: b.policy.Clone()})
	}
	for _, name := range sortedNames(custom) {
		templates = append(templates, Template{Name: name, Source: SourceCustom, Policy: custom[name].Clone()})
	}
	return templates
}

// Resolve finds a template by name. Custom definitions win over built-ins.
func Resolve(custom map[string]Policy, name string) (Template, bool) {
	if policy, ok := custom[name]; ok {
		return Template{Name: name, Source: SourceCustom, Policy: policy.Clone()}, true
	}
	if policy, ok := Builtin(name); ok {
		return Template{Name: name, Source: SourceBuiltin, Policy: policy}, true
	}
	return Template{}, false
}

// Sanitize drops entries with invalid names and normalises every policy.
func Sanitize(templates map[string]Policy) map[string]Policy {
	clean := make(map[string]Policy, len(templates))
	for name, policy := range templates {
		if !ValidTemplateName(name) {
			continue
		}
		clean[name] = Normalize(policy.Input())
	}
	return clean
}

// CloneTemplates deep-copies a custom template map.
func CloneTemplates(templates map[string]Policy) map[string]Policy {
	if templates == nil {
		return nil
	}
	clone := make(map[string]Policy, len(templates))
	for name, policy := range templates {
		clone[name] = policy.Clone()
	}
	return clone
}

// SkipReason explains why an imported template was not applied.
type SkipReason string

const (
	SkipInvalidName     SkipReason = "invalid_name"
	SkipBuiltinConflict SkipReason = "builtin_conflict"
	SkipAlreadyExists   SkipReason = "already_exists"
)

// Skipped records one template left out of an import.
type Skipped struct {
	Name   string     `json:"name"`
	Reason SkipReason `json:"reason"`
}

// ImportResult summarises a bulk merge.
type ImportResult struct {
	Imported  []string  `json:"imported"`
	Skipped   []Skipped `json:"skipped"`
	Overwrite bool      `json:"overwrite"`
	Prefix    *string   `json:"prefix"`
}

// Merge folds incoming templates into existing, which is modified in place.
// A non-empty prefix is joined to each name with an underscore. Names are
// processed in sorted order so results are deterministic.
func Merge(existing map[string]Policy, incoming map[string]Input, prefix string, overwrite bool) ImportResult {
	result := ImportResult{
		Imported:  []string{},
		Skipped:   []Skipped{},
		Overwrite: overwrite,
	}
	if prefix != "" {
		p := prefix
		result.Prefix = &p
	}

	names := make([]string, 0, len(incoming))
	for name := range incoming {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, raw := range names {
		if !ValidTemplateName(raw) {
			result.Skipped = append(result.Skipped, Skipped{Name: raw, Reason: SkipInvalidName})
			continue
		}
		name := raw
		if prefix != "" {
			name = prefix + "_" + raw
		}
		if !ValidTemplateName(name) {
			result.Skipped = append(result.Skipped, Skipped{Name: name, Reason: SkipInvalidName})
			continue
		}
		if IsBuiltin(name) {
			result.Skipped = append(result.Skipped, Skipped{Name: name, Reason: SkipBuiltinConflict})
			continue
		}
		if _, exists := existing[name]; exists && !overwrite {
			result.Skipped = append(result.Skipped, Skipped{Name: name, Reason: SkipAlreadyExists})
			continue
		}
		existing[name] = Normalize(incoming[raw])
		result.Imported = append(result.Imported, name)
	}
	return result
}

func sortedNames(templates map[string]Policy) []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
