package reminder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidTemplateName(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidTemplateName("weekend_prep"))
	assert.True(t, ValidTemplateName("a1"))
	assert.False(t, ValidTemplateName("a"))
	assert.False(t, ValidTemplateName("Weekend"))
	assert.False(t, ValidTemplateName("has-dash"))
	assert.False(t, ValidTemplateName("abcdefghijabcdefghijabcdefghijabcdefghijx"))
}

func TestResolvePrefersCustom(t *testing.T) {
	t.Parallel()

	custom := map[string]Policy{"light": {MeetupWindowHours: []float64{5}, RecipePromptHours: 1}}

	tmpl, ok := Resolve(custom, "light")
	require.True(t, ok)
	assert.Equal(t, SourceCustom, tmpl.Source)
	assert.Equal(t, []float64{5}, tmpl.Policy.MeetupWindowHours)

	tmpl, ok = Resolve(custom, "tight")
	require.True(t, ok)
	assert.Equal(t, SourceBuiltin, tmpl.Source)
	assert.Equal(t, []float64{336, 168, 72, 24, 3, 1, 0}, tmpl.Policy.MeetupWindowHours)

	_, ok = Resolve(custom, "missing")
	assert.False(t, ok)
}

func TestListOrdersBuiltinsThenCustom(t *testing.T) {
	t.Parallel()

	list := List(map[string]Policy{"zeta": Default(), "alpha": Default()})
	names := make([]string, 0, len(list))
	for _, tmpl := range list {
		names = append(names, tmpl.Name)
	}
	assert.Equal(t, []string{"standard", "light", "tight", "same_day", "alpha", "zeta"}, names)
}

func TestBuiltinReturnsCopy(t *testing.T) {
	t.Parallel()

	policy, ok := Builtin("standard")
	require.True(t, ok)
	policy.MeetupWindowHours[0] = 1

	again, _ := Builtin("standard")
	assert.Equal(t, float64(168), again.MeetupWindowHours[0])
}

func TestMerge(t *testing.T) {
	t.Parallel()

	existing := map[string]Policy{"team_weekend": Default()}
	incoming := map[string]Input{
		"weekend":  {MeetupWindowHours: []float64{10, 2}},
		"standard": {},
		"Bad":      {},
		"light":    {},
	}

	result := Merge(existing, incoming, "team", false)

	assert.Equal(t, []string{"team_light", "team_standard"}, result.Imported)
	assert.False(t, result.Overwrite)
	require.NotNil(t, result.Prefix)
	assert.Equal(t, "team", *result.Prefix)
	assert.Equal(t, []Skipped{
		{Name: "Bad", Reason: SkipInvalidName},
		{Name: "team_weekend", Reason: SkipAlreadyExists},
	}, result.Skipped)
	assert.Equal(t, Default(), existing["team_weekend"])
	assert.Contains(t, existing, "team_light")
}

func TestMergeOverwriteAndBuiltinConflict(t *testing.T) {
	t.Parallel()

	existing := map[string]Policy{"weekend": Default()}
	incoming := map[string]Input{
		"weekend":  {MeetupWindowHours: []float64{10, 2}},
		"standard": {},
	}

	result := Merge(existing, incoming, "", true)

	assert.Equal(t, []string{"weekend"}, result.Imported)
	assert.Equal(t, []Skipped{{Name: "standard", Reason: SkipBuiltinConflict}}, result.Skipped)
	assert.Nil(t, result.Prefix)
	assert.Equal(t, []float64{10, 2}, existing["weekend"].MeetupWindowHours)
}

func TestSanitizeDropsInvalidNames(t *testing.T) {
	t.Parallel()

	clean := Sanitize(map[string]Policy{
		"ok_name": {MeetupWindowHours: []float64{1, 5}},
		"NOPE":    Default(),
	})
	require.Len(t, clean, 1)
	assert.Equal(t, []float64{5, 1}, clean["ok_name"].MeetupWindowHours)
}
