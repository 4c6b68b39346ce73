package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjax13/CookbookClub/internal/reminder"
)

func TestSetReminderPolicyNormalises(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.initClub()
	bob := f.addMember("Bob")

	_, err := f.svc.SetReminderPolicy(f.ctx, SetReminderPolicyParams{ActorUserID: bob.ID})
	assert.ErrorIs(t, err, ErrUnauthorized)

	policy, err := f.svc.SetReminderPolicy(f.ctx, SetReminderPolicyParams{
		ActorUserID: "user_1",
		Policy:      reminder.Input{MeetupWindowHours: []float64{3, 24, 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{24, 3}, policy.MeetupWindowHours)
	assert.Equal(t, float64(48), policy.RecipePromptHours)
}

func TestCustomReminderTemplates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.initClub()

	_, err := f.svc.AddReminderTemplate(f.ctx, AddReminderTemplateParams{ActorUserID: "user_1", Name: "X"})
	assert.EqualError(t, err, "Invalid template name. Use 2-40 chars: lowercase letters, numbers, underscore.")

	_, err = f.svc.AddReminderTemplate(f.ctx, AddReminderTemplateParams{ActorUserID: "user_1", Name: "light"})
	require.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "Cannot overwrite built-in reminder template.")

	tmpl, err := f.svc.AddReminderTemplate(f.ctx, AddReminderTemplateParams{
		ActorUserID: "user_1",
		Name:        "weekend",
		Policy:      reminder.Input{MeetupWindowHours: []float64{6, 48}, RecipePromptHours: floatPtr(24)},
	})
	require.NoError(t, err)
	assert.Equal(t, reminder.SourceCustom, tmpl.Source)
	assert.Equal(t, []float64{48, 6}, tmpl.Policy.MeetupWindowHours)

	list, err := f.svc.ListReminderTemplates(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, "weekend", list[4].Name)

	applied, err := f.svc.ApplyReminderTemplate(f.ctx, ApplyReminderTemplateParams{ActorUserID: "user_1", TemplateName: "weekend"})
	require.NoError(t, err)
	assert.Equal(t, reminder.SourceCustom, applied.Source)
	assert.Equal(t, []float64{48, 6}, f.svc.Snapshot().Clubs[0].ReminderPolicy.MeetupWindowHours)

	applied, err = f.svc.ApplyReminderTemplate(f.ctx, ApplyReminderTemplateParams{ActorUserID: "user_1", TemplateName: "same_day"})
	require.NoError(t, err)
	assert.Equal(t, reminder.SourceBuiltin, applied.Source)
	assert.Equal(t, []float64{8, 3, 1, 0}, applied.Policy.MeetupWindowHours)
	assert.Equal(t, float64(6), applied.Policy.RecipePromptHours)

	_, err = f.svc.ApplyReminderTemplate(f.ctx, ApplyReminderTemplateParams{ActorUserID: "user_1", TemplateName: "nope"})
	assert.EqualError(t, err, "Unknown reminder template: nope")

	exported, err := f.svc.ExportReminderTemplates(f.ctx)
	require.NoError(t, err)
	assert.Contains(t, exported, "weekend")

	removed, err := f.svc.RemoveReminderTemplate(f.ctx, RemoveReminderTemplateParams{ActorUserID: "user_1", Name: "weekend"})
	require.NoError(t, err)
	assert.Equal(t, "weekend", removed.Removed)

	_, err = f.svc.RemoveReminderTemplate(f.ctx, RemoveReminderTemplateParams{ActorUserID: "user_1", Name: "weekend"})
	assert.EqualError(t, err, "Unknown custom reminder template: weekend")
}

func TestImportReminderTemplates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.initClub()

	_, err := f.svc.ImportReminderTemplates(f.ctx, ImportReminderTemplatesParams{
		ActorUserID: "user_1",
		Templates:   map[string]reminder.Input{"a1": {}},
		Prefix:      "Bad Prefix",
	})
	assert.EqualError(t, err, "Invalid template prefix. Use 1-20 chars: lowercase letters, numbers, underscore.")

	_, err = f.svc.ImportReminderTemplates(f.ctx, ImportReminderTemplatesParams{ActorUserID: "user_1"})
	assert.EqualError(t, err, "Invalid template payload. Expected an object keyed by template name.")

	result, err := f.svc.ImportReminderTemplates(f.ctx, ImportReminderTemplatesParams{
		ActorUserID: "user_1",
		Templates: map[string]reminder.Input{
			"brunch":   {MeetupWindowHours: []float64{2}},
			"standard": {},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"brunch"}, result.Imported)
	assert.Equal(t, []reminder.Skipped{{Name: "standard", Reason: reminder.SkipBuiltinConflict}}, result.Skipped)
	assert.Nil(t, result.Prefix)

	result, err = f.svc.ImportReminderTemplates(f.ctx, ImportReminderTemplatesParams{
		ActorUserID: "user_1",
		Templates:   map[string]reminder.Input{"brunch": {MeetupWindowHours: []float64{9}}},
		Prefix:      " club ",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"club_brunch"}, result.Imported)
	require.NotNil(t, result.Prefix)
	assert.Equal(t, "club", *result.Prefix)

	result, err = f.svc.ImportReminderTemplates(f.ctx, ImportReminderTemplatesParams{
		ActorUserID: "user_1",
		Templates:   map[string]reminder.Input{"brunch": {MeetupWindowHours: []float64{9}}},
	})
	require.NoError(t, err)
	assert.Equal(t, []reminder.Skipped{{Name: "brunch", Reason: reminder.SkipAlreadyExists}}, result.Skipped)

	result, err = f.svc.ImportReminderTemplates(f.ctx, ImportReminderTemplatesParams{
		ActorUserID: "user_1",
		Templates:   map[string]reminder.Input{"brunch": {MeetupWindowHours: []float64{9}}},
		Overwrite:   true,
	})
	require.NoError(t, err)
	assert.True(t, result.Overwrite)
	assert.Equal(t, []float64{9}, f.svc.Snapshot().Clubs[0].ReminderTemplates["brunch"].MeetupWindowHours)
}
