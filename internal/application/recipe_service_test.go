package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjax13/CookbookClub/internal/state"
)

func TestSundaySupperScenario(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	result := f.initClub()
	require.Equal(t, "user_1", result.Host.ID)

	bob := f.addUser("Bob")
	require.Equal(t, "user_2", bob.ID)
	_, err := f.svc.InviteMember(f.ctx, InviteMemberParams{ActorUserID: "user_1", UserID: bob.ID})
	require.NoError(t, err)

	meetup, err := f.svc.ScheduleUpcomingMeetup(f.ctx, ScheduleMeetupParams{ActorUserID: "user_1", ScheduledFor: "2026-04-03T18:30:00.000Z"})
	require.NoError(t, err)

	recipe, err := f.svc.AddRecipe(f.ctx, AddRecipeParams{
		ActorUserID: bob.ID,
		Title:       "Braised Greens",
		Content:     "Slow cook with garlic.",
		ImagePath:   "/tmp/dish.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, meetup.ID, recipe.MeetupID)
	assert.Equal(t, bob.ID, recipe.AuthorUserID)

	recipes, err := f.svc.ListMeetupRecipes(f.ctx, ListRecipesParams{ActorUserID: "user_1"})
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, recipe.ID, recipes[0].ID)
	assert.Equal(t, "Bob", recipes[0].Author.Name)
}

func TestAddRecipeGuards(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.initClub()
	outsider := f.addUser("Dan")

	_, err := f.svc.AddRecipe(f.ctx, AddRecipeParams{ActorUserID: outsider.ID, Title: "x", Content: "y", ImagePath: "/tmp/dish.jpg"})
	assert.EqualError(t, err, "User is not a member of this club.")

	_, err = f.svc.AddRecipe(f.ctx, AddRecipeParams{ActorUserID: "user_1", Title: "", Content: "y", ImagePath: "/tmp/dish.jpg"})
	assert.EqualError(t, err, "Recipe title is required.")

	_, err = f.svc.AddRecipe(f.ctx, AddRecipeParams{ActorUserID: "user_1", Title: "x", Content: "y", ImagePath: "/tmp/missing.jpg"})
	require.ErrorIs(t, err, ErrPrecondition)
	assert.EqualError(t, err, "Image path not found: /tmp/missing.jpg")

	assert.Empty(t, f.svc.Snapshot().Recipes)
}

// pastMeetupWithRecipe creates meetup_1 with a recipe by the host, then
// advances so meetup_2 is upcoming.
func pastMeetupWithRecipe(t *testing.T, f *fixture) state.Recipe {
	t.Helper()
	recipe, err := f.svc.AddRecipe(f.ctx, AddRecipeParams{ActorUserID: "user_1", Title: "Stew", Content: "Simmer.", ImagePath: "/tmp/dish.jpg"})
	require.NoError(t, err)
	_, err = f.svc.AdvanceMeetup(f.ctx, "user_1")
	require.NoError(t, err)
	return recipe
}

func TestCookbookVisibilityIsForwardOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.initClub()
	early := f.addMember("Early")
	old := pastMeetupWithRecipe(t, f)
	late := f.addMember("Late")

	_, err := f.svc.ListMeetupRecipes(f.ctx, ListRecipesParams{ActorUserID: early.ID, MeetupID: "meetup_1"})
	require.NoError(t, err)

	_, err = f.svc.ListMeetupRecipes(f.ctx, ListRecipesParams{ActorUserID: late.ID, MeetupID: "meetup_1"})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.EqualError(t, err, "No cookbook access for this meetup.")

	visible, err := f.svc.CanViewMeetupCookbook(f.ctx, early.ID, "meetup_1")
	require.NoError(t, err)
	assert.True(t, visible)
	visible, err = f.svc.CanViewMeetupCookbook(f.ctx, late.ID, "meetup_1")
	require.NoError(t, err)
	assert.False(t, visible)
	visible, err = f.svc.CanViewMeetupCookbook(f.ctx, late.ID, "meetup_2")
	require.NoError(t, err)
	assert.True(t, visible)
	_, err = f.svc.CanViewMeetupCookbook(f.ctx, "user_99", "meetup_1")
	require.ErrorIs(t, err, ErrUnauthorized)

	recipes, err := f.svc.ListMeetupRecipes(f.ctx, ListRecipesParams{ActorUserID: late.ID})
	require.NoError(t, err)
	assert.Empty(t, recipes)

	_, err = f.svc.FavoriteRecipe(f.ctx, FavoriteRecipeParams{ActorUserID: late.ID, RecipeID: old.ID})
	assert.EqualError(t, err, "You cannot favorite recipes you cannot view.")

	_, err = f.svc.ListMeetupRecipes(f.ctx, ListRecipesParams{ActorUserID: late.ID, MeetupID: "meetup_7"})
	assert.EqualError(t, err, "Unknown meetup: meetup_7")

	grants, err := f.svc.GrantPastCookbookAccess(f.ctx, GrantAccessParams{ActorUserID: "user_1", TargetUserID: late.ID, All: true})
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, "meetup_1", grants[0].MeetupID)
	assert.Equal(t, "user_1", grants[0].GrantedByUserID)

	visible, err = f.svc.CanViewMeetupCookbook(f.ctx, late.ID, "meetup_1")
	require.NoError(t, err)
	assert.True(t, visible)

	recipes, err = f.svc.ListMeetupRecipes(f.ctx, ListRecipesParams{ActorUserID: late.ID, MeetupID: "meetup_1"})
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, old.ID, recipes[0].ID)
}

func TestGrantPastCookbookAccess(t *testing.T) {
	t.Parallel()

	t.Run("requires privileged actor and member target", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.initClub()
		bob := f.addMember("Bob")
		outsider := f.addUser("Dan")

		_, err := f.svc.GrantPastCookbookAccess(f.ctx, GrantAccessParams{ActorUserID: bob.ID, TargetUserID: bob.ID, All: true})
		require.ErrorIs(t, err, ErrUnauthorized)
		assert.EqualError(t, err, "Only host/admin/co_admin can perform this action.")

		_, err = f.svc.GrantPastCookbookAccess(f.ctx, GrantAccessParams{ActorUserID: "user_1", TargetUserID: outsider.ID, All: true})
		assert.EqualError(t, err, "User is not a member of this club.")
	})

	t.Run("no past meetups grants nothing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.initClub()
		bob := f.addMember("Bob")

		grants, err := f.svc.GrantPastCookbookAccess(f.ctx, GrantAccessParams{ActorUserID: "user_1", TargetUserID: bob.ID, FromMeetupID: "meetup_1"})
		require.NoError(t, err)
		assert.Empty(t, grants)
	})

	t.Run("from meetup grants later past meetups only and is idempotent", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.initClub()
		for i := 0; i < 3; i++ {
			_, err := f.svc.AdvanceMeetup(f.ctx, "user_1")
			require.NoError(t, err)
		}
		late := f.addMember("Late")

		_, err := f.svc.GrantPastCookbookAccess(f.ctx, GrantAccessParams{ActorUserID: "user_1", TargetUserID: late.ID, FromMeetupID: "meetup_4"})
		require.ErrorIs(t, err, ErrNotFound)
		assert.EqualError(t, err, "Unknown past meetup: meetup_4")

		grants, err := f.svc.GrantPastCookbookAccess(f.ctx, GrantAccessParams{ActorUserID: "user_1", TargetUserID: late.ID, FromMeetupID: "meetup_2"})
		require.NoError(t, err)
		require.Len(t, grants, 2)
		assert.Equal(t, "meetup_2", grants[0].MeetupID)
		assert.Equal(t, "meetup_3", grants[1].MeetupID)

		grants, err = f.svc.GrantPastCookbookAccess(f.ctx, GrantAccessParams{ActorUserID: "user_1", TargetUserID: late.ID})
		require.NoError(t, err)
		require.Len(t, grants, 1)
		assert.Equal(t, "meetup_1", grants[0].MeetupID)

		grants, err = f.svc.GrantPastCookbookAccess(f.ctx, GrantAccessParams{ActorUserID: "user_1", TargetUserID: late.ID, All: true})
		require.NoError(t, err)
		assert.Empty(t, grants)
		assert.Len(t, f.svc.Snapshot().CookbookAccessGrants, 3)
	})
}

func TestFavoritesAndCollections(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.initClub()
	bob := f.addMember("Bob")
	recipe, err := f.svc.AddRecipe(f.ctx, AddRecipeParams{ActorUserID: "user_1", Title: "Pie", Content: "Bake.", ImagePath: "/tmp/dish.jpg"})
	require.NoError(t, err)

	first, err := f.svc.FavoriteRecipe(f.ctx, FavoriteRecipeParams{ActorUserID: bob.ID, RecipeID: recipe.ID})
	require.NoError(t, err)
	second, err := f.svc.FavoriteRecipe(f.ctx, FavoriteRecipeParams{ActorUserID: bob.ID, RecipeID: recipe.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = f.svc.FavoriteRecipe(f.ctx, FavoriteRecipeParams{ActorUserID: bob.ID, RecipeID: "recipe_42"})
	assert.EqualError(t, err, "Unknown recipe: recipe_42")

	item, err := f.svc.AddFavoriteToCollection(f.ctx, AddToCollectionParams{ActorUserID: bob.ID, RecipeID: recipe.ID, CollectionName: "Desserts"})
	require.NoError(t, err)
	again, err := f.svc.AddFavoriteToCollection(f.ctx, AddToCollectionParams{ActorUserID: bob.ID, RecipeID: recipe.ID, CollectionName: "Desserts"})
	require.NoError(t, err)
	assert.Equal(t, item.ID, again.ID)

	snap := f.svc.Snapshot()
	assert.Len(t, snap.Favorites, 1)
	assert.Len(t, snap.PersonalCollections, 1)
	assert.Len(t, snap.CollectionItems, 1)

	collections, err := f.svc.ListPersonalCollections(f.ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "Desserts", collections[0].Name)
	require.Len(t, collections[0].Recipes, 1)
	assert.Equal(t, "Pie", collections[0].Recipes[0].Title)

	empty, err := f.svc.ListPersonalCollections(f.ctx, "user_1")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
