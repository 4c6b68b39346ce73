package application

import (
	"context"

	"github.com/bjax13/CookbookClub/internal/state"
)

// AddRecipe submits a recipe to the upcoming meetup's cookbook.
func (s *Service) AddRecipe(ctx context.Context, params AddRecipeParams) (recipe state.Recipe, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "AddRecipe", "actor_user_id", params.ActorUserID)
	defer func() {
		s.logOutcome(ctx, logger, "AddRecipe", err, "recipe added", "recipe_id", recipe.ID, "meetup_id", recipe.MeetupID)
	}()

	club, err := s.requireClub()
	if err != nil {
		return state.Recipe{}, err
	}
	upcoming := s.upcomingMeetup(club.ID)
	if upcoming == nil {
		return state.Recipe{}, precondition("No upcoming meetup.")
	}
	if _, err = s.requireMember(club, params.ActorUserID); err != nil {
		return state.Recipe{}, err
	}

	vErr := &ValidationError{}
	title, tErr := requireText("title", params.Title, "Recipe title")
	content, cErr := requireText("content", params.Content, "Recipe content")
	imagePath, iErr := requireText("imagePath", params.ImagePath, "Recipe image path")
	for _, e := range []error{tErr, cErr, iErr} {
		if v, ok := e.(*ValidationError); ok {
			vErr.merge(v)
		}
	}
	if vErr.HasErrors() {
		return state.Recipe{}, vErr
	}
	if !s.files.Exists(imagePath) {
		return state.Recipe{}, precondition("Image path not found: %s", imagePath)
	}

	id, _ := s.state.NextID(state.KindRecipe)
	recipe = state.Recipe{
		ID:           id,
		ClubID:       upcoming.ClubID,
		MeetupID:     upcoming.ID,
		AuthorUserID: params.ActorUserID,
		Title:        title,
		Content:      content,
		ImagePath:    imagePath,
		CreatedAt:    s.timestamp(),
	}
	s.state.Recipes = append(s.state.Recipes, recipe)
	return recipe, nil
}

// ListMeetupRecipes returns a meetup's recipes when the actor may view them.
func (s *Service) ListMeetupRecipes(ctx context.Context, params ListRecipesParams) (recipes []RecipeView, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "ListMeetupRecipes",
		"actor_user_id", params.ActorUserID,
		"meetup_id", params.MeetupID,
	)
	defer func() {
		s.logOutcome(ctx, logger, "ListMeetupRecipes", err, "recipes listed", "result_count", len(recipes))
	}()

	club, err := s.requireClub()
	if err != nil {
		return nil, err
	}
	if _, err = s.requireMember(club, params.ActorUserID); err != nil {
		return nil, err
	}

	meetupID := params.MeetupID
	if meetupID == "" {
		upcoming := s.upcomingMeetup(club.ID)
		if upcoming == nil {
			return []RecipeView{}, nil
		}
		meetupID = upcoming.ID
	}
	visible, err := s.canViewCookbook(club, params.ActorUserID, meetupID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, unauthorized("No cookbook access for this meetup.")
	}

	recipes = make([]RecipeView, 0)
	for _, r := range s.state.Recipes {
		if r.MeetupID != meetupID {
			continue
		}
		author, uErr := s.requireUser(r.AuthorUserID)
		if uErr != nil {
			return nil, uErr
		}
		recipes = append(recipes, RecipeView{Recipe: r, Author: *author})
	}
	return recipes, nil
}

// FavoriteRecipe marks a visible recipe as a favorite. Repeated calls return
// the existing favorite.
func (s *Service) FavoriteRecipe(ctx context.Context, params FavoriteRecipeParams) (favorite state.Favorite, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "FavoriteRecipe",
		"actor_user_id", params.ActorUserID,
		"recipe_id", params.RecipeID,
	)
	defer func() {
		s.logOutcome(ctx, logger, "FavoriteRecipe", err, "recipe favorited", "favorite_id", favorite.ID)
	}()

	club, err := s.requireClub()
	if err != nil {
		return state.Favorite{}, err
	}
	return s.favorite(club, params.ActorUserID, params.RecipeID)
}

func (s *Service) favorite(club *state.Club, actorUserID, recipeID string) (state.Favorite, error) {
	if _, err := s.requireMember(club, actorUserID); err != nil {
		return state.Favorite{}, err
	}
	recipe := s.findRecipe(recipeID)
	if recipe == nil {
		return state.Favorite{}, notFound("Unknown recipe: %s", recipeID)
	}
	visible, err := s.canViewCookbook(club, actorUserID, recipe.MeetupID)
	if err != nil {
		return state.Favorite{}, err
	}
	if !visible {
		return state.Favorite{}, unauthorized("You cannot favorite recipes you cannot view.")
	}

	for _, f := range s.state.Favorites {
		if f.UserID == actorUserID && f.RecipeID == recipeID {
			return f, nil
		}
	}
	id, _ := s.state.NextID(state.KindFavorite)
	favorite := state.Favorite{
		ID:        id,
		UserID:    actorUserID,
		RecipeID:  recipeID,
		CreatedAt: s.timestamp(),
	}
	s.state.Favorites = append(s.state.Favorites, favorite)
	return favorite, nil
}

func (s *Service) ensureCollection(userID, name string) state.PersonalCollection {
	for _, c := range s.state.PersonalCollections {
		if c.UserID == userID && c.Name == name {
			return c
		}
	}
	id, _ := s.state.NextID(state.KindCollection)
	collection := state.PersonalCollection{
		ID:        id,
		UserID:    userID,
		Name:      name,
		CreatedAt: s.timestamp(),
	}
	s.state.PersonalCollections = append(s.state.PersonalCollections, collection)
	return collection
}

// AddFavoriteToCollection favorites a recipe and files it in the named
// personal collection, creating the collection on first use.
func (s *Service) AddFavoriteToCollection(ctx context.Context, params AddToCollectionParams) (item state.CollectionItem, err error) {
	logger := serviceLogger(ctx, s.logger, serviceName, "AddFavoriteToCollection",
		"actor_user_id", params.ActorUserID,
		"recipe_id", params.RecipeID,
	)
	defer func() {
		s.logOutcome(ctx, logger, "AddFavoriteToCollection", err, "recipe added to collection", "collection_id", item.CollectionID)
	}()

	club, err := s.requireClub()
	if err != nil {
		return state.CollectionItem{}, err
	}
	name, err := requireText("collectionName", params.CollectionName, "Collection name")
	if err != nil {
		return state.CollectionItem{}, err
	}
	favorite, err := s.favorite(club, params.ActorUserID, params.RecipeID)
	if err != nil {
		return state.CollectionItem{}, err
	}
	collection := s.ensureCollection(params.ActorUserID, name)

	for _, existing := range s.state.CollectionItems {
		if existing.CollectionID == collection.ID && existing.RecipeID == favorite.RecipeID {
			return existing, nil
		}
	}
	id, _ := s.state.NextID(state.KindCollectionItem)
	item = state.CollectionItem{
		ID:           id,
		CollectionID: collection.ID,
		RecipeID:     favorite.RecipeID,
		CreatedAt:    s.timestamp(),
	}
	s.state.CollectionItems = append(s.state.CollectionItems, item)
	return item, nil
}

// ListPersonalCollections returns the actor's collections with their recipes.
func (s *Service) ListPersonalCollections(ctx context.Context, actorUserID string) (collections []CollectionView, err error) {
	club, err := s.requireClub()
	if err != nil {
		return nil, err
	}
	if _, err = s.requireMember(club, actorUserID); err != nil {
		return nil, err
	}

	collections = make([]CollectionView, 0)
	for _, c := range s.state.PersonalCollections {
		if c.UserID != actorUserID {
			continue
		}
		view := CollectionView{PersonalCollection: c, Recipes: make([]state.Recipe, 0)}
		for _, item := range s.state.CollectionItems {
			if item.CollectionID != c.ID {
				continue
			}
			if recipe := s.findRecipe(item.RecipeID); recipe != nil {
				view.Recipes = append(view.Recipes, *recipe)
			}
		}
		collections = append(collections, view)
	}
	return collections, nil
}
