package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bjax13/CookbookClub/internal/application"
	"github.com/bjax13/CookbookClub/internal/state"
)

type RecipeHandler struct {
	workspace Workspace
	responder responder
	logger    *slog.Logger
}

func NewRecipeHandler(workspace Workspace, logger *slog.Logger) *RecipeHandler {
	base := defaultLogger(logger)
	return &RecipeHandler{workspace: workspace, responder: newResponder(base), logger: base}
}

func (h *RecipeHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "RecipeHandler", operation, attrs...)
}

type addRecipeRequest struct {
	ActorUserID string `json:"actorUserId" validate:"required"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ImagePath   string `json:"imagePath"`
}

type favoriteRecipeRequest struct {
	ActorUserID string `json:"actorUserId" validate:"required"`
}

// List returns the cookbook of the meetup in ?meetupId=, defaulting to the
// upcoming meetup, as seen by ?actorUserId=.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	actorUserID := strings.TrimSpace(query.Get("actorUserId"))
	if actorUserID == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, "bad_request", errMissingActorUserID)
		return
	}

	var recipes []application.RecipeView
	err := h.workspace.View(ctx, func(svc *application.Service) error {
		var err error
		recipes, err = svc.ListMeetupRecipes(ctx, application.ListRecipesParams{
			ActorUserID: actorUserID,
			MeetupID:    strings.TrimSpace(query.Get("meetupId")),
		})
		return err
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, nonNil(recipes))
}

func (h *RecipeHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req addRecipeRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		h.responder.handleDecodeError(ctx, w, err)
		return
	}

	var recipe state.Recipe
	err := h.workspace.Update(ctx, func(svc *application.Service) error {
		var err error
		recipe, err = svc.AddRecipe(ctx, application.AddRecipeParams{
			ActorUserID: req.ActorUserID,
			Title:       req.Title,
			Content:     req.Content,
			ImagePath:   req.ImagePath,
		})
		return err
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "Add", "recipe_id", recipe.ID, "meetup_id", recipe.MeetupID).InfoContext(ctx, "recipe added")
	h.responder.writeJSON(ctx, w, http.StatusCreated, recipe)
}

func (h *RecipeHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recipeID := strings.TrimSpace(chi.URLParam(r, "id"))
	if recipeID == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, "bad_request", errMissingRecipeID)
		return
	}
	var req favoriteRecipeRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		h.responder.handleDecodeError(ctx, w, err)
		return
	}

	var favorite state.Favorite
	err := h.workspace.Update(ctx, func(svc *application.Service) error {
		var err error
		favorite, err = svc.FavoriteRecipe(ctx, application.FavoriteRecipeParams{ActorUserID: req.ActorUserID, RecipeID: recipeID})
		return err
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusCreated, favorite)
}
