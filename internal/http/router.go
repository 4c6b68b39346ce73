package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Club          *ClubHandler
	Meetups       *MeetupHandler
	Recipes       *RecipeHandler
	Notifications *NotificationHandler
	// Metrics serves GET /metrics when set.
	Metrics    http.Handler
	Middleware []func(http.Handler) http.Handler
	Logger     *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	responder := newResponder(cfg.Logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	for _, mw := range cfg.Middleware {
		if mw != nil {
			router.Use(mw)
		}
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		responder.writeJSON(r.Context(), w, http.StatusOK, map[string]bool{"ok": true})
	})
	if cfg.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	router.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, req *http.Request) {
			responder.writeError(req.Context(), w, http.StatusNotFound, "not_found",
				fmt.Errorf("Unknown API endpoint: %s", req.URL.Path))
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
			responder.writeError(req.Context(), w, http.StatusMethodNotAllowed, "method_not_allowed",
				fmt.Errorf("Method %s not allowed on %s", req.Method, req.URL.Path))
		})

		if cfg.Club != nil {
			r.Get("/status", cfg.Club.Status)
			r.Get("/club", cfg.Club.Show)
			r.Post("/club/init", cfg.Club.Init)
			r.Get("/users", cfg.Club.ListUsers)
			r.Post("/users", cfg.Club.CreateUser)
			r.Get("/members", cfg.Club.ListMembers)
			r.Post("/members/invite", cfg.Club.InviteMember)
		}

		if cfg.Meetups != nil {
			r.Get("/meetup", cfg.Meetups.Upcoming)
			r.Get("/meetups", cfg.Meetups.List)
			r.Post("/meetup/schedule", cfg.Meetups.Schedule)
			r.Post("/meetup/theme", cfg.Meetups.SetTheme)
			r.Post("/meetup/advance", cfg.Meetups.Advance)
		}

		if cfg.Recipes != nil {
			r.Get("/recipes", cfg.Recipes.List)
			r.Post("/recipes", cfg.Recipes.Add)
			r.Post("/recipes/{id}/favorite", cfg.Recipes.Favorite)
		}

		if cfg.Notifications != nil {
			r.Get("/notifications", cfg.Notifications.Pending)
			r.Post("/notifications/run", cfg.Notifications.Run)
		}
	})

	return router
}
