package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bjax13/CookbookClub/internal/application"
)

type NotificationHandler struct {
	workspace Workspace
	responder responder
	logger    *slog.Logger
}

func NewNotificationHandler(workspace Workspace, logger *slog.Logger) *NotificationHandler {
	base := defaultLogger(logger)
	return &NotificationHandler{workspace: workspace, responder: newResponder(base), logger: base}
}

func (h *NotificationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "NotificationHandler", operation, attrs...)
}

type runNotificationsRequest struct {
	Now string `json:"now"`
}

// Pending previews undelivered notifications due at ?now=, optionally for one
// ?userId=. It never marks anything delivered.
func (h *NotificationHandler) Pending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	var pending []application.NotificationView
	err := h.workspace.View(ctx, func(svc *application.Service) error {
		var err error
		pending, err = svc.ListPendingNotifications(ctx, application.ListNotificationsParams{
			At:     query.Get("now"),
			UserID: query.Get("userId"),
		})
		return err
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, nonNil(pending))
}

func (h *NotificationHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req runNotificationsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		h.responder.handleDecodeError(ctx, w, err)
		return
	}

	var delivered []application.NotificationView
	err := h.workspace.Update(ctx, func(svc *application.Service) error {
		var err error
		delivered, err = svc.RunNotifications(ctx, application.RunNotificationsParams{At: req.Now})
		return err
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "Run", "delivered_count", len(delivered)).InfoContext(ctx, "notifications delivered")
	h.responder.writeJSON(ctx, w, http.StatusOK, nonNil(delivered))
}
