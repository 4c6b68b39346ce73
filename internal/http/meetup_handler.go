package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bjax13/CookbookClub/internal/application"
	"github.com/bjax13/CookbookClub/internal/state"
)

type MeetupHandler struct {
	workspace Workspace
	responder responder
	logger    *slog.Logger
}

func NewMeetupHandler(workspace Workspace, logger *slog.Logger) *MeetupHandler {
	base := defaultLogger(logger)
	return &MeetupHandler{workspace: workspace, responder: newResponder(base), logger: base}
}

func (h *MeetupHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "MeetupHandler", operation, attrs...)
}

type scheduleMeetupRequest struct {
	ActorUserID string `json:"actorUserId" validate:"required"`
	IsoDateTime string `json:"isoDateTime"`
}

type setThemeRequest struct {
	ActorUserID string `json:"actorUserId" validate:"required"`
	Theme       string `json:"theme"`
}

type advanceMeetupRequest struct {
	ActorUserID string `json:"actorUserId" validate:"required"`
}

// Upcoming returns the upcoming meetup, or null when the club has none.
func (h *MeetupHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		meetup      *state.Meetup
		initialized bool
	)
	err := h.workspace.View(ctx, func(svc *application.Service) error {
		if initialized = svc.Initialized(); !initialized {
			return nil
		}
		var err error
		meetup, err = svc.UpcomingMeetup(ctx)
		return err
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	if !initialized {
		h.responder.writeError(ctx, w, http.StatusNotFound, "not_found", errClubNotInitialized)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, meetup)
}

func (h *MeetupHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var meetups []application.MeetupView
	err := h.workspace.View(ctx, func(svc *application.Service) error {
		var err error
		meetups, err = svc.ListMeetups(ctx)
		return err
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, nonNil(meetups))
}

func (h *MeetupHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req scheduleMeetupRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		h.responder.handleDecodeError(ctx, w, err)
		return
	}

	var meetup state.Meetup
	err := h.workspace.Update(ctx, func(svc *application.Service) error {
		var err error
		meetup, err = svc.ScheduleUpcomingMeetup(ctx, application.ScheduleMeetupParams{
			ActorUserID:  req.ActorUserID,
			ScheduledFor: req.IsoDateTime,
		})
		return err
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "Schedule", "meetup_id", meetup.ID).InfoContext(ctx, "meetup scheduled")
	h.responder.writeJSON(ctx, w, http.StatusOK, meetup)
}

func (h *MeetupHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req setThemeRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		h.responder.handleDecodeError(ctx, w, err)
		return
	}

	var meetup state.Meetup
	err := h.workspace.Update(ctx, func(svc *application.Service) error {
		var err error
		meetup, err = svc.SetMeetupTheme(ctx, application.SetThemeParams{ActorUserID: req.ActorUserID, Theme: req.Theme})
		return err
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, meetup)
}

func (h *MeetupHandler) Advance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req advanceMeetupRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		h.responder.handleDecodeError(ctx, w, err)
		return
	}

	var result application.AdvanceMeetupResult
	err := h.workspace.Update(ctx, func(svc *application.Service) error {
		var err error
		result, err = svc.AdvanceMeetup(ctx, req.ActorUserID)
		return err
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "Advance", "past_meetup_id", result.Past.ID, "next_meetup_id", result.Next.ID).InfoContext(ctx, "meetup advanced")
	h.responder.writeJSON(ctx, w, http.StatusOK, result)
}
