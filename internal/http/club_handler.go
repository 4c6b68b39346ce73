package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bjax13/CookbookClub/internal/application"
	"github.com/bjax13/CookbookClub/internal/state"
)

// Workspace serialises access to the club state. *application.Workspace
// satisfies it.
type Workspace interface {
	View(ctx context.Context, fn func(*application.Service) error) error
	Update(ctx context.Context, fn func(*application.Service) error) error
}

// StorageInfo describes the backend reported by /api/status.
type StorageInfo struct {
	Kind     string
	DataFile string
}

type ClubHandler struct {
	workspace Workspace
	storage   StorageInfo
	responder responder
	logger    *slog.Logger
}

func NewClubHandler(workspace Workspace, storage StorageInfo, logger *slog.Logger) *ClubHandler {
	base := defaultLogger(logger)
	return &ClubHandler{workspace: workspace, storage: storage, responder: newResponder(base), logger: base}
}

func (h *ClubHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "ClubHandler", operation, attrs...)
}

type initClubRequest struct {
	ClubName  string  `json:"clubName" validate:"required"`
	HostName  string  `json:"hostName" validate:"required"`
	HostEmail *string `json:"hostEmail"`
	HostPhone *string `json:"hostPhone"`
}

type createUserRequest struct {
	Name  string  `json:"name" validate:"required"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type inviteMemberRequest struct {
	ActorUserID string `json:"actorUserId" validate:"required"`
	UserID      string `json:"userId" validate:"required"`
	Role        string `json:"role" validate:"omitempty,oneof=admin co_admin member"`
}

type statusResponse struct {
	Initialized    bool           `json:"initialized"`
	Storage        string         `json:"storage"`
	DataFile       string         `json:"dataFile"`
	Club           *statusClub    `json:"club,omitempty"`
	Host           *statusHost    `json:"host,omitempty"`
	UpcomingMeetup *statusMeetup  `json:"upcomingMeetup,omitempty"`
	Counts         map[string]int `json:"counts"`
}

type statusClub struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	MembershipPolicy state.MembershipPolicy `json:"membershipPolicy"`
}

type statusHost struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type statusMeetup struct {
	ID           string             `json:"id"`
	ScheduledFor *string            `json:"scheduledFor"`
	Theme        string             `json:"theme"`
	Status       state.MeetupStatus `json:"status"`
}

// Status summarises the backend and the club. It never fails for an
// uninitialised club.
func (h *ClubHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var resp statusResponse
	err := h.workspace.View(ctx, func(svc *application.Service) error {
		resp = buildStatus(ctx, svc, h.storage)
		return nil
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, resp)
}

func buildStatus(ctx context.Context, svc *application.Service, storage StorageInfo) statusResponse {
	snap := svc.Snapshot()
	pending := 0
	for _, n := range snap.Notifications {
		if n.DeliveredAt == nil {
			pending++
		}
	}
	resp := statusResponse{Storage: storage.Kind, DataFile: storage.DataFile}

	overview, err := svc.ShowClub(ctx)
	if err != nil {
		resp.Counts = map[string]int{"users": len(snap.Users), "pendingNotifications": pending}
		return resp
	}

	club := overview.Club
	resp.Initialized = true
	resp.Club = &statusClub{ID: club.ID, Name: club.Name, MembershipPolicy: club.MembershipPolicy}
	resp.Host = &statusHost{ID: overview.Host.ID, Name: overview.Host.Name}

	members, recipes, upcomingRecipes := 0, 0, 0
	for _, m := range snap.Memberships {
		if m.ClubID == club.ID {
			members++
		}
	}
	for _, rec := range snap.Recipes {
		if rec.ClubID != club.ID {
			continue
		}
		recipes++
		if overview.Upcoming != nil && rec.MeetupID == overview.Upcoming.ID {
			upcomingRecipes++
		}
	}
	if up := overview.Upcoming; up != nil {
		meetup := &statusMeetup{ID: up.ID, Theme: up.Theme, Status: up.Status}
		if up.ScheduledFor != nil {
			at := application.FormatTimestamp(*up.ScheduledFor)
			meetup.ScheduledFor = &at
		}
		resp.UpcomingMeetup = meetup
	}
	resp.Counts = map[string]int{
		"members":               members,
		"recipes":               recipes,
		"upcomingMeetupRecipes": upcomingRecipes,
		"pendingNotifications":  pending,
	}
	return resp
}

func (h *ClubHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		overview    application.ClubOverview
		initialized bool
	)
	err := h.workspace.View(ctx, func(svc *application.Service) error {
		if initialized = svc.Initialized(); !initialized {
			return nil
		}
		var err error
		overview, err = svc.ShowClub(ctx)
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
	h.responder.writeJSON(ctx, w, http.StatusOK, overview)
}

func (h *ClubHandler) Init(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req initClubRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		h.responder.handleDecodeError(ctx, w, err)
		return
	}

	var result application.InitClubResult
	err := h.workspace.Update(ctx, func(svc *application.Service) error {
		var err error
		result, err = svc.InitClub(ctx, application.InitClubParams{
			ClubName:  req.ClubName,
			HostName:  req.HostName,
			HostEmail: req.HostEmail,
			HostPhone: req.HostPhone,
		})
		return err
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "Init", "club_id", result.Club.ID).InfoContext(ctx, "club initialized")
	h.responder.writeJSON(ctx, w, http.StatusCreated, result)
}

func (h *ClubHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createUserRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		h.responder.handleDecodeError(ctx, w, err)
		return
	}

	var user state.User
	err := h.workspace.Update(ctx, func(svc *application.Service) error {
		var err error
		user, err = svc.CreateUser(ctx, application.CreateUserParams{Name: req.Name, Email: req.Email, Phone: req.Phone})
		return err
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusCreated, user)
}

func (h *ClubHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var users []state.User
	err := h.workspace.View(ctx, func(svc *application.Service) error {
		var err error
		users, err = svc.ListUsers(ctx)
		return err
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, nonNil(users))
}

func (h *ClubHandler) InviteMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req inviteMemberRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		h.responder.handleDecodeError(ctx, w, err)
		return
	}

	var membership state.Membership
	err := h.workspace.Update(ctx, func(svc *application.Service) error {
		var err error
		membership, err = svc.InviteMember(ctx, application.InviteMemberParams{
			ActorUserID: req.ActorUserID,
			UserID:      req.UserID,
			Role:        req.Role,
		})
		return err
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "InviteMember", "user_id", membership.UserID).InfoContext(ctx, "member invited")
	h.responder.writeJSON(ctx, w, http.StatusCreated, membership)
}

func (h *ClubHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var members []application.MemberView
	err := h.workspace.View(ctx, func(svc *application.Service) error {
		var err error
		members, err = svc.ListMembers(ctx)
		return err
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, nonNil(members))
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
