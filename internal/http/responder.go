package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bjax13/CookbookClub/internal/application"
)

var (
	errInvalidJSONBody     = errors.New("Invalid JSON body.")
	errBodyTooLarge        = errors.New("Request body too large.")
	errClubNotInitialized  = errors.New("Club is not initialized.")
	errMissingActorUserID  = errors.New("Missing actorUserId query parameter.")
	errMissingRecipeID     = errors.New("Missing recipe id.")
	errInternalServerError = errors.New("Internal server error.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

// writeJSON encodes payload with two space indentation and a trailing newline.
func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, code string, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
	}
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	r.loggerFor(ctx).Log(ctx, level, "request failed", "status", status, "error_kind", code, "error", err)

	r.writeJSON(ctx, w, status, errorResponse{Message: message, ErrorCode: code})
}

// handleDecodeError reports a body that could not be read or validated.
func (r responder) handleDecodeError(ctx context.Context, w http.ResponseWriter, err error) {
	var vErr *application.ValidationError
	switch {
	case errors.As(err, &vErr):
		r.handleServiceError(ctx, w, err)
	case errors.Is(err, errBodyTooLarge):
		r.writeError(ctx, w, http.StatusRequestEntityTooLarge, "bad_request", err)
	default:
		r.writeError(ctx, w, http.StatusBadRequest, "bad_request", err)
	}
}

// handleServiceError maps application errors onto HTTP statuses.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, "unexpected", errInternalServerError)
		return
	}

	kind := application.ErrorKind(err)
	switch kind {
	case "unauthorized":
		r.writeError(ctx, w, http.StatusForbidden, kind, err)
	case "not_found":
		r.writeError(ctx, w, http.StatusNotFound, kind, err)
	case "conflict":
		r.writeError(ctx, w, http.StatusConflict, kind, err)
	case "precondition":
		r.writeError(ctx, w, http.StatusUnprocessableEntity, kind, err)
	case "validation":
		var vErr *application.ValidationError
		errors.As(err, &vErr)
		r.loggerFor(ctx).WarnContext(ctx, "request failed", "status", http.StatusUnprocessableEntity, "error_kind", kind, "error", err)
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: kind,
			Message:   err.Error(),
			Errors:    vErr.FieldErrors,
		})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", http.StatusInternalServerError, "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{
			ErrorCode: "unexpected",
			Message:   errInternalServerError.Error(),
		})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	Message   string            `json:"error"`
	ErrorCode string            `json:"error_code,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}
