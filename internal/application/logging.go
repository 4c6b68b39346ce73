package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bjax13/CookbookClub/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrPrecondition):
		return "precondition"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}

// logOutcome records the result of a service operation. Expected domain
// failures are logged at warn level; anything else is an error.
func (s *Service) logOutcome(ctx context.Context, logger *slog.Logger, operation string, err error, success string, attrs ...any) {
	kind := ErrorKind(err)
	if s.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = kind
		}
		s.metrics.OperationCompleted(operation, outcome)
	}
	if err == nil {
		logger.InfoContext(ctx, success, attrs...)
		return
	}
	level := slog.LevelWarn
	if kind == "unexpected" {
		level = slog.LevelError
	}
	logger.Log(ctx, level, "operation failed", "error", err, "error_kind", kind)
}
