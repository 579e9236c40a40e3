package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/bookcafe-client/internal/logging"
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

// ErrorKind maps sentinel, validation and remote errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	var pErr *PreconditionError
	if errors.As(err, &pErr) {
		return "precondition"
	}

	switch {
	case errors.Is(err, ErrStaleSession):
		return "stale_session"
	case errors.Is(err, ErrNoSession):
		return "no_session"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	var rErr *RemoteError
	if errors.As(err, &rErr) {
		if rErr.Status == 0 {
			return "network"
		}
		return "remote"
	}

	return "unexpected"
}
