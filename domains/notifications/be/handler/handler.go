package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/proptrack/proptrack/domains/notifications/be/service"
	"github.com/proptrack/proptrack/platform/go/access"
	platformauth "github.com/proptrack/proptrack/platform/go/auth"
	platformlogging "github.com/proptrack/proptrack/platform/go/logging"
	"github.com/proptrack/proptrack/platform/go/problem"
	"github.com/proptrack/proptrack/platform/go/workspace"
)

type operation string

const (
	listOperation     operation = "notificationsList"
	markReadOperation operation = "notificationsMarkRead"
)

// Handler wires the notifications service to HTTP.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("notifications service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) NotificationsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := h.svc.List(ctx, platformauth.PrincipalFromContext(ctx))
	if err != nil {
		problem.Write(w, h.problemForError(ctx, err, listOperation))
		return
	}
	problem.JSON(w, http.StatusOK, view)
}

func (h *Handler) NotificationsMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	row, err := h.svc.MarkRead(ctx, platformauth.PrincipalFromContext(ctx), chi.URLParam(r, "notificationId"))
	if err != nil {
		problem.Write(w, h.problemForError(ctx, err, markReadOperation))
		return
	}
	problem.JSON(w, http.StatusOK, row)
}

func (h *Handler) problemForError(ctx context.Context, err error, op operation) problem.Details {
	status, title, detail, problemType := classifyError(err)

	logger := h.loggerFrom(ctx)
	fields := []zap.Field{zap.String("operation", string(op)), zap.Int("status", status), zap.Error(err)}
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("notifications operation failed", fields...)
	case status == http.StatusNotFound:
		logger.Info("notification not found", fields...)
	default:
		logger.Warn("notifications request rejected", fields...)
	}

	if status == http.StatusUnauthorized {
		return problem.Unauthenticated(detail, access.LoginPath)
	}
	return problem.New(title, detail, problemType, status, nil)
}

func classifyError(err error) (status int, title, detail, problemType string) {
	var unavailable *workspace.UnavailableError
	switch {
	case errors.Is(err, access.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthorized", "sign in to view notifications", problem.TypeUnauthenticated
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Resource not found", "notification not found", problem.TypeNotFound
	case errors.As(err, &unavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Service unavailable", "could not reach the notification store", problem.TypeUnavailable
	default:
		return http.StatusInternalServerError, "Internal server error", "an unexpected error occurred", problem.TypeInternal
	}
}

func (h *Handler) loggerFrom(ctx context.Context) *zap.Logger {
	if logger, ok := platformlogging.FromContext(ctx); ok {
		return logger
	}
	return h.logger
}
