package handler

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/proptrack/proptrack/domains/properties/be/service"
	"github.com/proptrack/proptrack/platform/go/access"
	platformauth "github.com/proptrack/proptrack/platform/go/auth"
	platformlogging "github.com/proptrack/proptrack/platform/go/logging"
	"github.com/proptrack/proptrack/platform/go/problem"
	"github.com/proptrack/proptrack/platform/go/workspace"
)

type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("properties service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) PropertiesList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := h.svc.List(ctx, platformauth.PrincipalFromContext(ctx))
	if err != nil {
		problem.Write(w, h.problemForError(ctx, err))
		return
	}
	problem.JSON(w, http.StatusOK, view)
}

func (h *Handler) problemForError(ctx context.Context, err error) problem.Details {
	var unavailable *workspace.UnavailableError
	var p problem.Details
	switch {
	case errors.Is(err, access.ErrUnauthenticated):
		p = problem.Unauthenticated("sign in to view properties", access.LoginPath)
	case errors.As(err, &unavailable), errors.Is(err, context.DeadlineExceeded):
		p = problem.New("Service unavailable", "could not load properties", problem.TypeUnavailable, http.StatusServiceUnavailable, nil)
	default:
		p = problem.New("Internal server error", "an unexpected error occurred", problem.TypeInternal, http.StatusInternalServerError, nil)
	}

	logger := h.loggerFrom(ctx)
	fields := []zap.Field{zap.String("operation", "propertiesList"), zap.Int("status", p.Status), zap.Error(err)}
	if p.Status >= http.StatusInternalServerError {
		logger.Error("properties operation failed", fields...)
	} else {
		logger.Warn("properties request rejected", fields...)
	}
	return p
}

func (h *Handler) loggerFrom(ctx context.Context) *zap.Logger {
	if logger, ok := platformlogging.FromContext(ctx); ok {
		return logger
	}
	return h.logger
}
