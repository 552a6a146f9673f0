package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/proptrack/proptrack/domains/communications/be/service"
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
		panic("communications service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) CommunicationsGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var thread string
	if err := runtime.BindQueryParameter("form", true, false, "thread", r.URL.Query(), &thread); err != nil {
		p := problem.New("Invalid query", err.Error(), problem.TypeValidation, http.StatusBadRequest, map[string][]string{"thread": {"invalid thread id"}})
		h.log(ctx, p, err)
		problem.Write(w, p)
		return
	}

	view, err := h.svc.Get(ctx, platformauth.PrincipalFromContext(ctx), thread)
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
		p = problem.Unauthenticated("sign in to view messages", access.LoginPath)
	case errors.As(err, &unavailable), errors.Is(err, context.DeadlineExceeded):
		p = problem.New("Service unavailable", "could not load conversations", problem.TypeUnavailable, http.StatusServiceUnavailable, nil)
	default:
		p = problem.New("Internal server error", "an unexpected error occurred", problem.TypeInternal, http.StatusInternalServerError, nil)
	}
	h.log(ctx, p, err)
	return p
}

func (h *Handler) log(ctx context.Context, p problem.Details, err error) {
	logger := h.loggerFrom(ctx)
	fields := []zap.Field{zap.String("operation", "communicationsGet"), zap.Int("status", p.Status), zap.Error(err)}
	if p.Status >= http.StatusInternalServerError {
		logger.Error("communications operation failed", fields...)
		return
	}
	logger.Warn("communications request rejected", fields...)
}

func (h *Handler) loggerFrom(ctx context.Context) *zap.Logger {
	if logger, ok := platformlogging.FromContext(ctx); ok {
		return logger
	}
	return h.logger
}
