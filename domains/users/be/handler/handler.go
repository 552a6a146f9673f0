package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/proptrack/proptrack/domains/users/be/service"
	"github.com/proptrack/proptrack/platform/go/access"
	platformauth "github.com/proptrack/proptrack/platform/go/auth"
	"github.com/proptrack/proptrack/platform/go/forms"
	platformlogging "github.com/proptrack/proptrack/platform/go/logging"
	"github.com/proptrack/proptrack/platform/go/problem"
	"github.com/proptrack/proptrack/platform/go/requesttrace"
	"github.com/proptrack/proptrack/platform/go/workspace"
)

type operation string

const (
	listOperation   operation = "usersList"
	inviteOperation operation = "usersInvite"
	meGetOperation  operation = "meGet"
)

// Handler wires the users service to HTTP.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("users service is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) UsersMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	me, err := h.svc.Me(ctx, platformauth.PrincipalFromContext(ctx))
	if err != nil {
		problem.Write(w, h.problemForError(ctx, err, meGetOperation))
		return
	}
	problem.JSON(w, http.StatusOK, me)
}

// UsersList answers 503 with the degraded directory body when the backend is down, so the
// client can render "Could not load users." instead of an empty table.
func (h *Handler) UsersList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dir, err := h.svc.List(ctx, platformauth.PrincipalFromContext(ctx))
	if err != nil {
		var unavailable *workspace.UnavailableError
		if errors.As(err, &unavailable) {
			h.loggerFrom(ctx).Error("users directory degraded",
				zap.String("operation", string(listOperation)),
				zap.Error(err),
			)
			problem.JSON(w, http.StatusServiceUnavailable, dir)
			return
		}
		problem.Write(w, h.problemForError(ctx, err, listOperation))
		return
	}
	problem.JSON(w, http.StatusOK, dir)
}

func (h *Handler) UsersInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body service.InviteInput
	if r.Body == nil || r.Body == http.NoBody {
		problem.Write(w, problem.New("Invalid request body", "request body is required", problem.TypeValidation, http.StatusBadRequest, nil))
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		verr := &service.ValidationError{Fields: service.FieldErrors{forms.PayloadField: {"Invalid data provided."}}}
		problem.Write(w, h.problemForError(ctx, verr, inviteOperation))
		return
	}

	result, err := h.svc.Invite(ctx, platformauth.PrincipalFromContext(ctx), body)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			h.loggerFrom(ctx).Warn("users request rejected",
				zap.String("operation", string(inviteOperation)),
				zap.Int("status", http.StatusForbidden),
			)
			problem.JSON(w, http.StatusForbidden, service.InviteResult{Success: false, Message: service.ForbiddenMessage})
			return
		}
		problem.Write(w, h.problemForError(ctx, err, inviteOperation))
		return
	}

	h.logger.Info("user invited", append(requesttrace.FromContextOrAnonymous(ctx).AuditFields(),
		zap.String("operation", string(inviteOperation)),
		zap.String("invitee_id", result.UserID),
	)...)
	problem.JSON(w, http.StatusCreated, result)
}

func (h *Handler) problemForError(ctx context.Context, err error, op operation) problem.Details {
	status, title, detail, problemType, fields := h.classifyError(err)

	logger := h.loggerFrom(ctx)
	fieldsForLog := []zap.Field{
		zap.String("operation", string(op)),
		zap.Int("status", status),
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("users operation failed", append(fieldsForLog, zap.Error(err))...)
	case status == http.StatusNotFound:
		logger.Info("users resource not found", append(fieldsForLog, zap.Error(err))...)
	default:
		logger.Warn("users request rejected", append(fieldsForLog, zap.Error(err))...)
	}

	if status == http.StatusUnauthorized {
		return problem.Unauthenticated(detail, access.LoginPath)
	}
	return problem.New(title, detail, problemType, status, fields)
}

func (h *Handler) classifyError(err error) (status int, title, detail, problemType string, fieldErrors service.FieldErrors) {
	var validationErr *service.ValidationError
	var unavailable *workspace.UnavailableError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest,
			"Validation failed",
			"one or more fields are invalid",
			problem.TypeValidation,
			validationErr.Fields
	case errors.Is(err, access.ErrUnauthenticated):
		return http.StatusUnauthorized,
			"Unauthorized",
			"sign in to continue",
			problem.TypeUnauthenticated,
			nil
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden,
			"Forbidden",
			service.ForbiddenMessage,
			problem.TypeForbidden,
			nil
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict,
			"Conflict",
			"a user with this email already exists",
			problem.TypeConflict,
			nil
	case errors.As(err, &unavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable,
			"Service unavailable",
			"the user backend could not be reached",
			problem.TypeUnavailable,
			nil
	default:
		return http.StatusInternalServerError,
			"Internal server error",
			"an unexpected error occurred",
			problem.TypeInternal,
			nil
	}
}

func (h *Handler) loggerFrom(ctx context.Context) *zap.Logger {
	if logger, ok := platformlogging.FromContext(ctx); ok {
		return logger
	}
	return h.logger
}
