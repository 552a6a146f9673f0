package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/proptrack/proptrack/domains/maintenance/be/service"
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
	listOperation     operation = "maintenanceList"
	getOperation      operation = "maintenanceGet"
	submitOperation   operation = "maintenanceSubmit"
	activityOperation operation = "maintenanceAddActivity"
	updateOperation   operation = "maintenanceUpdate"
	vendorsOperation  operation = "vendorsList"
)

const requestIDParam = "requestId"

// Handler wires the maintenance service to HTTP.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("maintenance service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) MaintenanceList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := h.svc.List(ctx, platformauth.PrincipalFromContext(ctx))
	if err != nil {
		problem.Write(w, h.problemForError(ctx, err, listOperation))
		return
	}
	problem.JSON(w, http.StatusOK, view)
}

func (h *Handler) MaintenanceGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	detail, err := h.svc.Get(ctx, platformauth.PrincipalFromContext(ctx), chi.URLParam(r, requestIDParam))
	if err != nil {
		problem.Write(w, h.problemForError(ctx, err, getOperation))
		return
	}
	problem.JSON(w, http.StatusOK, detail)
}

func (h *Handler) MaintenanceSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body service.SubmitInput
	if !h.decode(w, r, &body, submitOperation) {
		return
	}

	detail, err := h.svc.Submit(ctx, platformauth.PrincipalFromContext(ctx), body)
	if err != nil {
		problem.Write(w, h.problemForError(ctx, err, submitOperation))
		return
	}
	h.audit(ctx, "maintenance request submitted", submitOperation, detail.Request.ID)

	w.Header().Set("Location", "/api/v1/maintenance/"+detail.Request.ID)
	problem.JSON(w, http.StatusCreated, detail)
}

func (h *Handler) MaintenanceAddActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body service.ActivityInput
	if !h.decode(w, r, &body, activityOperation) {
		return
	}

	detail, err := h.svc.AddActivity(ctx, platformauth.PrincipalFromContext(ctx), chi.URLParam(r, requestIDParam), body)
	if err != nil {
		problem.Write(w, h.problemForError(ctx, err, activityOperation))
		return
	}
	h.audit(ctx, "maintenance activity added", activityOperation, detail.Request.ID)
	problem.JSON(w, http.StatusCreated, detail)
}

func (h *Handler) MaintenanceUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body service.UpdateInput
	if !h.decode(w, r, &body, updateOperation) {
		return
	}

	detail, err := h.svc.Update(ctx, platformauth.PrincipalFromContext(ctx), chi.URLParam(r, requestIDParam), body)
	if err != nil {
		problem.Write(w, h.problemForError(ctx, err, updateOperation))
		return
	}
	h.audit(ctx, "maintenance request updated", updateOperation, detail.Request.ID)
	problem.JSON(w, http.StatusOK, detail)
}

func (h *Handler) VendorsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := h.svc.Vendors(ctx, platformauth.PrincipalFromContext(ctx))
	if err != nil {
		problem.Write(w, h.problemForError(ctx, err, vendorsOperation))
		return
	}
	problem.JSON(w, http.StatusOK, view)
}

// audit writes an actor-attributed line for a change to a maintenance request.
func (h *Handler) audit(ctx context.Context, msg string, op operation, maintenanceID string) {
	h.logger.Info(msg, append(requesttrace.FromContextOrAnonymous(ctx).AuditFields(),
		zap.String("operation", string(op)),
		zap.String("maintenance_request_id", maintenanceID),
	)...)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any, op operation) bool {
	if r.Body == nil || r.Body == http.NoBody {
		problem.Write(w, h.problemForError(r.Context(), errMissingBody, op))
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		problem.Write(w, h.problemForError(r.Context(), &service.ValidationError{Fields: service.FieldErrors{forms.PayloadField: {"Invalid data provided."}}}, op))
		return false
	}
	return true
}

var errMissingBody = errors.New("request body is required")

func (h *Handler) problemForError(ctx context.Context, err error, op operation) problem.Details {
	status, title, detail, problemType, fields := classifyError(err)

	logger := h.loggerFrom(ctx)
	fieldsForLog := []zap.Field{
		zap.String("operation", string(op)),
		zap.Int("status", status),
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("maintenance operation failed", append(fieldsForLog, zap.Error(err))...)
	case status == http.StatusNotFound:
		logger.Info("maintenance resource not found", append(fieldsForLog, zap.Error(err))...)
	default:
		logger.Warn("maintenance request rejected", append(fieldsForLog, zap.Error(err))...)
	}

	if status == http.StatusUnauthorized {
		return problem.Unauthenticated(detail, access.LoginPath)
	}
	return problem.New(title, detail, problemType, status, fields)
}

func classifyError(err error) (status int, title, detail, problemType string, fieldErrors service.FieldErrors) {
	var validationErr *service.ValidationError
	var unavailable *workspace.UnavailableError
	switch {
	case errors.Is(err, errMissingBody):
		return http.StatusBadRequest, "Invalid request body", err.Error(), problem.TypeValidation, nil
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "Validation failed", "one or more fields are invalid", problem.TypeValidation, validationErr.Fields
	case errors.Is(err, access.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthorized", "sign in to manage maintenance requests", problem.TypeUnauthenticated, nil
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "Forbidden", "Admin privileges are required.", problem.TypeForbidden, nil
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Resource not found", "maintenance request not found", problem.TypeNotFound, nil
	case errors.As(err, &unavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Service unavailable", "the maintenance backend could not be reached", problem.TypeUnavailable, nil
	default:
		return http.StatusInternalServerError, "Internal server error", "an unexpected error occurred", problem.TypeInternal, nil
	}
}

func (h *Handler) loggerFrom(ctx context.Context) *zap.Logger {
	if logger, ok := platformlogging.FromContext(ctx); ok {
		return logger
	}
	return h.logger
}
