package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/proptrack/proptrack/domains/maintenance/be/service"
	platformauth "github.com/proptrack/proptrack/platform/go/auth"
	"github.com/proptrack/proptrack/platform/go/entity"
	"github.com/proptrack/proptrack/platform/go/problem"
	"github.com/proptrack/proptrack/platform/go/requesttrace"
	"github.com/proptrack/proptrack/platform/go/views"
)

type mockService struct {
	listFn     func(ctx context.Context, principal *entity.Principal) (views.Maintenance, error)
	getFn      func(ctx context.Context, principal *entity.Principal, id string) (views.MaintenanceDetail, error)
	submitFn   func(ctx context.Context, principal *entity.Principal, input service.SubmitInput) (views.MaintenanceDetail, error)
	activityFn func(ctx context.Context, principal *entity.Principal, id string, input service.ActivityInput) (views.MaintenanceDetail, error)
	updateFn   func(ctx context.Context, principal *entity.Principal, id string, input service.UpdateInput) (views.MaintenanceDetail, error)
	vendorsFn  func(ctx context.Context, principal *entity.Principal) (views.Vendors, error)
}

func (m *mockService) List(ctx context.Context, principal *entity.Principal) (views.Maintenance, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, principal)
}

func (m *mockService) Get(ctx context.Context, principal *entity.Principal, id string) (views.MaintenanceDetail, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, principal, id)
}

func (m *mockService) Submit(ctx context.Context, principal *entity.Principal, input service.SubmitInput) (views.MaintenanceDetail, error) {
	if m.submitFn == nil {
		panic("submitFn not configured")
	}
	return m.submitFn(ctx, principal, input)
}

func (m *mockService) AddActivity(ctx context.Context, principal *entity.Principal, id string, input service.ActivityInput) (views.MaintenanceDetail, error) {
	if m.activityFn == nil {
		panic("activityFn not configured")
	}
	return m.activityFn(ctx, principal, id, input)
}

func (m *mockService) Update(ctx context.Context, principal *entity.Principal, id string, input service.UpdateInput) (views.MaintenanceDetail, error) {
	if m.updateFn == nil {
		panic("updateFn not configured")
	}
	return m.updateFn(ctx, principal, id, input)
}

func (m *mockService) Vendors(ctx context.Context, principal *entity.Principal) (views.Vendors, error) {
	if m.vendorsFn == nil {
		panic("vendorsFn not configured")
	}
	return m.vendorsFn(ctx, principal)
}

func router(t *testing.T, svc service.Service) http.Handler {
	t.Helper()

	h := New(svc, zaptest.NewLogger(t))
	r := chi.NewRouter()
	r.Get("/maintenance", h.MaintenanceList)
	r.Post("/maintenance", h.MaintenanceSubmit)
	r.Get("/maintenance/{requestId}", h.MaintenanceGet)
	r.Patch("/maintenance/{requestId}", h.MaintenanceUpdate)
	r.Post("/maintenance/{requestId}/activities", h.MaintenanceAddActivity)
	r.Get("/vendors", h.VendorsList)
	return r
}

func do(t *testing.T, svc service.Service, method, path, body string, role entity.Role) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req = req.WithContext(platformauth.WithUser(req.Context(), &platformauth.UserCredentials{Id: "2", Role: role}))

	rec := httptest.NewRecorder()
	router(t, svc).ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) problem.Details {
	t.Helper()

	var p problem.Details
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestMaintenanceSubmitCreated(t *testing.T) {
	t.Parallel()

	svc := &mockService{submitFn: func(ctx context.Context, principal *entity.Principal, input service.SubmitInput) (views.MaintenanceDetail, error) {
		require.Equal(t, "2", principal.ID)
		require.Equal(t, service.SubmitInput{PropertyID: "prop1", Description: "Bathroom fan is noisy."}, input)
		return views.MaintenanceDetail{Request: views.MaintenanceRow{ID: "req9", Status: entity.MaintenanceSubmitted}}, nil
	}}

	rec := do(t, svc, http.MethodPost, "/maintenance", `{"propertyId":"prop1","description":"Bathroom fan is noisy."}`, entity.RoleUser)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "/api/v1/maintenance/req9", rec.Header().Get("Location"))
}

func TestMaintenanceUpdateWritesAuditLine(t *testing.T) {
	t.Parallel()

	svc := &mockService{updateFn: func(ctx context.Context, principal *entity.Principal, id string, input service.UpdateInput) (views.MaintenanceDetail, error) {
		return views.MaintenanceDetail{Request: views.MaintenanceRow{ID: id, Status: entity.MaintenanceInProgress}}, nil
	}}

	core, logs := observer.New(zap.InfoLevel)
	h := New(svc, zap.New(core))
	r := chi.NewRouter()
	r.Patch("/maintenance/{requestId}", h.MaintenanceUpdate)

	actor := "1"
	req := httptest.NewRequest(http.MethodPatch, "/maintenance/req1", strings.NewReader(`{"status":"In Progress"}`))
	ctx := platformauth.WithUser(req.Context(), &platformauth.UserCredentials{Id: actor, Role: entity.RoleAdmin})
	ctx = requesttrace.IntoContext(ctx, requesttrace.AuditInfo{ActorKind: requesttrace.ActorKindUser, UserID: &actor, Role: entity.RoleAdmin, RequestID: "req-7"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, rec.Code)
	entries := logs.FilterMessage("maintenance request updated").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "1", fields["actor_id"])
	require.Equal(t, "req-7", fields["request_id"])
	require.Equal(t, "req1", fields["maintenance_request_id"])
	require.Equal(t, string(updateOperation), fields["operation"])
}

func TestMaintenanceSubmitValidationError(t *testing.T) {
	t.Parallel()

	svc := &mockService{submitFn: func(ctx context.Context, principal *entity.Principal, input service.SubmitInput) (views.MaintenanceDetail, error) {
		return views.MaintenanceDetail{}, &service.ValidationError{Fields: service.FieldErrors{"description": {"Description must be at least 10 characters."}}}
	}}

	rec := do(t, svc, http.MethodPost, "/maintenance", `{"propertyId":"prop1","description":"short"}`, entity.RoleUser)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	p := decodeProblem(t, rec)
	require.NotNil(t, p.Errors)
	require.Equal(t, []string{"Description must be at least 10 characters."}, (*p.Errors)["description"])
}

func TestMaintenanceSubmitMalformedBody(t *testing.T) {
	t.Parallel()

	rec := do(t, &mockService{}, http.MethodPost, "/maintenance", `{"propertyId":`, entity.RoleUser)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, &mockService{}, http.MethodPost, "/maintenance", "", entity.RoleUser)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMaintenanceUpdateForbidden(t *testing.T) {
	t.Parallel()

	svc := &mockService{updateFn: func(ctx context.Context, principal *entity.Principal, id string, input service.UpdateInput) (views.MaintenanceDetail, error) {
		require.Equal(t, "req1", id)
		return views.MaintenanceDetail{}, service.ErrForbidden
	}}

	rec := do(t, svc, http.MethodPatch, "/maintenance/req1", `{"status":"Completed"}`, entity.RoleUser)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Admin privileges are required.", *decodeProblem(t, rec).Detail)
}

func TestMaintenanceGetNotFound(t *testing.T) {
	t.Parallel()

	svc := &mockService{getFn: func(ctx context.Context, principal *entity.Principal, id string) (views.MaintenanceDetail, error) {
		return views.MaintenanceDetail{}, service.ErrNotFound
	}}

	rec := do(t, svc, http.MethodGet, "/maintenance/unknown", "", entity.RoleUser)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMaintenanceAddActivity(t *testing.T) {
	t.Parallel()

	svc := &mockService{activityFn: func(ctx context.Context, principal *entity.Principal, id string, input service.ActivityInput) (views.MaintenanceDetail, error) {
		require.Equal(t, "req2", id)
		require.Equal(t, "Technician called ahead.", input.Description)
		return views.MaintenanceDetail{Request: views.MaintenanceRow{ID: id}}, nil
	}}

	rec := do(t, svc, http.MethodPost, "/maintenance/req2/activities", `{"description":"Technician called ahead."}`, entity.RoleAdmin)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestVendorsList(t *testing.T) {
	t.Parallel()

	svc := &mockService{vendorsFn: func(ctx context.Context, principal *entity.Principal) (views.Vendors, error) {
		require.True(t, principal.IsAdmin())
		return views.Vendors{}, nil
	}}

	rec := do(t, svc, http.MethodGet, "/vendors", "", entity.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
}
