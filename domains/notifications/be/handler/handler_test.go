package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/proptrack/proptrack/domains/notifications/be/service"
	platformauth "github.com/proptrack/proptrack/platform/go/auth"
	"github.com/proptrack/proptrack/platform/go/entity"
	"github.com/proptrack/proptrack/platform/go/views"
)

type mockService struct {
	listFn     func(ctx context.Context, principal *entity.Principal) (views.Notifications, error)
	markReadFn func(ctx context.Context, principal *entity.Principal, id string) (views.NotificationRow, error)
}

func (m *mockService) List(ctx context.Context, principal *entity.Principal) (views.Notifications, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, principal)
}

func (m *mockService) MarkRead(ctx context.Context, principal *entity.Principal, id string) (views.NotificationRow, error) {
	if m.markReadFn == nil {
		panic("markReadFn not configured")
	}
	return m.markReadFn(ctx, principal, id)
}

func serve(t *testing.T, svc service.Service, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	h := New(svc, zaptest.NewLogger(t))
	r := chi.NewRouter()
	r.Get("/notifications", h.NotificationsList)
	r.Post("/notifications/{notificationId}/read", h.NotificationsMarkRead)

	req := httptest.NewRequest(method, path, nil)
	req = req.WithContext(platformauth.WithUser(req.Context(), &platformauth.UserCredentials{Id: "2", Role: entity.RoleUser}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestNotificationsMarkRead(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := &mockService{markReadFn: func(ctx context.Context, principal *entity.Principal, id string) (views.NotificationRow, error) {
		require.Equal(t, "not1", id)
		return views.NotificationRow{ID: id, Title: "Rent due soon", Read: true, CreatedAt: created}, nil
	}}

	rec := serve(t, svc, http.MethodPost, "/notifications/not1/read")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"id":"not1","title":"Rent due soon","description":"","read":true,"createdAt":"2025-06-15T12:00:00Z"}`, rec.Body.String())
}

func TestNotificationsMarkReadNotFound(t *testing.T) {
	t.Parallel()

	svc := &mockService{markReadFn: func(ctx context.Context, principal *entity.Principal, id string) (views.NotificationRow, error) {
		return views.NotificationRow{}, service.ErrNotFound
	}}

	rec := serve(t, svc, http.MethodPost, "/notifications/nope/read")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationsList(t *testing.T) {
	t.Parallel()

	svc := &mockService{listFn: func(ctx context.Context, principal *entity.Principal) (views.Notifications, error) {
		return views.Notifications{UnreadCount: 2}, nil
	}}

	rec := serve(t, svc, http.MethodGet, "/notifications")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"unreadCount":2`)
}
