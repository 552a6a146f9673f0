package service

import (
	"context"
	"errors"
	"strings"

	"github.com/proptrack/proptrack/platform/go/access"
	"github.com/proptrack/proptrack/platform/go/dataset"
	"github.com/proptrack/proptrack/platform/go/entity"
	"github.com/proptrack/proptrack/platform/go/views"
	"github.com/proptrack/proptrack/platform/go/workspace"
)

// ErrNotFound is returned when the notification id does not exist.
var ErrNotFound = errors.New("notification not found")

type Service interface {
	List(ctx context.Context, principal *entity.Principal) (views.Notifications, error)
	// MarkRead is idempotent: marking an already-read notification succeeds.
	MarkRead(ctx context.Context, principal *entity.Principal, id string) (views.NotificationRow, error)
}

type service struct {
	loader *workspace.Loader
}

func New(loader *workspace.Loader) Service {
	if loader == nil {
		panic("workspace loader is required")
	}
	return &service{loader: loader}
}

func (s *service) List(ctx context.Context, principal *entity.Principal) (views.Notifications, error) {
	scope, err := s.loader.Load(ctx, principal)
	if err != nil {
		return views.Notifications{}, err
	}
	return views.ComposeNotifications(scope), nil
}

func (s *service) MarkRead(ctx context.Context, principal *entity.Principal, id string) (views.NotificationRow, error) {
	if principal == nil || principal.ID == "" {
		return views.NotificationRow{}, access.ErrUnauthenticated
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return views.NotificationRow{}, ErrNotFound
	}

	n, err := s.loader.Source().MarkNotificationRead(ctx, id)
	switch {
	case err == nil:
		return views.NotificationRowOf(n), nil
	case errors.Is(err, dataset.ErrNotFound):
		return views.NotificationRow{}, ErrNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return views.NotificationRow{}, err
	default:
		return views.NotificationRow{}, &workspace.UnavailableError{Op: "mark notification read", Err: err}
	}
}
