package service

import (
	"context"

	"github.com/proptrack/proptrack/platform/go/entity"
	"github.com/proptrack/proptrack/platform/go/views"
	"github.com/proptrack/proptrack/platform/go/workspace"
)

// Service exposes the payment history and the upcoming-payments page. Status buckets are
// computed against the loader's clock on every call.
type Service interface {
	List(ctx context.Context, principal *entity.Principal) (views.Payments, error)
	Upcoming(ctx context.Context, principal *entity.Principal) (views.UpcomingPayments, error)
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

func (s *service) List(ctx context.Context, principal *entity.Principal) (views.Payments, error) {
	scope, err := s.loader.Load(ctx, principal)
	if err != nil {
		return views.Payments{}, err
	}
	return views.ComposePayments(scope), nil
}

func (s *service) Upcoming(ctx context.Context, principal *entity.Principal) (views.UpcomingPayments, error) {
	scope, err := s.loader.Load(ctx, principal)
	if err != nil {
		return views.UpcomingPayments{}, err
	}
	return views.ComposeUpcomingPayments(scope), nil
}
