package service

import (
	"context"

	"github.com/proptrack/proptrack/platform/go/entity"
	"github.com/proptrack/proptrack/platform/go/views"
	"github.com/proptrack/proptrack/platform/go/workspace"
)

// Service defines the dashboard read model.
type Service interface {
	Get(ctx context.Context, principal *entity.Principal) (views.Dashboard, error)
}

type service struct {
	loader *workspace.Loader
}

// New constructs a dashboard Service over the workspace loader.
func New(loader *workspace.Loader) Service {
	if loader == nil {
		panic("workspace loader is required")
	}
	return &service{loader: loader}
}

func (s *service) Get(ctx context.Context, principal *entity.Principal) (views.Dashboard, error) {
	scope, err := s.loader.Load(ctx, principal)
	if err != nil {
		return views.Dashboard{}, err
	}
	return views.ComposeDashboard(scope), nil
}
