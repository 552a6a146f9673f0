package service

import (
	"context"

	"github.com/proptrack/proptrack/platform/go/entity"
	"github.com/proptrack/proptrack/platform/go/views"
	"github.com/proptrack/proptrack/platform/go/workspace"
)

// Service lists the properties visible to a principal with occupancy and rent derived from
// contracts.
type Service interface {
	List(ctx context.Context, principal *entity.Principal) (views.Properties, error)
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

func (s *service) List(ctx context.Context, principal *entity.Principal) (views.Properties, error) {
	scope, err := s.loader.Load(ctx, principal)
	if err != nil {
		return views.Properties{}, err
	}
	return views.ComposeProperties(scope), nil
}
