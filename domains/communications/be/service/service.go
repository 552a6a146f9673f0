package service

import (
	"context"
	"strings"

	"github.com/proptrack/proptrack/platform/go/entity"
	"github.com/proptrack/proptrack/platform/go/views"
	"github.com/proptrack/proptrack/platform/go/workspace"
)

// Service renders the messaging page. Sending messages is not supported.
type Service interface {
	// Get lists the principal's threads and expands threadID, or the first thread when threadID
	// is empty or not visible.
	Get(ctx context.Context, principal *entity.Principal, threadID string) (views.Communications, error)
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

func (s *service) Get(ctx context.Context, principal *entity.Principal, threadID string) (views.Communications, error) {
	scope, err := s.loader.Load(ctx, principal)
	if err != nil {
		return views.Communications{}, err
	}
	return views.ComposeCommunications(scope, strings.TrimSpace(threadID)), nil
}
