package repo

import (
	"context"
	"strings"

	"github.com/proptrack/proptrack/platform/go/dataset"
	"github.com/proptrack/proptrack/platform/go/entity"
)

// Repository defines the persistence operations required by the users service.
type Repository interface {
	List(ctx context.Context) ([]entity.User, error)
	Create(ctx context.Context, user entity.User) (entity.User, error)
}

type sourceRepository struct {
	source dataset.Source
}

// NewSourceRepository constructs a repository over the process-wide data source.
func NewSourceRepository(source dataset.Source) Repository {
	if source == nil {
		panic("data source is required")
	}
	return &sourceRepository{source: source}
}

func (r *sourceRepository) List(ctx context.Context) ([]entity.User, error) {
	return r.source.ListUsers(ctx)
}

// Create stores the user with a normalised email; uniqueness is case-insensitive in every source.
func (r *sourceRepository) Create(ctx context.Context, user entity.User) (entity.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Name = strings.TrimSpace(user.Name)
	return r.source.CreateUser(ctx, user)
}
