package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/proptrack/proptrack/platform/go/access"
	"github.com/proptrack/proptrack/platform/go/dataset"
	"github.com/proptrack/proptrack/platform/go/entity"
	"github.com/proptrack/proptrack/platform/go/workspace"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newService() Service {
	src := dataset.NewMemorySource(dataset.Fixture(now))
	return New(workspace.New(src, func() time.Time { return now }, nil))
}

func TestGetForAdmin(t *testing.T) {
	t.Parallel()

	d, err := newService().Get(context.Background(), &entity.Principal{ID: "1", Role: entity.RoleAdmin})
	require.NoError(t, err)
	require.True(t, d.Capabilities.CanManageUsers)
	require.Equal(t, 4, d.Occupancy.Total)
	require.Equal(t, "Admin User", d.WelcomeName)
}

func TestGetForTenantOnlyCountsVisibleProperties(t *testing.T) {
	t.Parallel()

	d, err := newService().Get(context.Background(), &entity.Principal{ID: "2", Name: "Taylor", Role: entity.RoleUser})
	require.NoError(t, err)
	require.False(t, d.Capabilities.CanManageUsers)
	require.Equal(t, "Taylor", d.WelcomeName)
	require.NotContains(t, d.Navigation, access.NavItem{Label: "User Management", Href: "/dashboard/users"})
}

func TestGetRequiresPrincipal(t *testing.T) {
	t.Parallel()

	_, err := newService().Get(context.Background(), nil)
	require.True(t, errors.Is(err, access.ErrUnauthenticated))
}

func TestNewRequiresLoader(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { New(nil) })
}
