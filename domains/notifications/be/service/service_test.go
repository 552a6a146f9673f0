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

var (
	now    = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tenant = &entity.Principal{ID: "2", Role: entity.RoleUser}
)

type brokenSource struct {
	dataset.Source
}

func (brokenSource) MarkNotificationRead(ctx context.Context, id string) (entity.Notification, error) {
	return entity.Notification{}, errors.New("connection reset")
}

func newService() Service {
	return New(workspace.New(dataset.NewMemorySource(dataset.Fixture(now)), func() time.Time { return now }, nil))
}

func TestMarkReadUpdatesUnreadCount(t *testing.T) {
	t.Parallel()

	svc := newService()
	ctx := context.Background()

	before, err := svc.List(ctx, tenant)
	require.NoError(t, err)
	require.Equal(t, 3, before.UnreadCount)

	row, err := svc.MarkRead(ctx, tenant, "not1")
	require.NoError(t, err)
	require.True(t, row.Read)

	_, err = svc.MarkRead(ctx, tenant, "not1")
	require.NoError(t, err)

	after, err := svc.List(ctx, tenant)
	require.NoError(t, err)
	require.Equal(t, 2, after.UnreadCount)
}

func TestMarkReadErrors(t *testing.T) {
	t.Parallel()

	svc := newService()
	ctx := context.Background()

	_, err := svc.MarkRead(ctx, nil, "not1")
	require.ErrorIs(t, err, access.ErrUnauthenticated)

	_, err = svc.MarkRead(ctx, tenant, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.MarkRead(ctx, tenant, " ")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMarkReadBackendFailure(t *testing.T) {
	t.Parallel()

	svc := New(workspace.New(brokenSource{}, nil, nil))
	_, err := svc.MarkRead(context.Background(), tenant, "not1")

	var unavailable *workspace.UnavailableError
	require.True(t, errors.As(err, &unavailable))
}
