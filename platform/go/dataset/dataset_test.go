package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/proptrack/proptrack/platform/go/entity"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestFixtureIsValid(t *testing.T) {
	t.Parallel()

	require.NoError(t, Fixture(testNow).Validate())
}

func TestValidateReportsViolations(t *testing.T) {
	t.Parallel()

	snap := Fixture(testNow)
	snap.Users = append(snap.Users, entity.User{ID: "1", Name: "Dup", Role: entity.RoleUser})
	snap.Communications[0].Users = []string{"1"}
	snap.Communications[1].Messages = append(snap.Communications[1].Messages, entity.Message{ID: "msgX", UserID: "99"})

	err := snap.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), `duplicate user id "1"`)
	require.Contains(t, err.Error(), "exactly two participants")
	require.Contains(t, err.Error(), "non-participant")
}

func TestStoreLookups(t *testing.T) {
	t.Parallel()

	store := NewStore(Fixture(testNow))

	prop, ok := store.Property("prop1")
	require.True(t, ok)
	require.Equal(t, "Modern Downtown Loft", prop.Name)

	_, ok = store.Property("missing")
	require.False(t, ok)

	contract, ok := store.Contract("con2")
	require.True(t, ok)
	require.Equal(t, "prop2", contract.PropertyID)

	req, ok := store.MaintenanceRequest("req1")
	require.True(t, ok)
	require.Len(t, req.ActivityLog, 2)
}

func TestStoreIsolatedFromCallers(t *testing.T) {
	t.Parallel()

	snap := Fixture(testNow)
	store := NewStore(snap)

	snap.Properties[0].Name = "mutated"
	require.Equal(t, "Modern Downtown Loft", store.Properties()[0].Name)

	reqs := store.MaintenanceRequests()
	reqs[0].ActivityLog[0].Description = "mutated"
	again, _ := store.MaintenanceRequest(reqs[0].ID)
	require.Equal(t, "Request submitted", again.ActivityLog[0].Description)
}

func TestMemorySourceCreateMaintenanceRequestVisibleInNextSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := NewMemorySource(Fixture(testNow))

	created, err := src.CreateMaintenanceRequest(ctx, entity.MaintenanceRequest{
		ID:            "req9",
		PropertyID:    "prop2",
		Description:   "Garage door will not open.",
		Status:        entity.MaintenanceSubmitted,
		SubmittedDate: testNow,
		InitiatedBy:   entity.InitiatorTenant,
		ActivityLog:   []entity.MaintenanceActivity{{ID: "a9", Timestamp: testNow, Description: "Request submitted", AuthorID: "2"}},
	})
	require.NoError(t, err)
	require.Equal(t, "req9", created.ID)

	snap, err := src.Snapshot(ctx)
	require.NoError(t, err)
	store := NewStore(snap)
	got, ok := store.MaintenanceRequest("req9")
	require.True(t, ok)
	require.Len(t, got.ActivityLog, 1)

	_, err = src.CreateMaintenanceRequest(ctx, entity.MaintenanceRequest{ID: "req9"})
	require.True(t, errors.Is(err, ErrConflict))
}

func TestMemorySourceUpdateMaintenanceRequest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := NewMemorySource(Fixture(testNow))

	status := entity.MaintenanceCompleted
	vendor := "ven3"
	updated, err := src.UpdateMaintenanceRequest(ctx, "req2", MaintenanceUpdate{
		Status:           &status,
		AssignedVendorID: &vendor,
		Activity:         entity.MaintenanceActivity{ID: "a10", Timestamp: testNow, Description: "Status changed to Completed", AuthorID: "1"},
	})
	require.NoError(t, err)
	require.Equal(t, entity.MaintenanceCompleted, updated.Status)
	require.Equal(t, "ven3", *updated.AssignedVendorID)
	require.Len(t, updated.ActivityLog, 2)

	_, err = src.UpdateMaintenanceRequest(ctx, "missing", MaintenanceUpdate{Status: &status})
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestMemorySourceCreateUserConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := NewMemorySource(Fixture(testNow))

	_, err := src.CreateUser(ctx, entity.User{ID: "new", Email: "ADMIN@proptrack.com", Role: entity.RoleUser})
	require.True(t, errors.Is(err, ErrConflict))

	created, err := src.CreateUser(ctx, entity.User{ID: "3", Name: "New", Email: "new@proptrack.com", Role: entity.RoleUser})
	require.NoError(t, err)
	require.Equal(t, "3", created.ID)

	users, err := src.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
}

func TestMemorySourceMarkNotificationReadIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := NewMemorySource(Fixture(testNow))

	for i := 0; i < 2; i++ {
		n, err := src.MarkNotificationRead(ctx, "not1")
		require.NoError(t, err)
		require.True(t, n.Read)
	}

	_, err := src.MarkNotificationRead(ctx, "missing")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestMemorySourceHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemorySource(Fixture(testNow)).Snapshot(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
