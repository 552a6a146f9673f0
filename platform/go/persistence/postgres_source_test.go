package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/proptrack/proptrack/platform/go/dataset"
	"github.com/proptrack/proptrack/platform/go/entity"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	got := splitStatements("CREATE TABLE a (id INT);\n\n  ;CREATE INDEX b ON a (id);  ")
	require.Equal(t, []string{"CREATE TABLE a (id INT)", "CREATE INDEX b ON a (id)"}, got)
}

func TestSeedResultTotal(t *testing.T) {
	t.Parallel()

	require.Equal(t, int64(7), SeedResult{UsersTable: 2, PaymentsTable: 5}.Total())
}

func TestPostgresSourceRoundTripsFixture(t *testing.T) {
	t.Parallel()

	ctx, pool := startPostgres(t)
	fixture := dataset.Fixture(fixedNow)

	res, err := Seed(ctx, pool, fixture)
	require.NoError(t, err)
	require.Equal(t, int64(len(fixture.Users)), res[UsersTable])
	require.Equal(t, int64(len(fixture.Payments)), res[PaymentsTable])

	again, err := Seed(ctx, pool, fixture)
	require.NoError(t, err)
	require.Zero(t, again.Total())

	src, err := NewPostgresSource(pool)
	require.NoError(t, err)
	require.NoError(t, src.Ping(ctx))

	snap, err := src.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, snap.Validate())

	require.Equal(t, fixture.Users, snap.Users)
	require.Equal(t, fixture.Properties, snap.Properties)
	require.Equal(t, fixture.Vendors, snap.Vendors)
	require.Len(t, snap.Contracts, len(fixture.Contracts))
	require.Len(t, snap.Payments, len(fixture.Payments))
	for i, p := range snap.Payments {
		require.Equal(t, fixture.Payments[i].ID, p.ID)
		require.True(t, fixture.Payments[i].DueDate.Equal(p.DueDate))
		require.Equal(t, fixture.Payments[i].PaidDate == nil, p.PaidDate == nil)
	}

	require.Len(t, snap.MaintenanceRequests, len(fixture.MaintenanceRequests))
	for i, r := range snap.MaintenanceRequests {
		require.Equal(t, fixture.MaintenanceRequests[i].ID, r.ID)
		require.Len(t, r.ActivityLog, len(fixture.MaintenanceRequests[i].ActivityLog))
	}

	require.Len(t, snap.Communications, len(fixture.Communications))
	require.Equal(t, []string{"1", "2"}, snap.Communications[0].Users)
	require.Len(t, snap.Communications[0].Messages, len(fixture.Communications[0].Messages))
}

func TestPostgresSourceWrites(t *testing.T) {
	t.Parallel()

	ctx, pool := startPostgres(t)
	_, err := Seed(ctx, pool, dataset.Fixture(fixedNow))
	require.NoError(t, err)

	src, err := NewPostgresSource(pool)
	require.NoError(t, err)

	created, err := src.CreateUser(ctx, entity.User{ID: "u-3", Name: "Jane Doe", Email: "jane@example.com", Role: entity.RoleUser})
	require.NoError(t, err)
	require.Equal(t, "u-3", created.ID)

	_, err = src.CreateUser(ctx, entity.User{ID: "u-4", Name: "Dup", Email: "ADMIN@proptrack.com", Role: entity.RoleUser})
	require.ErrorIs(t, err, dataset.ErrConflict)

	users, err := src.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	require.Equal(t, "u-3", users[2].ID)

	req, err := src.CreateMaintenanceRequest(ctx, entity.MaintenanceRequest{
		ID:            "req-new",
		PropertyID:    "prop1",
		Description:   "Window will not close.",
		Status:        entity.MaintenanceSubmitted,
		SubmittedDate: fixedNow,
		InitiatedBy:   entity.InitiatorTenant,
		ActivityLog: []entity.MaintenanceActivity{
			{ID: "act-new", Timestamp: fixedNow, Description: "Request submitted", AuthorID: "2"},
		},
	})
	require.NoError(t, err)
	require.Len(t, req.ActivityLog, 1)
	require.Nil(t, req.AssignedVendorID)

	req, err = src.AppendMaintenanceActivity(ctx, "req-new", entity.MaintenanceActivity{ID: "act-note", Timestamp: fixedNow.Add(time.Hour), Description: "Called tenant", AuthorID: "1"})
	require.NoError(t, err)
	require.Len(t, req.ActivityLog, 2)

	status := entity.MaintenanceInProgress
	vendor := "ven1"
	req, err = src.UpdateMaintenanceRequest(ctx, "req-new", dataset.MaintenanceUpdate{
		Status:           &status,
		AssignedVendorID: &vendor,
		Activity:         entity.MaintenanceActivity{ID: "act-upd", Timestamp: fixedNow.Add(2 * time.Hour), Description: "Status changed", AuthorID: "1"},
	})
	require.NoError(t, err)
	require.Equal(t, entity.MaintenanceInProgress, req.Status)
	require.Equal(t, "ven1", *req.AssignedVendorID)
	require.Len(t, req.ActivityLog, 3)

	_, err = src.UpdateMaintenanceRequest(ctx, "missing", dataset.MaintenanceUpdate{Status: &status})
	require.ErrorIs(t, err, dataset.ErrNotFound)

	_, err = src.AppendMaintenanceActivity(ctx, "missing", entity.MaintenanceActivity{ID: "x"})
	require.ErrorIs(t, err, dataset.ErrNotFound)

	n, err := src.MarkNotificationRead(ctx, "not1")
	require.NoError(t, err)
	require.True(t, n.Read)

	n, err = src.MarkNotificationRead(ctx, "not1")
	require.NoError(t, err)
	require.True(t, n.Read)

	_, err = src.MarkNotificationRead(ctx, "missing")
	require.ErrorIs(t, err, dataset.ErrNotFound)
}
