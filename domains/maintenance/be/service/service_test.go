package service

import (
	"context"
	"errors"
	"fmt"
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
	admin  = &entity.Principal{ID: "1", Name: "Admin User", Role: entity.RoleAdmin}
	tenant = &entity.Principal{ID: "2", Role: entity.RoleUser}
)

// writeTrap fails the test if any write reaches the source.
type writeTrap struct {
	dataset.Source
	t *testing.T
}

func (w writeTrap) CreateMaintenanceRequest(ctx context.Context, r entity.MaintenanceRequest) (entity.MaintenanceRequest, error) {
	w.t.Fatal("CreateMaintenanceRequest must not be called")
	return entity.MaintenanceRequest{}, nil
}

func (w writeTrap) UpdateMaintenanceRequest(ctx context.Context, id string, u dataset.MaintenanceUpdate) (entity.MaintenanceRequest, error) {
	w.t.Fatal("UpdateMaintenanceRequest must not be called")
	return entity.MaintenanceRequest{}, nil
}

type failingWrites struct {
	dataset.Source
}

func (failingWrites) CreateMaintenanceRequest(ctx context.Context, r entity.MaintenanceRequest) (entity.MaintenanceRequest, error) {
	return entity.MaintenanceRequest{}, errors.New("deadlock detected")
}

func newService(src dataset.Source) *service {
	svc := New(workspace.New(src, func() time.Time { return now }, nil)).(*service)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc
}

func fixtureSource() *dataset.MemorySource {
	return dataset.NewMemorySource(dataset.Fixture(now))
}

func TestSubmitThenListIncludesRequest(t *testing.T) {
	t.Parallel()

	svc := newService(fixtureSource())
	ctx := context.Background()

	detail, err := svc.Submit(ctx, tenant, SubmitInput{PropertyID: "prop2", Description: "  Garage door will not open.  "})
	require.NoError(t, err)
	require.Equal(t, "id-1", detail.Request.ID)
	require.Equal(t, entity.MaintenanceSubmitted, detail.Request.Status)
	require.Equal(t, entity.InitiatorTenant, detail.Request.InitiatedBy)
	require.Equal(t, "Garage door will not open.", detail.Request.Description)
	require.True(t, detail.Request.SubmittedDate.Equal(now))
	require.Len(t, detail.Activity.Items, 1)
	require.Equal(t, "Request submitted", detail.Activity.Items[0].Description)

	list, err := svc.List(ctx, tenant)
	require.NoError(t, err)
	var found bool
	for _, row := range list.Requests.Items {
		if row.ID == "id-1" {
			found = true
			require.Equal(t, "prop2", row.PropertyID)
			require.Equal(t, entity.MaintenanceSubmitted, row.Status)
		}
	}
	require.True(t, found)
}

func TestSubmitByAdminIsLandlordInitiated(t *testing.T) {
	t.Parallel()

	detail, err := newService(fixtureSource()).Submit(context.Background(), admin, SubmitInput{PropertyID: "prop3", Description: "Repaint the hallway walls."})
	require.NoError(t, err)
	require.Equal(t, entity.InitiatorLandlord, detail.Request.InitiatedBy)
}

func TestSubmitValidationSkipsWrites(t *testing.T) {
	t.Parallel()

	svc := newService(writeTrap{Source: fixtureSource(), t: t})

	_, err := svc.Submit(context.Background(), tenant, SubmitInput{Description: "short"})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Equal(t, []string{"Please select a property."}, validationErr.Fields["propertyId"])
	require.Equal(t, []string{"Description must be at least 10 characters."}, validationErr.Fields["description"])

	_, err = svc.Submit(context.Background(), tenant, SubmitInput{PropertyID: "nope", Description: "Window is cracked badly."})
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "propertyId")
}

func TestSubmitRequiresPrincipal(t *testing.T) {
	t.Parallel()

	_, err := newService(writeTrap{Source: fixtureSource(), t: t}).Submit(context.Background(), nil, SubmitInput{PropertyID: "prop1", Description: "Something is broken here."})
	require.ErrorIs(t, err, access.ErrUnauthenticated)
}

func TestSubmitBackendFailureIsUnavailable(t *testing.T) {
	t.Parallel()

	_, err := newService(failingWrites{Source: fixtureSource()}).Submit(context.Background(), tenant, SubmitInput{PropertyID: "prop1", Description: "Dishwasher leaks water."})
	var unavailable *workspace.UnavailableError
	require.True(t, errors.As(err, &unavailable))
}

func TestGetOrdersActivityAndHidesInvisible(t *testing.T) {
	t.Parallel()

	snap := dataset.Fixture(now)
	snap.Users = append(snap.Users, entity.User{ID: "3", Name: "Stranger", Email: "stranger@proptrack.com", Role: entity.RoleUser})
	svc := newService(dataset.NewMemorySource(snap))

	detail, err := svc.Get(context.Background(), admin, "req1")
	require.NoError(t, err)
	require.Equal(t, "act1", detail.Activity.Items[0].ID)
	require.NotNil(t, detail.Vendor)
	require.Equal(t, "Rapid Plumbing Co.", detail.Vendor.Name)

	_, err = svc.Get(context.Background(), &entity.Principal{ID: "3", Role: entity.RoleUser}, "req1")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), admin, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddActivity(t *testing.T) {
	t.Parallel()

	svc := newService(fixtureSource())

	detail, err := svc.AddActivity(context.Background(), tenant, "req2", ActivityInput{Description: "Still not cooling at night."})
	require.NoError(t, err)
	last := detail.Activity.Items[len(detail.Activity.Items)-1]
	require.Equal(t, "Still not cooling at night.", last.Description)
	require.Equal(t, "2", last.AuthorID)

	_, err = svc.AddActivity(context.Background(), tenant, "req2", ActivityInput{Description: "   "})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "description")
}

func TestUpdateIsAdminOnly(t *testing.T) {
	t.Parallel()

	status := "Completed"
	_, err := newService(writeTrap{Source: fixtureSource(), t: t}).Update(context.Background(), tenant, "req2", UpdateInput{Status: &status})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateChangesStatusAndVendor(t *testing.T) {
	t.Parallel()

	status := "In Progress"
	vendor := "ven3"
	detail, err := newService(fixtureSource()).Update(context.Background(), admin, "req2", UpdateInput{Status: &status, VendorID: &vendor})
	require.NoError(t, err)
	require.Equal(t, entity.MaintenanceInProgress, detail.Request.Status)
	require.Equal(t, "CoolAir HVAC", detail.Request.VendorName)

	last := detail.Activity.Items[len(detail.Activity.Items)-1]
	require.Equal(t, "Status changed to In Progress; Assigned to CoolAir HVAC", last.Description)
	require.Equal(t, "Admin User", last.AuthorName)
}

func TestUpdateValidation(t *testing.T) {
	t.Parallel()

	svc := newService(writeTrap{Source: fixtureSource(), t: t})
	var validationErr *ValidationError

	_, err := svc.Update(context.Background(), admin, "req2", UpdateInput{})
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "payload")

	bad := "Done"
	_, err = svc.Update(context.Background(), admin, "req2", UpdateInput{Status: &bad})
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "status")

	unknown := "ven-missing"
	_, err = svc.Update(context.Background(), admin, "req2", UpdateInput{VendorID: &unknown})
	require.True(t, errors.As(err, &validationErr))
	require.Equal(t, []string{"Please select a vendor."}, validationErr.Fields["vendorId"])
}

func TestVendors(t *testing.T) {
	t.Parallel()

	svc := newService(fixtureSource())

	view, err := svc.Vendors(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, view.Vendors.Items, 3)

	_, err = svc.Vendors(context.Background(), tenant)
	require.ErrorIs(t, err, ErrForbidden)
}
