package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/proptrack/proptrack/platform/go/dataset"
	"github.com/proptrack/proptrack/platform/go/entity"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixtureStore() *dataset.Store {
	return dataset.NewStore(dataset.Fixture(now))
}

func TestOccupancyAndRentFollowContracts(t *testing.T) {
	t.Parallel()

	store := fixtureStore()

	require.Equal(t, entity.Occupied, OccupancyOf(store, "prop1"))
	require.Equal(t, entity.Vacant, OccupancyOf(store, "prop3"))
	require.Equal(t, entity.Vacant, OccupancyOf(store, "missing"))

	rent, ok := RentOf(store, "prop2")
	require.True(t, ok)
	require.EqualValues(t, 3200, rent)

	_, ok = RentOf(store, "prop3")
	require.False(t, ok)
}

func TestOccupancyIgnoresNonActiveContracts(t *testing.T) {
	t.Parallel()

	for _, status := range []entity.ContractStatus{entity.ContractSent, entity.ContractSigned, entity.ContractRenewed, entity.ContractFinished} {
		store := dataset.NewStore(dataset.Snapshot{
			Properties: []entity.Property{{ID: "p"}},
			Contracts:  []entity.Contract{{ID: "c", PropertyID: "p", Status: status, RentAmount: 100}},
		})
		require.Equal(t, entity.Vacant, OccupancyOf(store, "p"), status)
		_, ok := RentOf(store, "p")
		require.False(t, ok)
	}
}

func TestPaymentStatus(t *testing.T) {
	t.Parallel()

	paid := now.Add(-time.Hour)
	cases := []struct {
		name    string
		payment entity.Payment
		want    entity.PaymentStatus
	}{
		{"paid wins over past due date", entity.Payment{DueDate: now.AddDate(0, 0, -3), PaidDate: &paid}, entity.PaymentPaid},
		{"past due", entity.Payment{DueDate: now.Add(-time.Second)}, entity.PaymentOverdue},
		{"due now is upcoming", entity.Payment{DueDate: now}, entity.PaymentUpcoming},
		{"future", entity.Payment{DueDate: now.AddDate(0, 0, 1)}, entity.PaymentUpcoming},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, PaymentStatus(tc.payment, now))
		})
	}
}

func TestNameLookupsFallBackToUnknown(t *testing.T) {
	t.Parallel()

	store := fixtureStore()

	require.Equal(t, "Lakeside Cottage", PropertyNameOf(store, "prop4"))
	require.Equal(t, Unknown, PropertyNameOf(store, "nope"))
	require.Equal(t, "End User", TenantNameOf(store, "con1"))
	require.Equal(t, Unknown, TenantNameOf(store, "nope"))
	require.Equal(t, Unknown, UserNameOf(store, "nope"))
	require.Equal(t, "Rapid Plumbing Co.", VendorNameOf(store, ptr("ven1")))
	require.Equal(t, "", VendorNameOf(store, nil))
}

func TestRecentPaymentsIsStableAndDoesNotMutate(t *testing.T) {
	t.Parallel()

	day := func(d int) time.Time { return now.AddDate(0, 0, d) }
	input := []entity.Payment{
		{ID: "a", DueDate: day(-5)},
		{ID: "b", DueDate: day(3)},
		{ID: "c", DueDate: day(3)},
		{ID: "d", DueDate: day(10)},
	}

	got := RecentPayments(input, 3)
	require.Equal(t, []string{"d", "b", "c"}, ids(got))
	require.Equal(t, []string{"a", "b", "c", "d"}, ids(input))

	require.Empty(t, RecentPayments(input, 0))
	require.Len(t, RecentPayments(input, 10), 4)
	require.NotNil(t, RecentPayments(nil, 3))
}

func TestPaymentsByStatusPreservesOrder(t *testing.T) {
	t.Parallel()

	store := fixtureStore()
	payments := store.Payments()

	require.Equal(t, []string{"pay2", "pay4"}, ids(PaymentsByStatus(payments, entity.PaymentPaid, now)))
	require.Equal(t, []string{"pay1"}, ids(PaymentsByStatus(payments, entity.PaymentUpcoming, now)))
	require.Equal(t, []string{"pay3"}, ids(PaymentsByStatus(payments, entity.PaymentOverdue, now)))
}

func TestMaintenanceActivityOrdered(t *testing.T) {
	t.Parallel()

	req := entity.MaintenanceRequest{ActivityLog: []entity.MaintenanceActivity{
		{ID: "late", Timestamp: now},
		{ID: "early", Timestamp: now.Add(-time.Hour)},
		{ID: "late2", Timestamp: now},
	}}

	ordered := MaintenanceActivityOrdered(req)
	require.Equal(t, "early", ordered[0].ID)
	require.Equal(t, "late", ordered[1].ID)
	require.Equal(t, "late2", ordered[2].ID)
	require.Equal(t, "late", req.ActivityLog[0].ID)

	require.NotNil(t, MaintenanceActivityOrdered(entity.MaintenanceRequest{}))
}

func TestRecentMaintenance(t *testing.T) {
	t.Parallel()

	store := fixtureStore()
	got := RecentMaintenance(store.MaintenanceRequests(), 2)
	require.Len(t, got, 2)
	require.Equal(t, "req2", got[0].ID)
	require.Equal(t, "req1", got[1].ID)
}

func TestOccupancyBreakdownAndUnread(t *testing.T) {
	t.Parallel()

	store := fixtureStore()
	b := OccupancyBreakdown(store, []string{"prop1", "prop2", "prop3", "prop4"})
	require.Equal(t, Breakdown{Occupied: 3, Vacant: 1, Total: 4}, b)

	require.Equal(t, 3, UnreadCount(store.Notifications()))
}

func TestFormatRent(t *testing.T) {
	t.Parallel()

	require.Equal(t, "$2,500/month", FormatRent(2500, true))
	require.Equal(t, "N/A", FormatRent(0, false))
	require.Equal(t, "$12,345,678", FormatAmount(12345678))
}

func ids(payments []entity.Payment) []string {
	out := make([]string, 0, len(payments))
	for _, p := range payments {
		out = append(out, p.ID)
	}
	return out
}

func ptr(s string) *string { return &s }
