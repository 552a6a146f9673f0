// Package derive computes the values the dashboard shows but never stores: occupancy, rent,
// payment status and display names. Every function is pure and leaves its inputs untouched.
package derive

import (
	"slices"
	"time"

	"github.com/proptrack/proptrack/platform/go/dataset"
	"github.com/proptrack/proptrack/platform/go/entity"
)

// Unknown is shown wherever a reference does not resolve.
const Unknown = "Unknown"

// OccupancyOf is Occupied iff at least one In Progress contract references the property.
func OccupancyOf(store *dataset.Store, propertyID string) entity.Occupancy {
	if _, ok := activeContract(store, propertyID); ok {
		return entity.Occupied
	}
	return entity.Vacant
}

// RentOf returns the rent of the first In Progress contract on the property.
func RentOf(store *dataset.Store, propertyID string) (int64, bool) {
	c, ok := activeContract(store, propertyID)
	if !ok {
		return 0, false
	}
	return c.RentAmount, true
}

func activeContract(store *dataset.Store, propertyID string) (entity.Contract, bool) {
	for _, c := range store.Contracts() {
		if c.PropertyID == propertyID && c.Status == entity.ContractInProgress {
			return c, true
		}
	}
	return entity.Contract{}, false
}

// PaymentStatus is Paid when a paid date is set, otherwise Overdue once the due date has passed,
// otherwise Upcoming.
func PaymentStatus(p entity.Payment, now time.Time) entity.PaymentStatus {
	switch {
	case p.PaidDate != nil:
		return entity.PaymentPaid
	case p.DueDate.Before(now):
		return entity.PaymentOverdue
	default:
		return entity.PaymentUpcoming
	}
}

func PropertyNameOf(store *dataset.Store, propertyID string) string {
	if p, ok := store.Property(propertyID); ok {
		return p.Name
	}
	return Unknown
}

// TenantNameOf resolves contract -> tenant -> name.
func TenantNameOf(store *dataset.Store, contractID string) string {
	c, ok := store.Contract(contractID)
	if !ok {
		return Unknown
	}
	return UserNameOf(store, c.TenantID)
}

func UserNameOf(store *dataset.Store, userID string) string {
	if u, ok := store.User(userID); ok {
		return u.Name
	}
	return Unknown
}

func VendorNameOf(store *dataset.Store, vendorID *string) string {
	if vendorID == nil {
		return ""
	}
	if v, ok := store.Vendor(*vendorID); ok {
		return v.Name
	}
	return Unknown
}

// RecentPayments returns the n payments with the latest due dates, newest first.
// Ties keep their input order. The input slice is not reordered.
func RecentPayments(payments []entity.Payment, n int) []entity.Payment {
	if n <= 0 {
		return []entity.Payment{}
	}

	sorted := slices.Clone(payments)
	slices.SortStableFunc(sorted, func(a, b entity.Payment) int {
		return b.DueDate.Compare(a.DueDate)
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// PaymentsByStatus filters payments to one derived status, preserving their relative order.
func PaymentsByStatus(payments []entity.Payment, status entity.PaymentStatus, now time.Time) []entity.Payment {
	out := make([]entity.Payment, 0, len(payments))
	for _, p := range payments {
		if PaymentStatus(p, now) == status {
			out = append(out, p)
		}
	}
	return out
}

// MaintenanceActivityOrdered returns the activity log ascending by timestamp.
func MaintenanceActivityOrdered(request entity.MaintenanceRequest) []entity.MaintenanceActivity {
	ordered := slices.Clone(request.ActivityLog)
	slices.SortStableFunc(ordered, func(a, b entity.MaintenanceActivity) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	if ordered == nil {
		ordered = []entity.MaintenanceActivity{}
	}
	return ordered
}

// RecentMaintenance returns the n most recently submitted requests, newest first.
func RecentMaintenance(requests []entity.MaintenanceRequest, n int) []entity.MaintenanceRequest {
	if n <= 0 {
		return []entity.MaintenanceRequest{}
	}

	sorted := slices.Clone(requests)
	slices.SortStableFunc(sorted, func(a, b entity.MaintenanceRequest) int {
		return b.SubmittedDate.Compare(a.SubmittedDate)
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Breakdown counts occupied and vacant properties.
type Breakdown struct {
	Occupied int
	Vacant   int
	Total    int
}

func OccupancyBreakdown(store *dataset.Store, propertyIDs []string) Breakdown {
	var b Breakdown
	for _, id := range propertyIDs {
		if OccupancyOf(store, id) == entity.Occupied {
			b.Occupied++
		} else {
			b.Vacant++
		}
		b.Total++
	}
	return b
}

func UnreadCount(notifications []entity.Notification) int {
	count := 0
	for _, n := range notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

// SortMessages orders a thread's messages ascending by timestamp; ties keep stored order.
func SortMessages(messages []entity.Message) []entity.Message {
	ordered := slices.Clone(messages)
	slices.SortStableFunc(ordered, func(a, b entity.Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	if ordered == nil {
		ordered = []entity.Message{}
	}
	return ordered
}
