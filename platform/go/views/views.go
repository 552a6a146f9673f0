// Package views composes page-level view models from a loaded dataset. Composers are pure: the
// same Scope always yields the same model, and nothing here performs I/O.
package views

import (
	"time"

	"github.com/proptrack/proptrack/platform/go/access"
	"github.com/proptrack/proptrack/platform/go/dataset"
	"github.com/proptrack/proptrack/platform/go/derive"
	"github.com/proptrack/proptrack/platform/go/entity"
)

const (
	EmptyPayments      = "No payments found."
	EmptyUpcoming      = "No upcoming payments."
	EmptyRecent        = "No recent payments."
	EmptyMaintenance   = "No maintenance requests found."
	EmptyProperties    = "No properties found."
	EmptyThreads       = "No conversations yet."
	EmptyMessages      = "No messages in this conversation."
	EmptyNotifications = "No notifications found."
	EmptyUsers         = "No users found."
	EmptyActivity      = "No activity recorded."
	EmptyVendors       = "No vendors found."
)

// Scope is everything a composer needs for one request.
type Scope struct {
	Principal *entity.Principal
	Store     *dataset.Store
	Caps      access.Capabilities
	Now       time.Time
	// AssetURL turns a stored image or avatar reference into a URL. Nil leaves references as-is.
	AssetURL func(ref string) string
}

func (s Scope) assetURL(ref string) string {
	if ref == "" || s.AssetURL == nil {
		return ref
	}
	return s.AssetURL(ref)
}

// List is a collection with the message to show when it is empty. Items is never nil.
type List[T any] struct {
	Items        []T    `json:"items"`
	EmptyMessage string `json:"emptyMessage"`
}

func newList[T any](items []T, empty string) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{Items: items, EmptyMessage: empty}
}

type PaymentRow struct {
	ID            string               `json:"id"`
	PropertyID    string               `json:"propertyId"`
	PropertyName  string               `json:"propertyName"`
	TenantName    string               `json:"tenantName"`
	Amount        int64                `json:"amount"`
	AmountDisplay string               `json:"amountDisplay"`
	DueDate       time.Time            `json:"dueDate"`
	PaidDate      *time.Time           `json:"paidDate,omitempty"`
	Status        entity.PaymentStatus `json:"status"`
}

func paymentRows(scope Scope, payments []entity.Payment) []PaymentRow {
	rows := make([]PaymentRow, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, PaymentRow{
			ID:            p.ID,
			PropertyID:    p.PropertyID,
			PropertyName:  derive.PropertyNameOf(scope.Store, p.PropertyID),
			TenantName:    derive.TenantNameOf(scope.Store, p.ContractID),
			Amount:        p.Amount,
			AmountDisplay: derive.FormatAmount(p.Amount),
			DueDate:       p.DueDate,
			PaidDate:      p.PaidDate,
			Status:        derive.PaymentStatus(p, scope.Now),
		})
	}
	return rows
}

type MaintenanceRow struct {
	ID            string                   `json:"id"`
	PropertyID    string                   `json:"propertyId"`
	PropertyName  string                   `json:"propertyName"`
	Description   string                   `json:"description"`
	Status        entity.MaintenanceStatus `json:"status"`
	SubmittedDate time.Time                `json:"submittedDate"`
	InitiatedBy   entity.Initiator         `json:"initiatedBy"`
	VendorID      *string                  `json:"vendorId,omitempty"`
	VendorName    string                   `json:"vendorName,omitempty"`
}

func maintenanceRow(scope Scope, r entity.MaintenanceRequest) MaintenanceRow {
	return MaintenanceRow{
		ID:            r.ID,
		PropertyID:    r.PropertyID,
		PropertyName:  derive.PropertyNameOf(scope.Store, r.PropertyID),
		Description:   r.Description,
		Status:        r.Status,
		SubmittedDate: r.SubmittedDate,
		InitiatedBy:   r.InitiatedBy,
		VendorID:      r.AssignedVendorID,
		VendorName:    derive.VendorNameOf(scope.Store, r.AssignedVendorID),
	}
}

func maintenanceRows(scope Scope, requests []entity.MaintenanceRequest) []MaintenanceRow {
	rows := make([]MaintenanceRow, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, maintenanceRow(scope, r))
	}
	return rows
}
