package views

import (
	"time"

	"github.com/proptrack/proptrack/platform/go/derive"
	"github.com/proptrack/proptrack/platform/go/entity"
)

// SubmittedActivity is the first entry of every new request's activity log.
const SubmittedActivity = "Request submitted"

type PropertyOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MaintenanceForm struct {
	PropertyOptions []PropertyOption `json:"propertyOptions"`
	// CanManage is true for principals allowed to change status and assign vendors.
	CanManage bool `json:"canManage"`
}

type Maintenance struct {
	Requests List[MaintenanceRow] `json:"requests"`
	Form     MaintenanceForm      `json:"form"`
}

// ComposeMaintenance lists visible requests in stored order alongside the submission form.
func ComposeMaintenance(scope Scope) Maintenance {
	props := scope.Caps.Properties(scope.Store)
	options := make([]PropertyOption, 0, len(props))
	for _, p := range props {
		options = append(options, PropertyOption{ID: p.ID, Name: p.Name})
	}

	return Maintenance{
		Requests: newList(maintenanceRows(scope, scope.Caps.MaintenanceRequests(scope.Store)), EmptyMaintenance),
		Form: MaintenanceForm{
			PropertyOptions: options,
			CanManage:       !scope.Caps.CanSubmitMaintenanceOnly,
		},
	}
}

type ActivityRow struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	AuthorID    string    `json:"authorId"`
	AuthorName  string    `json:"authorName"`
}

type VendorRow struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contactEmail"`
	Specialty    string `json:"specialty"`
}

type MaintenanceDetail struct {
	Request  MaintenanceRow    `json:"request"`
	Activity List[ActivityRow] `json:"activity"`
	Vendor   *VendorRow        `json:"vendor,omitempty"`
}

// ComposeMaintenanceDetail renders one request with its activity log ascending by time.
func ComposeMaintenanceDetail(scope Scope, request entity.MaintenanceRequest) MaintenanceDetail {
	ordered := derive.MaintenanceActivityOrdered(request)
	rows := make([]ActivityRow, 0, len(ordered))
	for _, a := range ordered {
		rows = append(rows, ActivityRow{
			ID:          a.ID,
			Timestamp:   a.Timestamp,
			Description: a.Description,
			AuthorID:    a.AuthorID,
			AuthorName:  derive.UserNameOf(scope.Store, a.AuthorID),
		})
	}

	detail := MaintenanceDetail{
		Request:  maintenanceRow(scope, request),
		Activity: newList(rows, EmptyActivity),
	}
	if request.AssignedVendorID != nil {
		if v, ok := scope.Store.Vendor(*request.AssignedVendorID); ok {
			row := vendorRow(v)
			detail.Vendor = &row
		}
	}
	return detail
}

func vendorRow(v entity.Vendor) VendorRow {
	return VendorRow{ID: v.ID, Name: v.Name, ContactEmail: v.ContactEmail, Specialty: v.Specialty}
}

type Vendors struct {
	Vendors List[VendorRow] `json:"vendors"`
}

func ComposeVendors(scope Scope) Vendors {
	all := scope.Store.Vendors()
	rows := make([]VendorRow, 0, len(all))
	for _, v := range all {
		rows = append(rows, vendorRow(v))
	}
	return Vendors{Vendors: newList(rows, EmptyVendors)}
}

// Submission is a validated maintenance form.
type Submission struct {
	PropertyID  string
	Description string
}

// ComposeSubmission builds the request a submission creates: status Submitted, submitted now,
// initiated by Tenant for users and Landlord for admins, with one "Request submitted" activity.
func ComposeSubmission(scope Scope, in Submission, newID func() string) entity.MaintenanceRequest {
	initiator := entity.InitiatorTenant
	if scope.Principal.IsAdmin() {
		initiator = entity.InitiatorLandlord
	}

	return entity.MaintenanceRequest{
		ID:            newID(),
		PropertyID:    in.PropertyID,
		Description:   in.Description,
		Status:        entity.MaintenanceSubmitted,
		SubmittedDate: scope.Now,
		InitiatedBy:   initiator,
		ActivityLog: []entity.MaintenanceActivity{{
			ID:          newID(),
			Timestamp:   scope.Now,
			Description: SubmittedActivity,
			AuthorID:    scope.Principal.ID,
		}},
	}
}
