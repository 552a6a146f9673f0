package access

import (
	"errors"

	"github.com/proptrack/proptrack/platform/go/dataset"
	"github.com/proptrack/proptrack/platform/go/entity"
)

// ErrUnauthenticated is returned when no principal is attached to the request.
var ErrUnauthenticated = errors.New("unauthenticated")

// LoginPath is where clients should send an unauthenticated user.
const LoginPath = "/login"

// Capabilities are the role-derived gates applied to every view.
type Capabilities struct {
	CanSeeAllProperties      bool     `json:"canSeeAllProperties"`
	CanManageUsers           bool     `json:"canManageUsers"`
	CanSubmitMaintenanceOnly bool     `json:"canSubmitMaintenanceOnly"`
	VisiblePropertyIDs       []string `json:"visiblePropertyIds"`

	visible map[string]struct{}
}

// Resolve derives capabilities for principal. Admins see every property; users see the properties
// reachable through any contract naming them as tenant, including finished ones.
func Resolve(principal *entity.Principal, store *dataset.Store) (Capabilities, error) {
	if principal == nil || principal.ID == "" {
		return Capabilities{}, ErrUnauthenticated
	}

	var caps Capabilities
	ids := make([]string, 0)

	if principal.Role == entity.RoleAdmin {
		caps.CanSeeAllProperties = true
		caps.CanManageUsers = true
		for _, p := range store.Properties() {
			ids = append(ids, p.ID)
		}
	} else {
		caps.CanSubmitMaintenanceOnly = true
		reachable := make(map[string]struct{})
		for _, c := range store.Contracts() {
			if c.TenantID == principal.ID {
				reachable[c.PropertyID] = struct{}{}
			}
		}
		// keep property order stable
		for _, p := range store.Properties() {
			if _, ok := reachable[p.ID]; ok {
				ids = append(ids, p.ID)
			}
		}
	}

	caps.VisiblePropertyIDs = ids
	caps.visible = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		caps.visible[id] = struct{}{}
	}

	return caps, nil
}

// CanSee reports whether the property is visible under these capabilities.
func (c Capabilities) CanSee(propertyID string) bool {
	if c.CanSeeAllProperties {
		return true
	}
	_, ok := c.visible[propertyID]
	return ok
}

func (c Capabilities) Properties(store *dataset.Store) []entity.Property {
	out := make([]entity.Property, 0)
	for _, p := range store.Properties() {
		if c.CanSee(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

func (c Capabilities) Payments(store *dataset.Store) []entity.Payment {
	out := make([]entity.Payment, 0)
	for _, p := range store.Payments() {
		if c.CanSee(p.PropertyID) {
			out = append(out, p)
		}
	}
	return out
}

func (c Capabilities) MaintenanceRequests(store *dataset.Store) []entity.MaintenanceRequest {
	out := make([]entity.MaintenanceRequest, 0)
	for _, r := range store.MaintenanceRequests() {
		if c.CanSee(r.PropertyID) {
			out = append(out, r)
		}
	}
	return out
}

// Communications returns the threads on visible properties. Non-admins additionally only see
// threads they take part in.
func (c Capabilities) Communications(store *dataset.Store, principalID string) []entity.Communication {
	out := make([]entity.Communication, 0)
	for _, comm := range store.Communications() {
		if !c.CanSee(comm.PropertyID) {
			continue
		}
		if !c.CanSeeAllProperties && !comm.HasParticipant(principalID) {
			continue
		}
		out = append(out, comm)
	}
	return out
}

// NavItem is one entry of the dashboard's side menu.
type NavItem struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Navigation builds the side menu for the resolved capabilities.
func Navigation(caps Capabilities) []NavItem {
	items := []NavItem{
		{Label: "Dashboard", Href: "/dashboard"},
		{Label: "Properties", Href: "/dashboard/properties"},
		{Label: "Payments", Href: "/dashboard/payments"},
		{Label: "Maintenance", Href: "/dashboard/maintenance"},
		{Label: "Communications", Href: "/dashboard/communications"},
	}
	if caps.CanManageUsers {
		items = append(items, NavItem{Label: "User Management", Href: "/dashboard/users"})
	}
	items = append(items, NavItem{Label: "Settings", Href: "/dashboard/settings"})
	return items
}
