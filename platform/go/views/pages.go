package views

import (
	"time"

	"github.com/proptrack/proptrack/platform/go/access"
	"github.com/proptrack/proptrack/platform/go/derive"
	"github.com/proptrack/proptrack/platform/go/entity"
)

const (
	dashboardRecentPayments = 3
	dashboardRecentRequests = 4
	notificationPreview     = 5
)

type Occupancy struct {
	Occupied int `json:"occupied"`
	Vacant   int `json:"vacant"`
	Total    int `json:"total"`
}

type Dashboard struct {
	WelcomeName           string               `json:"welcomeName"`
	CurrentBalance        int64                `json:"currentBalance"`
	CurrentBalanceDisplay string               `json:"currentBalanceDisplay"`
	NextPaymentDate       *time.Time           `json:"nextPaymentDate"`
	ActiveRequestCount    int                  `json:"activeRequestCount"`
	RecentPayments        List[PaymentRow]     `json:"recentPayments"`
	RecentRequests        List[MaintenanceRow] `json:"recentRequests"`
	Occupancy             Occupancy            `json:"occupancy"`
	UnreadNotifications   int                  `json:"unreadNotifications"`
	Navigation            []access.NavItem     `json:"navigation"`
	Capabilities          access.Capabilities  `json:"capabilities"`
}

// ComposeDashboard builds the landing page. The balance is the sum of Upcoming payments and the
// next payment date is the earliest Upcoming due date.
func ComposeDashboard(scope Scope) Dashboard {
	payments := scope.Caps.Payments(scope.Store)
	upcoming := derive.PaymentsByStatus(payments, entity.PaymentUpcoming, scope.Now)

	var balance int64
	var next *time.Time
	for _, p := range upcoming {
		balance += p.Amount
		if next == nil || p.DueDate.Before(*next) {
			due := p.DueDate
			next = &due
		}
	}

	requests := scope.Caps.MaintenanceRequests(scope.Store)
	active := 0
	for _, r := range requests {
		if r.Status != entity.MaintenanceCompleted {
			active++
		}
	}

	breakdown := derive.OccupancyBreakdown(scope.Store, scope.Caps.VisiblePropertyIDs)

	return Dashboard{
		WelcomeName:           welcomeName(scope),
		CurrentBalance:        balance,
		CurrentBalanceDisplay: derive.FormatAmount(balance),
		NextPaymentDate:       next,
		ActiveRequestCount:    active,
		RecentPayments:        newList(paymentRows(scope, derive.RecentPayments(payments, dashboardRecentPayments)), EmptyRecent),
		RecentRequests:        newList(maintenanceRows(scope, derive.RecentMaintenance(requests, dashboardRecentRequests)), EmptyMaintenance),
		Occupancy:             Occupancy{Occupied: breakdown.Occupied, Vacant: breakdown.Vacant, Total: breakdown.Total},
		UnreadNotifications:   derive.UnreadCount(scope.Store.Notifications()),
		Navigation:            access.Navigation(scope.Caps),
		Capabilities:          scope.Caps,
	}
}

func welcomeName(scope Scope) string {
	if scope.Principal == nil {
		return ""
	}
	if scope.Principal.Name != "" {
		return scope.Principal.Name
	}
	if u, ok := scope.Store.User(scope.Principal.ID); ok {
		return u.Name
	}
	return scope.Principal.Email
}

// PaymentTab is one independently filtered tab of the payments page.
type PaymentTab struct {
	Key          string       `json:"key"`
	Label        string       `json:"label"`
	Items        []PaymentRow `json:"items"`
	EmptyMessage string       `json:"emptyMessage"`
}

type Payments struct {
	Tabs []PaymentTab `json:"tabs"`
}

func ComposePayments(scope Scope) Payments {
	payments := scope.Caps.Payments(scope.Store)

	tab := func(key, label string, items []entity.Payment) PaymentTab {
		return PaymentTab{Key: key, Label: label, Items: paymentRows(scope, items), EmptyMessage: EmptyPayments}
	}

	return Payments{Tabs: []PaymentTab{
		tab("all", "All", payments),
		tab("upcoming", "Upcoming", derive.PaymentsByStatus(payments, entity.PaymentUpcoming, scope.Now)),
		tab("overdue", "Overdue", derive.PaymentsByStatus(payments, entity.PaymentOverdue, scope.Now)),
		tab("paid", "Paid", derive.PaymentsByStatus(payments, entity.PaymentPaid, scope.Now)),
	}}
}

type UpcomingPayments struct {
	Payments     List[PaymentRow] `json:"payments"`
	Total        int64            `json:"total"`
	TotalDisplay string           `json:"totalDisplay"`
}

func ComposeUpcomingPayments(scope Scope) UpcomingPayments {
	upcoming := derive.PaymentsByStatus(scope.Caps.Payments(scope.Store), entity.PaymentUpcoming, scope.Now)

	var total int64
	for _, p := range upcoming {
		total += p.Amount
	}

	return UpcomingPayments{
		Payments:     newList(paymentRows(scope, upcoming), EmptyUpcoming),
		Total:        total,
		TotalDisplay: derive.FormatAmount(total),
	}
}

type PropertyCard struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Address     string           `json:"address"`
	ImageURL    string           `json:"imageUrl"`
	OwnerName   string           `json:"ownerName"`
	Status      entity.Occupancy `json:"status"`
	Rent        *int64           `json:"rent"`
	RentDisplay string           `json:"rentDisplay"`
}

type Properties struct {
	Properties List[PropertyCard] `json:"properties"`
	Occupancy  Occupancy          `json:"occupancy"`
}

func ComposeProperties(scope Scope) Properties {
	props := scope.Caps.Properties(scope.Store)
	cards := make([]PropertyCard, 0, len(props))
	for _, p := range props {
		card := PropertyCard{
			ID:        p.ID,
			Name:      p.Name,
			Address:   p.Address,
			ImageURL:  scope.assetURL(p.ImageRef),
			OwnerName: derive.UserNameOf(scope.Store, p.OwnerID),
			Status:    derive.OccupancyOf(scope.Store, p.ID),
		}
		rent, ok := derive.RentOf(scope.Store, p.ID)
		if ok {
			card.Rent = &rent
		}
		card.RentDisplay = derive.FormatRent(rent, ok)
		cards = append(cards, card)
	}

	b := derive.OccupancyBreakdown(scope.Store, scope.Caps.VisiblePropertyIDs)
	return Properties{
		Properties: newList(cards, EmptyProperties),
		Occupancy:  Occupancy{Occupied: b.Occupied, Vacant: b.Vacant, Total: b.Total},
	}
}

type NotificationRow struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NotificationRowOf(n entity.Notification) NotificationRow {
	return NotificationRow{ID: n.ID, Title: n.Title, Description: n.Description, Read: n.Read, CreatedAt: n.CreatedAt}
}

type Notifications struct {
	Notifications List[NotificationRow] `json:"notifications"`
	Preview       []NotificationRow     `json:"preview"`
	UnreadCount   int                   `json:"unreadCount"`
}

func ComposeNotifications(scope Scope) Notifications {
	all := scope.Store.Notifications()
	rows := make([]NotificationRow, 0, len(all))
	for _, n := range all {
		rows = append(rows, NotificationRowOf(n))
	}

	preview := rows
	if len(preview) > notificationPreview {
		preview = preview[:notificationPreview]
	}

	return Notifications{
		Notifications: newList(rows, EmptyNotifications),
		Preview:       preview,
		UnreadCount:   derive.UnreadCount(all),
	}
}

type Profile struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	AvatarURL string      `json:"avatarUrl"`
	Role      entity.Role `json:"role"`
}

type Me struct {
	Profile      Profile             `json:"profile"`
	Capabilities access.Capabilities `json:"capabilities"`
	Navigation   []access.NavItem    `json:"navigation"`
}

// ComposeMe merges token claims with the stored user record; claims win when present.
func ComposeMe(scope Scope) Me {
	p := scope.Principal
	profile := Profile{ID: p.ID, Name: p.Name, Email: p.Email, AvatarURL: p.AvatarRef, Role: p.Role}
	if u, ok := scope.Store.User(p.ID); ok {
		if profile.Name == "" {
			profile.Name = u.Name
		}
		if profile.Email == "" {
			profile.Email = u.Email
		}
		if profile.AvatarURL == "" {
			profile.AvatarURL = u.AvatarRef
		}
	}
	profile.AvatarURL = scope.assetURL(profile.AvatarURL)

	return Me{
		Profile:      profile,
		Capabilities: scope.Caps,
		Navigation:   access.Navigation(scope.Caps),
	}
}
