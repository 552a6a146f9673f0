package entity

import (
	"strings"
	"time"
)

// Role gates what a principal can see and do.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// ParseRole maps a raw claim or column value to a Role. Unknown values fall back to RoleUser.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin":
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type ContractStatus string

const (
	ContractSent       ContractStatus = "Sent"
	ContractSigned     ContractStatus = "Signed"
	ContractInProgress ContractStatus = "In Progress"
	ContractRenewed    ContractStatus = "Renewed"
	ContractFinished   ContractStatus = "Finished"
)

type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "Paid"
	PaymentUpcoming PaymentStatus = "Upcoming"
	PaymentOverdue  PaymentStatus = "Overdue"
)

type MaintenanceStatus string

const (
	MaintenanceSubmitted  MaintenanceStatus = "Submitted"
	MaintenanceInProgress MaintenanceStatus = "In Progress"
	MaintenanceCompleted  MaintenanceStatus = "Completed"
)

// Valid reports whether s is one of the known maintenance statuses.
func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenanceSubmitted, MaintenanceInProgress, MaintenanceCompleted:
		return true
	}
	return false
}

// Initiator records which side opened a maintenance request.
type Initiator string

const (
	InitiatorTenant   Initiator = "Tenant"
	InitiatorLandlord Initiator = "Landlord"
)

type Occupancy string

const (
	Occupied Occupancy = "Occupied"
	Vacant   Occupancy = "Vacant"
)

type User struct {
	ID        string
	Name      string
	Email     string
	AvatarRef string
	Role      Role
}

// Property carries no rent or occupancy; both are derived from contracts.
type Property struct {
	ID       string
	Name     string
	Address  string
	ImageRef string
	OwnerID  string
}

type Contract struct {
	ID         string
	PropertyID string
	LandlordID string
	TenantID   string
	StartDate  time.Time
	EndDate    time.Time
	Status     ContractStatus
	RentAmount int64
}

// Payment status is never stored; see derive.PaymentStatus.
type Payment struct {
	ID         string
	ContractID string
	PropertyID string
	Amount     int64
	DueDate    time.Time
	PaidDate   *time.Time
}

type MaintenanceActivity struct {
	ID          string
	Timestamp   time.Time
	Description string
	AuthorID    string
}

type MaintenanceRequest struct {
	ID               string
	PropertyID       string
	Description      string
	Status           MaintenanceStatus
	SubmittedDate    time.Time
	InitiatedBy      Initiator
	AssignedVendorID *string
	ActivityLog      []MaintenanceActivity
}

type Vendor struct {
	ID           string
	Name         string
	ContactEmail string
	Specialty    string
}

type Message struct {
	ID        string
	UserID    string
	Text      string
	Timestamp time.Time
}

// Communication is a two-party thread attached to a property.
type Communication struct {
	ID         string
	PropertyID string
	Users      []string
	Messages   []Message
}

// HasParticipant reports whether userID is one of the thread's two parties.
func (c Communication) HasParticipant(userID string) bool {
	for _, id := range c.Users {
		if id == userID {
			return true
		}
	}
	return false
}

type Notification struct {
	ID          string
	Title       string
	Description string
	Read        bool
	CreatedAt   time.Time
}

// Principal is the authenticated actor a request runs on behalf of.
type Principal struct {
	ID        string
	Name      string
	Email     string
	AvatarRef string
	Role      Role
}

// IsAdmin is a shorthand for Role == RoleAdmin.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
