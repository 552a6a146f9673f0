package dataset

import (
	"time"

	"github.com/proptrack/proptrack/platform/go/entity"
)

// Fixture returns the sample dataset used by the memory source and the seed command.
// Dates are relative to now so payment statuses stay meaningful whenever it is loaded.
func Fixture(now time.Time) Snapshot {
	now = now.UTC()
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }
	paid := func(t time.Time) *time.Time { return &t }
	vendor := func(id string) *string { return &id }

	return Snapshot{
		Users: []entity.User{
			{ID: "1", Name: "Admin User", Email: "admin@proptrack.com", AvatarRef: "avatars/01.png", Role: entity.RoleAdmin},
			{ID: "2", Name: "End User", Email: "user@proptrack.com", AvatarRef: "avatars/02.png", Role: entity.RoleUser},
		},
		Properties: []entity.Property{
			{ID: "prop1", Name: "Modern Downtown Loft", Address: "123 Main St, Anytown, USA", ImageRef: "https://placehold.co/600x400.png", OwnerID: "1"},
			{ID: "prop2", Name: "Suburban Family Home", Address: "456 Oak Ave, Suburbia, USA", ImageRef: "https://placehold.co/600x400.png", OwnerID: "1"},
			{ID: "prop3", Name: "Cozy Studio Apartment", Address: "789 Pine Ln, Metroville, USA", ImageRef: "https://placehold.co/600x400.png", OwnerID: "1"},
			{ID: "prop4", Name: "Lakeside Cottage", Address: "101 Lake Rd, Clearwater, USA", ImageRef: "https://placehold.co/600x400.png", OwnerID: "1"},
		},
		Contracts: []entity.Contract{
			{ID: "con1", PropertyID: "prop1", LandlordID: "1", TenantID: "2", StartDate: now.AddDate(-1, 0, 0), EndDate: now.AddDate(1, 0, 0), Status: entity.ContractInProgress, RentAmount: 2500},
			{ID: "con2", PropertyID: "prop2", LandlordID: "1", TenantID: "2", StartDate: now.AddDate(0, -6, 0), EndDate: now.AddDate(0, 6, 0), Status: entity.ContractInProgress, RentAmount: 3200},
			{ID: "con3", PropertyID: "prop4", LandlordID: "1", TenantID: "2", StartDate: now.AddDate(0, -3, 0), EndDate: now.AddDate(0, 9, 0), Status: entity.ContractInProgress, RentAmount: 2100},
			{ID: "con4", PropertyID: "prop3", LandlordID: "1", TenantID: "2", StartDate: now.AddDate(-2, 0, 0), EndDate: now.AddDate(-1, 0, 0), Status: entity.ContractFinished, RentAmount: 1800},
		},
		Payments: []entity.Payment{
			{ID: "pay1", ContractID: "con1", PropertyID: "prop1", Amount: 2500, DueDate: day(5)},
			{ID: "pay2", ContractID: "con2", PropertyID: "prop2", Amount: 3200, DueDate: day(-10), PaidDate: paid(day(-11))},
			{ID: "pay3", ContractID: "con3", PropertyID: "prop4", Amount: 2100, DueDate: day(-2)},
			{ID: "pay4", ContractID: "con1", PropertyID: "prop1", Amount: 2500, DueDate: now.AddDate(0, -1, 0), PaidDate: paid(now.AddDate(0, -1, -1))},
		},
		MaintenanceRequests: []entity.MaintenanceRequest{
			{
				ID: "req1", PropertyID: "prop1", Description: "Leaky faucet in the kitchen sink.",
				Status: entity.MaintenanceInProgress, SubmittedDate: day(-3), InitiatedBy: entity.InitiatorTenant,
				AssignedVendorID: vendor("ven1"),
				ActivityLog: []entity.MaintenanceActivity{
					{ID: "act1", Timestamp: day(-3), Description: "Request submitted", AuthorID: "2"},
					{ID: "act2", Timestamp: day(-2), Description: "Assigned to Rapid Plumbing Co.", AuthorID: "1"},
				},
			},
			{
				ID: "req2", PropertyID: "prop2", Description: "HVAC unit not cooling properly.",
				Status: entity.MaintenanceSubmitted, SubmittedDate: day(-1), InitiatedBy: entity.InitiatorTenant,
				ActivityLog: []entity.MaintenanceActivity{
					{ID: "act3", Timestamp: day(-1), Description: "Request submitted", AuthorID: "2"},
				},
			},
			{
				ID: "req3", PropertyID: "prop1", Description: "Front door lock is sticking.",
				Status: entity.MaintenanceCompleted, SubmittedDate: day(-14), InitiatedBy: entity.InitiatorLandlord,
				AssignedVendorID: vendor("ven2"),
				ActivityLog: []entity.MaintenanceActivity{
					{ID: "act4", Timestamp: day(-14), Description: "Request submitted", AuthorID: "1"},
					{ID: "act5", Timestamp: day(-12), Description: "Lock replaced", AuthorID: "1"},
				},
			},
		},
		Vendors: []entity.Vendor{
			{ID: "ven1", Name: "Rapid Plumbing Co.", ContactEmail: "dispatch@rapidplumbing.example", Specialty: "Plumbing"},
			{ID: "ven2", Name: "Secure Locksmiths", ContactEmail: "jobs@securelocks.example", Specialty: "Locks"},
			{ID: "ven3", Name: "CoolAir HVAC", ContactEmail: "service@coolair.example", Specialty: "HVAC"},
		},
		Communications: []entity.Communication{
			{
				ID: "comm1", PropertyID: "prop1", Users: []string{"1", "2"},
				Messages: []entity.Message{
					{ID: "msg1", UserID: "1", Text: "Hi there! Just wanted to check in on the rent payment.", Timestamp: day(-1)},
					{ID: "msg2", UserID: "2", Text: "Hey! Yes, I'll be sending it over tomorrow.", Timestamp: day(-1).Add(time.Hour)},
				},
			},
			{
				ID: "comm2", PropertyID: "prop2", Users: []string{"1", "2"},
				Messages: []entity.Message{
					{ID: "msg3", UserID: "1", Text: "The maintenance request for the HVAC has been received.", Timestamp: day(-2)},
				},
			},
		},
		Notifications: []entity.Notification{
			{ID: "not1", Title: "Rent due soon", Description: "Rent for Modern Downtown Loft is due in 5 days.", CreatedAt: day(0)},
			{ID: "not2", Title: "Payment overdue", Description: "Rent for Lakeside Cottage is overdue.", CreatedAt: day(-1)},
			{ID: "not3", Title: "Maintenance update", Description: "Your faucet repair is in progress.", CreatedAt: day(-2)},
			{ID: "not4", Title: "Payment received", Description: "Payment for Suburban Family Home was received.", Read: true, CreatedAt: day(-10)},
		},
	}
}
