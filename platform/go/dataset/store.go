package dataset

import (
	"slices"

	"github.com/proptrack/proptrack/platform/go/entity"
)

// Snapshot is the full set of collections loaded for one request.
type Snapshot struct {
	Users               []entity.User
	Properties          []entity.Property
	Contracts           []entity.Contract
	Payments            []entity.Payment
	MaintenanceRequests []entity.MaintenanceRequest
	Vendors             []entity.Vendor
	Communications      []entity.Communication
	Notifications       []entity.Notification
}

// Clone returns a deep copy so callers can hand snapshots out without sharing backing arrays.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Users:               slices.Clone(s.Users),
		Properties:          slices.Clone(s.Properties),
		Contracts:           slices.Clone(s.Contracts),
		Payments:            make([]entity.Payment, len(s.Payments)),
		MaintenanceRequests: make([]entity.MaintenanceRequest, len(s.MaintenanceRequests)),
		Vendors:             slices.Clone(s.Vendors),
		Communications:      make([]entity.Communication, len(s.Communications)),
		Notifications:       slices.Clone(s.Notifications),
	}

	for i, p := range s.Payments {
		out.Payments[i] = clonePayment(p)
	}
	for i, r := range s.MaintenanceRequests {
		out.MaintenanceRequests[i] = CloneMaintenanceRequest(r)
	}
	for i, c := range s.Communications {
		c.Users = slices.Clone(c.Users)
		c.Messages = slices.Clone(c.Messages)
		out.Communications[i] = c
	}

	return out
}

// CloneMaintenanceRequest copies the request including its activity log and vendor pointer.
func CloneMaintenanceRequest(r entity.MaintenanceRequest) entity.MaintenanceRequest {
	r.ActivityLog = slices.Clone(r.ActivityLog)
	if r.AssignedVendorID != nil {
		v := *r.AssignedVendorID
		r.AssignedVendorID = &v
	}
	return r
}

func clonePayment(p entity.Payment) entity.Payment {
	if p.PaidDate != nil {
		d := *p.PaidDate
		p.PaidDate = &d
	}
	return p
}

// Store is an immutable, indexed view over a Snapshot. It is safe for concurrent reads.
type Store struct {
	snap Snapshot

	users       map[string]int
	properties  map[string]int
	contracts   map[string]int
	vendors     map[string]int
	maintenance map[string]int
}

// NewStore indexes a private copy of snap.
func NewStore(snap Snapshot) *Store {
	snap = snap.Clone()
	s := &Store{
		snap:        snap,
		users:       make(map[string]int, len(snap.Users)),
		properties:  make(map[string]int, len(snap.Properties)),
		contracts:   make(map[string]int, len(snap.Contracts)),
		vendors:     make(map[string]int, len(snap.Vendors)),
		maintenance: make(map[string]int, len(snap.MaintenanceRequests)),
	}

	for i, u := range snap.Users {
		s.users[u.ID] = i
	}
	for i, p := range snap.Properties {
		s.properties[p.ID] = i
	}
	for i, c := range snap.Contracts {
		s.contracts[c.ID] = i
	}
	for i, v := range snap.Vendors {
		s.vendors[v.ID] = i
	}
	for i, r := range snap.MaintenanceRequests {
		s.maintenance[r.ID] = i
	}

	return s
}

// Snapshot returns a deep copy of the underlying collections.
func (s *Store) Snapshot() Snapshot { return s.snap.Clone() }

func (s *Store) Users() []entity.User { return slices.Clone(s.snap.Users) }
func (s *Store) Properties() []entity.Property { return slices.Clone(s.snap.Properties) }
func (s *Store) Contracts() []entity.Contract { return slices.Clone(s.snap.Contracts) }
func (s *Store) Vendors() []entity.Vendor { return slices.Clone(s.snap.Vendors) }
func (s *Store) Notifications() []entity.Notification { return slices.Clone(s.snap.Notifications) }

func (s *Store) Payments() []entity.Payment {
	out := make([]entity.Payment, len(s.snap.Payments))
	for i, p := range s.snap.Payments {
		out[i] = clonePayment(p)
	}
	return out
}

func (s *Store) MaintenanceRequests() []entity.MaintenanceRequest {
	out := make([]entity.MaintenanceRequest, len(s.snap.MaintenanceRequests))
	for i, r := range s.snap.MaintenanceRequests {
		out[i] = CloneMaintenanceRequest(r)
	}
	return out
}

func (s *Store) Communications() []entity.Communication {
	return s.Snapshot().Communications
}

func (s *Store) User(id string) (entity.User, bool) {
	i, ok := s.users[id]
	if !ok {
		return entity.User{}, false
	}
	return s.snap.Users[i], true
}

func (s *Store) Property(id string) (entity.Property, bool) {
	i, ok := s.properties[id]
	if !ok {
		return entity.Property{}, false
	}
	return s.snap.Properties[i], true
}

func (s *Store) Contract(id string) (entity.Contract, bool) {
	i, ok := s.contracts[id]
	if !ok {
		return entity.Contract{}, false
	}
	return s.snap.Contracts[i], true
}

func (s *Store) Vendor(id string) (entity.Vendor, bool) {
	i, ok := s.vendors[id]
	if !ok {
		return entity.Vendor{}, false
	}
	return s.snap.Vendors[i], true
}

func (s *Store) MaintenanceRequest(id string) (entity.MaintenanceRequest, bool) {
	i, ok := s.maintenance[id]
	if !ok {
		return entity.MaintenanceRequest{}, false
	}
	return CloneMaintenanceRequest(s.snap.MaintenanceRequests[i]), true
}
