package dataset

import (
	"errors"
	"fmt"
)

// Validate reports every structural invariant the snapshot violates, joined into one error.
// Dangling foreign keys are not violations; lookups fall back to "Unknown" instead.
func (s Snapshot) Validate() error {
	var errs []error

	errs = append(errs, duplicateIDs("user", len(s.Users), func(i int) string { return s.Users[i].ID })...)
	errs = append(errs, duplicateIDs("property", len(s.Properties), func(i int) string { return s.Properties[i].ID })...)
	errs = append(errs, duplicateIDs("contract", len(s.Contracts), func(i int) string { return s.Contracts[i].ID })...)
	errs = append(errs, duplicateIDs("payment", len(s.Payments), func(i int) string { return s.Payments[i].ID })...)
	errs = append(errs, duplicateIDs("maintenance request", len(s.MaintenanceRequests), func(i int) string { return s.MaintenanceRequests[i].ID })...)
	errs = append(errs, duplicateIDs("vendor", len(s.Vendors), func(i int) string { return s.Vendors[i].ID })...)
	errs = append(errs, duplicateIDs("communication", len(s.Communications), func(i int) string { return s.Communications[i].ID })...)
	errs = append(errs, duplicateIDs("notification", len(s.Notifications), func(i int) string { return s.Notifications[i].ID })...)

	for _, c := range s.Communications {
		if len(c.Users) != 2 {
			errs = append(errs, fmt.Errorf("communication %q must have exactly two participants, has %d", c.ID, len(c.Users)))
		}
		for _, m := range c.Messages {
			if !c.HasParticipant(m.UserID) {
				errs = append(errs, fmt.Errorf("communication %q: message %q authored by non-participant %q", c.ID, m.ID, m.UserID))
			}
		}
	}

	for _, r := range s.MaintenanceRequests {
		if !r.Status.Valid() {
			errs = append(errs, fmt.Errorf("maintenance request %q has unknown status %q", r.ID, r.Status))
		}
		for i := 1; i < len(r.ActivityLog); i++ {
			if r.ActivityLog[i].Timestamp.Before(r.ActivityLog[i-1].Timestamp) {
				errs = append(errs, fmt.Errorf("maintenance request %q: activity log out of order at %q", r.ID, r.ActivityLog[i].ID))
				break
			}
		}
	}

	for _, u := range s.Users {
		if !u.Role.Valid() {
			errs = append(errs, fmt.Errorf("user %q has unknown role %q", u.ID, u.Role))
		}
	}

	return errors.Join(errs...)
}

func duplicateIDs(kind string, n int, id func(int) string) []error {
	seen := make(map[string]struct{}, n)
	var errs []error
	for i := 0; i < n; i++ {
		key := id(i)
		if key == "" {
			errs = append(errs, fmt.Errorf("%s at index %d has an empty id", kind, i))
			continue
		}
		if _, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("duplicate %s id %q", kind, key))
			continue
		}
		seen[key] = struct{}{}
	}
	return errs
}
