package dataset

import (
	"context"
	"strings"
	"sync"

	"github.com/proptrack/proptrack/platform/go/entity"
)

// MemorySource keeps the dataset in process. It backs local development and tests.
type MemorySource struct {
	mu   sync.RWMutex
	snap Snapshot
}

var _ Source = (*MemorySource)(nil)

// NewMemorySource returns a source holding a private copy of snap.
func NewMemorySource(snap Snapshot) *MemorySource {
	return &MemorySource{snap: snap.Clone()}
}

func (m *MemorySource) Snapshot(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snap.Clone(), nil
}

func (m *MemorySource) ListUsers(ctx context.Context) ([]entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]entity.User, len(m.snap.Users))
	copy(out, m.snap.Users)
	return out, nil
}

func (m *MemorySource) CreateUser(ctx context.Context, user entity.User) (entity.User, error) {
	if err := ctx.Err(); err != nil {
		return entity.User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.snap.Users {
		if existing.ID == user.ID || strings.EqualFold(existing.Email, user.Email) {
			return entity.User{}, ErrConflict
		}
	}

	m.snap.Users = append(m.snap.Users, user)
	return user, nil
}

func (m *MemorySource) CreateMaintenanceRequest(ctx context.Context, request entity.MaintenanceRequest) (entity.MaintenanceRequest, error) {
	if err := ctx.Err(); err != nil {
		return entity.MaintenanceRequest{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.requestIndex(request.ID) >= 0 {
		return entity.MaintenanceRequest{}, ErrConflict
	}

	stored := CloneMaintenanceRequest(request)
	m.snap.MaintenanceRequests = append(m.snap.MaintenanceRequests, stored)
	return CloneMaintenanceRequest(stored), nil
}

func (m *MemorySource) AppendMaintenanceActivity(ctx context.Context, requestID string, activity entity.MaintenanceActivity) (entity.MaintenanceRequest, error) {
	if err := ctx.Err(); err != nil {
		return entity.MaintenanceRequest{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.requestIndex(requestID)
	if i < 0 {
		return entity.MaintenanceRequest{}, ErrNotFound
	}

	req := &m.snap.MaintenanceRequests[i]
	req.ActivityLog = append(req.ActivityLog, activity)
	return CloneMaintenanceRequest(*req), nil
}

func (m *MemorySource) UpdateMaintenanceRequest(ctx context.Context, requestID string, update MaintenanceUpdate) (entity.MaintenanceRequest, error) {
	if err := ctx.Err(); err != nil {
		return entity.MaintenanceRequest{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.requestIndex(requestID)
	if i < 0 {
		return entity.MaintenanceRequest{}, ErrNotFound
	}

	req := &m.snap.MaintenanceRequests[i]
	if update.Status != nil {
		req.Status = *update.Status
	}
	if update.AssignedVendorID != nil {
		vendorID := *update.AssignedVendorID
		req.AssignedVendorID = &vendorID
	}
	if update.Activity.ID != "" {
		req.ActivityLog = append(req.ActivityLog, update.Activity)
	}

	return CloneMaintenanceRequest(*req), nil
}

func (m *MemorySource) MarkNotificationRead(ctx context.Context, notificationID string) (entity.Notification, error) {
	if err := ctx.Err(); err != nil {
		return entity.Notification{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.snap.Notifications {
		if m.snap.Notifications[i].ID == notificationID {
			m.snap.Notifications[i].Read = true
			return m.snap.Notifications[i], nil
		}
	}

	return entity.Notification{}, ErrNotFound
}

func (m *MemorySource) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemorySource) requestIndex(id string) int {
	for i, r := range m.snap.MaintenanceRequests {
		if r.ID == id {
			return i
		}
	}
	return -1
}
