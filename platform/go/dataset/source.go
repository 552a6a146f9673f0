package dataset

import (
	"context"
	"errors"

	"github.com/proptrack/proptrack/platform/go/entity"
)

var (
	// ErrNotFound indicates the addressed record does not exist in the source.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a uniqueness violation (duplicated id or email).
	ErrConflict = errors.New("record conflict")
)

// MaintenanceUpdate changes a request's status or vendor and records the change in its activity log.
// Nil fields are left untouched.
type MaintenanceUpdate struct {
	Status           *entity.MaintenanceStatus
	AssignedVendorID *string
	Activity         entity.MaintenanceActivity
}

// Source is the data-access capability behind every view. Implementations are selected once at
// startup (memory fixture or Postgres) and shared by all requests.
type Source interface {
	// Snapshot loads every collection in one consistent read.
	Snapshot(ctx context.Context) (Snapshot, error)
	ListUsers(ctx context.Context) ([]entity.User, error)
	CreateUser(ctx context.Context, user entity.User) (entity.User, error)
	// CreateMaintenanceRequest persists the request together with its initial activity log.
	CreateMaintenanceRequest(ctx context.Context, request entity.MaintenanceRequest) (entity.MaintenanceRequest, error)
	AppendMaintenanceActivity(ctx context.Context, requestID string, activity entity.MaintenanceActivity) (entity.MaintenanceRequest, error)
	UpdateMaintenanceRequest(ctx context.Context, requestID string, update MaintenanceUpdate) (entity.MaintenanceRequest, error)
	// MarkNotificationRead is idempotent.
	MarkNotificationRead(ctx context.Context, notificationID string) (entity.Notification, error)
	Ping(ctx context.Context) error
}
