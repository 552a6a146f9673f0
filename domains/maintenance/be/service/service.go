package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/proptrack/proptrack/platform/go/access"
	"github.com/proptrack/proptrack/platform/go/dataset"
	"github.com/proptrack/proptrack/platform/go/entity"
	"github.com/proptrack/proptrack/platform/go/forms"
	"github.com/proptrack/proptrack/platform/go/views"
	"github.com/proptrack/proptrack/platform/go/workspace"
)

// FieldErrors maps request fields to validation issues.
type FieldErrors map[string][]string

// ValidationError is returned when the input payload is invalid. It is always raised before the
// data source is written.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string {
	return "validation error"
}

var (
	ErrNotFound  = errors.New("maintenance request not found")
	ErrForbidden = errors.New("admin privileges are required")
)

// SubmitInput is the maintenance submission form.
type SubmitInput struct {
	PropertyID  string `json:"propertyId"`
	Description string `json:"description"`
}

// ActivityInput is a free-text note appended to a request's activity log.
type ActivityInput struct {
	Description string `json:"description"`
}

// UpdateInput changes status and/or the assigned vendor. At least one field must be set.
type UpdateInput struct {
	Status   *string `json:"status,omitempty"`
	VendorID *string `json:"vendorId,omitempty"`
}

// Service defines the maintenance operations. Reads are filtered by the principal's visible
// properties; status changes and vendor assignment are admin-only.
type Service interface {
	List(ctx context.Context, principal *entity.Principal) (views.Maintenance, error)
	Get(ctx context.Context, principal *entity.Principal, id string) (views.MaintenanceDetail, error)
	Submit(ctx context.Context, principal *entity.Principal, input SubmitInput) (views.MaintenanceDetail, error)
	AddActivity(ctx context.Context, principal *entity.Principal, id string, input ActivityInput) (views.MaintenanceDetail, error)
	Update(ctx context.Context, principal *entity.Principal, id string, input UpdateInput) (views.MaintenanceDetail, error)
	Vendors(ctx context.Context, principal *entity.Principal) (views.Vendors, error)
}

type service struct {
	loader *workspace.Loader
	newID  func() string
}

func New(loader *workspace.Loader) Service {
	if loader == nil {
		panic("workspace loader is required")
	}
	return &service{loader: loader, newID: uuid.NewString}
}

func (s *service) List(ctx context.Context, principal *entity.Principal) (views.Maintenance, error) {
	scope, err := s.loader.Load(ctx, principal)
	if err != nil {
		return views.Maintenance{}, err
	}
	return views.ComposeMaintenance(scope), nil
}

func (s *service) Get(ctx context.Context, principal *entity.Principal, id string) (views.MaintenanceDetail, error) {
	scope, err := s.loader.Load(ctx, principal)
	if err != nil {
		return views.MaintenanceDetail{}, err
	}

	request, err := visibleRequest(scope, id)
	if err != nil {
		return views.MaintenanceDetail{}, err
	}
	return views.ComposeMaintenanceDetail(scope, request), nil
}

func (s *service) Submit(ctx context.Context, principal *entity.Principal, input SubmitInput) (views.MaintenanceDetail, error) {
	if !authenticated(principal) {
		return views.MaintenanceDetail{}, access.ErrUnauthenticated
	}

	input.PropertyID = strings.TrimSpace(input.PropertyID)
	input.Description = strings.TrimSpace(input.Description)
	if fields := forms.MustLookup("maintenance").Validate(input); len(fields) > 0 {
		return views.MaintenanceDetail{}, &ValidationError{Fields: fields}
	}

	scope, err := s.loader.Load(ctx, principal)
	if err != nil {
		return views.MaintenanceDetail{}, err
	}

	// an unknown or invisible property is a form error, not a 404
	if _, ok := scope.Store.Property(input.PropertyID); !ok || !scope.Caps.CanSee(input.PropertyID) {
		return views.MaintenanceDetail{}, &ValidationError{Fields: FieldErrors{"propertyId": {"Please select a property."}}}
	}

	request := views.ComposeSubmission(scope, views.Submission{PropertyID: input.PropertyID, Description: input.Description}, s.newID)
	created, err := s.loader.Source().CreateMaintenanceRequest(ctx, request)
	if err != nil {
		return views.MaintenanceDetail{}, sourceError("create maintenance request", err)
	}

	return views.ComposeMaintenanceDetail(scope, created), nil
}

func (s *service) AddActivity(ctx context.Context, principal *entity.Principal, id string, input ActivityInput) (views.MaintenanceDetail, error) {
	if !authenticated(principal) {
		return views.MaintenanceDetail{}, access.ErrUnauthenticated
	}

	input.Description = strings.TrimSpace(input.Description)
	if fields := forms.MustLookup("activity").Validate(input); len(fields) > 0 {
		return views.MaintenanceDetail{}, &ValidationError{Fields: fields}
	}

	scope, err := s.loader.Load(ctx, principal)
	if err != nil {
		return views.MaintenanceDetail{}, err
	}
	if _, err := visibleRequest(scope, id); err != nil {
		return views.MaintenanceDetail{}, err
	}

	updated, err := s.loader.Source().AppendMaintenanceActivity(ctx, id, entity.MaintenanceActivity{
		ID:          s.newID(),
		Timestamp:   scope.Now,
		Description: input.Description,
		AuthorID:    principal.ID,
	})
	if err != nil {
		return views.MaintenanceDetail{}, sourceError("append maintenance activity", err)
	}

	return views.ComposeMaintenanceDetail(scope, updated), nil
}

func (s *service) Update(ctx context.Context, principal *entity.Principal, id string, input UpdateInput) (views.MaintenanceDetail, error) {
	if !authenticated(principal) {
		return views.MaintenanceDetail{}, access.ErrUnauthenticated
	}
	if !principal.IsAdmin() {
		return views.MaintenanceDetail{}, ErrForbidden
	}

	input.Status = trimmed(input.Status)
	input.VendorID = trimmed(input.VendorID)
	if fields := forms.MustLookup("maintenance_update").Validate(input); len(fields) > 0 {
		return views.MaintenanceDetail{}, &ValidationError{Fields: fields}
	}

	scope, err := s.loader.Load(ctx, principal)
	if err != nil {
		return views.MaintenanceDetail{}, err
	}
	if _, err := visibleRequest(scope, id); err != nil {
		return views.MaintenanceDetail{}, err
	}

	update := dataset.MaintenanceUpdate{}
	var changes []string
	if input.Status != nil {
		status := entity.MaintenanceStatus(*input.Status)
		update.Status = &status
		changes = append(changes, fmt.Sprintf("Status changed to %s", status))
	}
	if input.VendorID != nil {
		vendor, ok := scope.Store.Vendor(*input.VendorID)
		if !ok {
			return views.MaintenanceDetail{}, &ValidationError{Fields: FieldErrors{"vendorId": {"Please select a vendor."}}}
		}
		update.AssignedVendorID = &vendor.ID
		changes = append(changes, fmt.Sprintf("Assigned to %s", vendor.Name))
	}
	update.Activity = entity.MaintenanceActivity{
		ID:          s.newID(),
		Timestamp:   scope.Now,
		Description: strings.Join(changes, "; "),
		AuthorID:    principal.ID,
	}

	updated, err := s.loader.Source().UpdateMaintenanceRequest(ctx, id, update)
	if err != nil {
		return views.MaintenanceDetail{}, sourceError("update maintenance request", err)
	}

	return views.ComposeMaintenanceDetail(scope, updated), nil
}

func (s *service) Vendors(ctx context.Context, principal *entity.Principal) (views.Vendors, error) {
	if !authenticated(principal) {
		return views.Vendors{}, access.ErrUnauthenticated
	}
	if !principal.IsAdmin() {
		return views.Vendors{}, ErrForbidden
	}

	scope, err := s.loader.Load(ctx, principal)
	if err != nil {
		return views.Vendors{}, err
	}
	return views.ComposeVendors(scope), nil
}

// visibleRequest hides requests on properties the principal cannot see behind ErrNotFound.
func visibleRequest(scope views.Scope, id string) (entity.MaintenanceRequest, error) {
	request, ok := scope.Store.MaintenanceRequest(strings.TrimSpace(id))
	if !ok || !scope.Caps.CanSee(request.PropertyID) {
		return entity.MaintenanceRequest{}, ErrNotFound
	}
	return request, nil
}

func sourceError(op string, err error) error {
	switch {
	case errors.Is(err, dataset.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return &workspace.UnavailableError{Op: op, Err: err}
	}
}

func authenticated(p *entity.Principal) bool {
	return p != nil && p.ID != ""
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
