package service

import (
	"context"
	"errors"
	"strings"

	"github.com/proptrack/proptrack/domains/users/be/repo"
	"github.com/proptrack/proptrack/platform/go/access"
	"github.com/proptrack/proptrack/platform/go/dataset"
	"github.com/proptrack/proptrack/platform/go/entity"
	"github.com/proptrack/proptrack/platform/go/forms"
	"github.com/proptrack/proptrack/platform/go/invite"
	"github.com/proptrack/proptrack/platform/go/views"
	"github.com/proptrack/proptrack/platform/go/workspace"
)

// FieldErrors maps request fields to validation issues.
type FieldErrors map[string][]string

// ValidationError is returned when the input payload is invalid.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// Domain sentinel errors.
var (
	ErrForbidden = errors.New("admin privileges are required")
	ErrConflict  = errors.New("user conflict")
)

// ForbiddenMessage is returned to non-admins attempting an admin-only write.
const ForbiddenMessage = "Admin privileges are required."

// InviteInput is the invite form.
type InviteInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// InviteResult is the outcome shown to the inviting admin.
type InviteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
	// Link is the password setup link the admin must forward; empty when the provider emails it.
	Link string `json:"link,omitempty"`
}

// Service defines the business operations for the users domain.
type Service interface {
	Me(ctx context.Context, principal *entity.Principal) (views.Me, error)
	// List returns the user directory. When the backend fails it returns the degraded directory
	// together with the error so callers can still render it.
	List(ctx context.Context, principal *entity.Principal) (views.UserDirectory, error)
	// Invite is admin-only. Non-admin and invalid requests fail before the invite backend is called.
	Invite(ctx context.Context, principal *entity.Principal, input InviteInput) (InviteResult, error)
}

type service struct {
	loader  *workspace.Loader
	repo    repo.Repository
	inviter invite.Inviter
}

// New constructs a users Service instance backed by the provided repository and inviter.
func New(loader *workspace.Loader, r repo.Repository, inviter invite.Inviter) Service {
	if loader == nil {
		panic("workspace loader is required")
	}
	if r == nil {
		panic("users repository is required")
	}
	if inviter == nil {
		panic("inviter is required")
	}
	return &service{loader: loader, repo: r, inviter: inviter}
}

func (s *service) Me(ctx context.Context, principal *entity.Principal) (views.Me, error) {
	scope, err := s.loader.Load(ctx, principal)
	if err != nil {
		return views.Me{}, err
	}
	return views.ComposeMe(scope), nil
}

func (s *service) List(ctx context.Context, principal *entity.Principal) (views.UserDirectory, error) {
	if principal == nil || principal.ID == "" {
		return views.UserDirectory{}, access.ErrUnauthenticated
	}
	if !principal.IsAdmin() {
		return views.UserDirectory{}, ErrForbidden
	}

	scope, err := s.loader.Load(ctx, principal)
	if err != nil {
		return views.DegradedUserDirectory(), err
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return views.DegradedUserDirectory(), unavailable("list users", err)
	}

	return views.ComposeUserDirectory(scope, users), nil
}

func (s *service) Invite(ctx context.Context, principal *entity.Principal, input InviteInput) (InviteResult, error) {
	if principal == nil || principal.ID == "" {
		return InviteResult{}, access.ErrUnauthenticated
	}
	if !principal.IsAdmin() {
		return InviteResult{Success: false, Message: ForbiddenMessage}, ErrForbidden
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Role = strings.TrimSpace(input.Role)
	if fields := forms.MustLookup("invite").Validate(input); len(fields) > 0 {
		return InviteResult{}, &ValidationError{Fields: fields}
	}

	invitation := invite.Invitation{Name: input.Name, Email: strings.ToLower(input.Email), Role: entity.Role(input.Role)}
	res, err := s.inviter.Invite(ctx, invitation)
	if err != nil {
		if errors.Is(err, invite.ErrAlreadyRegistered) {
			return InviteResult{}, ErrConflict
		}
		return InviteResult{}, unavailable("invite user", err)
	}

	_, err = s.repo.Create(ctx, entity.User{
		ID:    res.UserID,
		Name:  invitation.Name,
		Email: invitation.Email,
		Role:  invitation.Role,
	})
	if err != nil {
		// the account must not outlive a failed invitation
		if revokeErr := s.inviter.Revoke(context.WithoutCancel(ctx), res.UserID); revokeErr != nil {
			err = errors.Join(err, revokeErr)
		}
		if errors.Is(err, dataset.ErrConflict) {
			return InviteResult{}, ErrConflict
		}
		return InviteResult{}, unavailable("store invited user", err)
	}

	return InviteResult{Success: true, Message: res.Message, UserID: res.UserID, Link: res.Link}, nil
}

func unavailable(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &workspace.UnavailableError{Op: op, Err: err}
}
