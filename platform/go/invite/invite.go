package invite

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/proptrack/proptrack/platform/go/entity"
)

// ErrAlreadyRegistered indicates the email already has an account with the identity provider.
var ErrAlreadyRegistered = errors.New("email already registered")

// Invitation is a validated request to onboard a new user.
type Invitation struct {
	Name  string
	Email string
	Role  entity.Role
}

// Result describes a completed invitation.
type Result struct {
	// UserID is the identity provider's id for the new account; it becomes the stored user id.
	UserID string
	// Link lets the invitee set a password. Empty in dev mode.
	Link    string
	Message string
}

// Inviter creates accounts with the identity provider.
type Inviter interface {
	Invite(ctx context.Context, inv Invitation) (Result, error)
	// Revoke removes an account created by Invite when the invitation cannot be completed.
	Revoke(ctx context.Context, userID string) error
}

// LinkMessage is the confirmation shown when the identity provider only generates the setup link;
// the admin has to deliver it.
func LinkMessage(email string) string {
	return fmt.Sprintf("Invitation created for %s. Share the password setup link with them.", email)
}

// DevInviter accepts every invitation without contacting an identity provider.
type DevInviter struct{}

var _ Inviter = DevInviter{}

func NewDevInviter() DevInviter { return DevInviter{} }

func (DevInviter) Invite(ctx context.Context, inv Invitation) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{
		UserID:  uuid.NewString(),
		Message: fmt.Sprintf("DEV MODE: Invitation sent to %s.", inv.Email),
	}, nil
}

func (DevInviter) Revoke(ctx context.Context, userID string) error { return nil }
