package invite

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

// RoleClaim is the custom claim carrying the user's role on their ID tokens.
const RoleClaim = "role"

// AuthClient is the subset of the Firebase Admin auth client used for invitations.
type AuthClient interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
	PasswordResetLink(ctx context.Context, email string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
}

// FirebaseInviter creates a Firebase account, stamps the role claim and returns a set-password link.
type FirebaseInviter struct {
	client AuthClient
}

var _ Inviter = (*FirebaseInviter)(nil)

func NewFirebaseInviter(client AuthClient) *FirebaseInviter {
	if client == nil {
		panic("firebase auth client is required")
	}
	return &FirebaseInviter{client: client}
}

func (f *FirebaseInviter) Invite(ctx context.Context, inv Invitation) (Result, error) {
	params := (&auth.UserToCreate{}).
		Email(inv.Email).
		DisplayName(inv.Name).
		EmailVerified(false)

	record, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return Result{}, ErrAlreadyRegistered
		}
		return Result{}, fmt.Errorf("create firebase user: %w", err)
	}

	if err := f.client.SetCustomUserClaims(ctx, record.UID, map[string]interface{}{RoleClaim: string(inv.Role)}); err != nil {
		_ = f.client.DeleteUser(ctx, record.UID)
		return Result{}, fmt.Errorf("set role claim: %w", err)
	}

	link, err := f.client.PasswordResetLink(ctx, inv.Email)
	if err != nil {
		_ = f.client.DeleteUser(ctx, record.UID)
		return Result{}, fmt.Errorf("generate password link: %w", err)
	}

	return Result{UserID: record.UID, Link: link, Message: LinkMessage(inv.Email)}, nil
}

func (f *FirebaseInviter) Revoke(ctx context.Context, userID string) error {
	if err := f.client.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete firebase user: %w", err)
	}
	return nil
}
