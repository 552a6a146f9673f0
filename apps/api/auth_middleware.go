package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	platformauth "github.com/proptrack/proptrack/platform/go/auth"
	"github.com/proptrack/proptrack/platform/go/gcp"
	"github.com/proptrack/proptrack/platform/go/invite"
)

// buildAuthMiddleware constructs the JWT middleware and the matching inviter. Firebase mode verifies
// ID tokens and creates invited accounts with the Admin SDK; dev mode accepts unsigned tokens and
// records invitations locally.
func buildAuthMiddleware(ctx context.Context, cfg config, logger *zap.Logger) (func(http.Handler) http.Handler, invite.Inviter, error) {
	switch cfg.AuthProvider {
	case "firebase":
		_, fbAuth, err := gcp.InitFirebaseAuth(ctx, cfg.FirebaseCredsFile, cfg.FirebaseProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("init firebase auth: %w", err)
		}
		verify := platformauth.FirebaseTokenVerifier(fbAuth)
		return platformauth.JWT(verify, platformauth.DefaultCredentialExtractor), invite.NewFirebaseInviter(fbAuth), nil
	case "dev":
		logger.Warn("using dev auth middleware; do not use in production")
		return platformauth.JWT(platformauth.UnsignedTokenVerifier(), platformauth.DefaultCredentialExtractor), invite.NewDevInviter(), nil
	default:
		return nil, nil, fmt.Errorf("unsupported AUTH_PROVIDER %q (use firebase or dev)", cfg.AuthProvider)
	}
}
