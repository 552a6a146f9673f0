package users

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	usersrepo "github.com/proptrack/proptrack/domains/users/be/repo"
	usersservice "github.com/proptrack/proptrack/domains/users/be/service"
	"github.com/proptrack/proptrack/platform/go/entity"
	"github.com/proptrack/proptrack/platform/go/gcp"
	"github.com/proptrack/proptrack/platform/go/invite"
	"github.com/proptrack/proptrack/platform/go/persistence"
	"github.com/proptrack/proptrack/platform/go/workspace"
)

type options struct {
	databaseURL       string
	actorID           string
	authProvider      string
	firebaseProjectID string
	firebaseCredsFile string
}

// Command groups user management helpers. Every action runs as an administrator identified by --as.
func Command() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage PropTrack users",
	}

	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection string")
	cmd.PersistentFlags().StringVar(&opts.actorID, "as", "1", "id of the administrator performing the action")
	cmd.PersistentFlags().StringVar(&opts.authProvider, "auth-provider", "dev", "identity provider for invitations (dev or firebase)")
	cmd.PersistentFlags().StringVar(&opts.firebaseProjectID, "firebase-project-id", "", "Firebase project id (firebase provider)")
	cmd.PersistentFlags().StringVar(&opts.firebaseCredsFile, "firebase-credentials-file", "", "service account JSON (firebase provider)")
	_ = cmd.MarkPersistentFlagRequired("database-url")

	cmd.AddCommand(inviteCommand(&opts))
	cmd.AddCommand(listCommand(&opts))
	return cmd
}

func inviteCommand(opts *options) *cobra.Command {
	var input usersservice.InviteInput

	c := &cobra.Command{
		Use:   "invite",
		Short: "Invite a user and record them in the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), opts, func(ctx context.Context, svc usersservice.Service, actor *entity.Principal) error {
				res, err := svc.Invite(ctx, actor, input)
				if err != nil {
					var validationErr *usersservice.ValidationError
					if errors.As(err, &validationErr) {
						for field, msgs := range validationErr.Fields {
							for _, msg := range msgs {
								fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, msg)
							}
						}
					}
					return fmt.Errorf("invite user: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", res.Message, res.UserID)
				if res.Link != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Password setup link: %s\n", res.Link)
				}
				return nil
			})
		},
	}

	c.Flags().StringVar(&input.Name, "name", "", "full name")
	c.Flags().StringVar(&input.Email, "email", "", "email address")
	c.Flags().StringVar(&input.Role, "role", string(entity.RoleUser), "role (Admin or User)")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("email")
	return c
}

func listCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the user directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), opts, func(ctx context.Context, svc usersservice.Service, actor *entity.Principal) error {
				dir, err := svc.List(ctx, actor)
				if err != nil {
					return fmt.Errorf("list users: %w", err)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
				for _, u := range dir.Users.Items {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
				}
				if len(dir.Users.Items) == 0 {
					fmt.Fprintln(tw, dir.Users.EmptyMessage)
				}
				return tw.Flush()
			})
		},
	}
}

func withService(ctx context.Context, opts *options, fn func(context.Context, usersservice.Service, *entity.Principal) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	inviter, err := newInviter(ctx, opts)
	if err != nil {
		return err
	}

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: opts.databaseURL})
	if err != nil {
		return fmt.Errorf("init pool: %w", err)
	}
	defer persistence.ClosePool(pool)

	source, err := persistence.NewPostgresSource(pool)
	if err != nil {
		return fmt.Errorf("init postgres source: %w", err)
	}

	svc := usersservice.New(workspace.New(source, nil, nil), usersrepo.NewSourceRepository(source), inviter)
	actor := &entity.Principal{ID: opts.actorID, Role: entity.RoleAdmin}
	return fn(ctx, svc, actor)
}

func newInviter(ctx context.Context, opts *options) (invite.Inviter, error) {
	switch opts.authProvider {
	case "dev":
		return invite.NewDevInviter(), nil
	case "firebase":
		_, fbAuth, err := gcp.InitFirebaseAuth(ctx, opts.firebaseCredsFile, opts.firebaseProjectID)
		if err != nil {
			return nil, fmt.Errorf("init firebase auth: %w", err)
		}
		return invite.NewFirebaseInviter(fbAuth), nil
	default:
		return nil, fmt.Errorf("unsupported auth provider %q (use dev or firebase)", opts.authProvider)
	}
}
