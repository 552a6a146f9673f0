package bootstrap

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/proptrack/proptrack/platform/go/dataset"
	"github.com/proptrack/proptrack/platform/go/persistence"
)

// Notes/constraints:
// - Both subcommands are idempotent: DDL uses IF NOT EXISTS and seeding skips existing ids.
// - seed applies the schema first, so a fresh database only needs one command.

// Command groups database bootstrap helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Bootstrap the PropTrack database (schema, sample data)",
	}

	var databaseURL string
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string")
	_ = cmd.MarkPersistentFlagRequired("database-url")

	cmd.AddCommand(schemaCommand(&databaseURL))
	cmd.AddCommand(seedCommand(&databaseURL))
	return cmd
}

func schemaCommand(databaseURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the PropTrack tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), *databaseURL, func(ctx context.Context, pool *pgxpool.Pool) error {
				if err := persistence.ApplySchema(ctx, pool); err != nil {
					return fmt.Errorf("apply schema: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Schema applied.")
				return nil
			})
		},
	}
}

func seedCommand(databaseURL *string) *cobra.Command {
	var anchor string

	c := &cobra.Command{
		Use:   "seed",
		Short: "Load the sample dataset (users, properties, contracts, payments, requests, threads, notifications)",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().UTC()
			if anchor != "" {
				parsed, err := time.Parse(time.DateOnly, anchor)
				if err != nil {
					return fmt.Errorf("invalid --anchor date: %w", err)
				}
				now = parsed
			}

			return withPool(cmd.Context(), *databaseURL, func(ctx context.Context, pool *pgxpool.Pool) error {
				if err := persistence.ApplySchema(ctx, pool); err != nil {
					return fmt.Errorf("apply schema: %w", err)
				}

				res, err := persistence.Seed(ctx, pool, dataset.Fixture(now))
				if err != nil {
					return err
				}

				tables := make([]string, 0, len(res))
				for table := range res {
					tables = append(tables, table)
				}
				sort.Strings(tables)
				for _, table := range tables {
					fmt.Fprintf(cmd.OutOrStdout(), "%-24s %d\n", table, res[table])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seed complete. %d rows inserted.\n", res.Total())
				return nil
			})
		},
	}

	c.Flags().StringVar(&anchor, "anchor", "", "date (YYYY-MM-DD) payment due dates are relative to; defaults to today")
	return c
}

func withPool(ctx context.Context, databaseURL string, fn func(context.Context, *pgxpool.Pool) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
	if err != nil {
		return fmt.Errorf("init pool: %w", err)
	}
	defer persistence.ClosePool(pool)

	return fn(ctx, pool)
}
