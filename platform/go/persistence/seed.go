package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/proptrack/proptrack/platform/go/dataset"
)

// SeedResult counts rows written per table; rows that already existed are skipped.
type SeedResult map[string]int64

// Total sums the inserted rows across tables.
func (r SeedResult) Total() int64 {
	var total int64
	for _, n := range r {
		total += n
	}
	return total
}

// Seed writes snap into the database in one transaction. Existing ids are left untouched so the
// command can be re-run safely.
func Seed(ctx context.Context, pool *pgxpool.Pool, snap dataset.Snapshot) (SeedResult, error) {
	if pool == nil {
		return nil, fmt.Errorf("seed: pool is required")
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("seed: invalid dataset: %w", err)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	result := SeedResult{}
	insert := func(table string, columns []string, rows [][]any) error {
		if len(rows) == 0 {
			return nil
		}
		builder := psql.Insert(table).Columns(columns...).Suffix("ON CONFLICT DO NOTHING")
		for _, row := range rows {
			builder = builder.Values(row...)
		}
		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("build seed %s: %w", table, err)
		}
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("seed %s: %w", table, err)
		}
		result[table] = tag.RowsAffected()
		return nil
	}

	var users, properties, contracts, payments, vendors, requests, activities, comms, messages, notifications [][]any
	for _, u := range snap.Users {
		users = append(users, []any{u.ID, u.Name, u.Email, u.AvatarRef, string(u.Role)})
	}
	for _, p := range snap.Properties {
		properties = append(properties, []any{p.ID, p.Name, p.Address, p.ImageRef, p.OwnerID})
	}
	for _, c := range snap.Contracts {
		contracts = append(contracts, []any{c.ID, c.PropertyID, c.LandlordID, c.TenantID, c.StartDate, c.EndDate, string(c.Status), c.RentAmount})
	}
	for _, p := range snap.Payments {
		payments = append(payments, []any{p.ID, p.ContractID, p.PropertyID, p.Amount, p.DueDate, p.PaidDate})
	}
	for _, v := range snap.Vendors {
		vendors = append(vendors, []any{v.ID, v.Name, v.ContactEmail, v.Specialty})
	}
	for _, r := range snap.MaintenanceRequests {
		requests = append(requests, []any{r.ID, r.PropertyID, r.Description, string(r.Status), r.SubmittedDate, string(r.InitiatedBy), r.AssignedVendorID})
		for _, a := range r.ActivityLog {
			activities = append(activities, []any{a.ID, r.ID, a.Timestamp, a.Description, a.AuthorID})
		}
	}
	for _, c := range snap.Communications {
		comms = append(comms, []any{c.ID, c.PropertyID, c.Users})
		for _, m := range c.Messages {
			messages = append(messages, []any{m.ID, c.ID, m.UserID, m.Text, m.Timestamp})
		}
	}
	for _, n := range snap.Notifications {
		notifications = append(notifications, []any{n.ID, n.Title, n.Description, n.Read, n.CreatedAt})
	}

	steps := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{UsersTable, userColumns, users},
		{PropertiesTable, propertyColumns, properties},
		{ContractsTable, contractColumns, contracts},
		{PaymentsTable, paymentColumns, payments},
		{VendorsTable, vendorColumns, vendors},
		{MaintenanceRequestsTable, requestColumns, requests},
		{MaintenanceActivitiesTable, activityColumns, activities},
		{CommunicationsTable, communicationColumn, comms},
		{MessagesTable, messageColumns, messages},
		{NotificationsTable, notificationColumns, notifications},
	}
	for _, step := range steps {
		if err := insert(step.table, step.columns, step.rows); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit seed: %w", err)
	}
	return result, nil
}
