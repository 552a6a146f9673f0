package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/proptrack/proptrack/platform/go/dataset"
	"github.com/proptrack/proptrack/platform/go/entity"
)

const (
	UsersTable                 = "users"
	PropertiesTable            = "properties"
	ContractsTable             = "contracts"
	PaymentsTable              = "payments"
	VendorsTable               = "vendors"
	MaintenanceRequestsTable   = "maintenance_requests"
	MaintenanceActivitiesTable = "maintenance_activities"
	CommunicationsTable        = "communications"
	MessagesTable              = "messages"
	NotificationsTable         = "notifications"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var (
	userColumns         = []string{"user_id", "name", "email", "avatar_ref", "role"}
	propertyColumns     = []string{"property_id", "name", "address", "image_ref", "owner_id"}
	contractColumns     = []string{"contract_id", "property_id", "landlord_id", "tenant_id", "start_date", "end_date", "status", "rent_amount"}
	paymentColumns      = []string{"payment_id", "contract_id", "property_id", "amount", "due_date", "paid_date"}
	vendorColumns       = []string{"vendor_id", "name", "contact_email", "specialty"}
	requestColumns      = []string{"request_id", "property_id", "description", "status", "submitted_at", "initiated_by", "assigned_vendor_id"}
	activityColumns     = []string{"activity_id", "request_id", "occurred_at", "description", "author_id"}
	communicationColumn = []string{"communication_id", "property_id", "participant_ids"}
	messageColumns      = []string{"message_id", "communication_id", "user_id", "body", "sent_at"}
	notificationColumns = []string{"notification_id", "title", "description", "is_read", "created_at"}
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresSource serves the dataset from Postgres. Rows come back in insertion order so the
// "all payments" and thread lists match what was seeded.
type PostgresSource struct {
	pool *pgxpool.Pool
}

var _ dataset.Source = (*PostgresSource)(nil)

func NewPostgresSource(pool *pgxpool.Pool) (*PostgresSource, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &PostgresSource{pool: pool}, nil
}

// Snapshot reads every collection inside one repeatable-read, read-only transaction.
func (s *PostgresSource) Snapshot(ctx context.Context) (dataset.Snapshot, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return dataset.Snapshot{}, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var snap dataset.Snapshot

	if snap.Users, err = collect(ctx, tx, psql.Select(userColumns...).From(UsersTable).OrderBy("seq"), scanUser); err != nil {
		return dataset.Snapshot{}, fmt.Errorf("load users: %w", err)
	}
	if snap.Properties, err = collect(ctx, tx, psql.Select(propertyColumns...).From(PropertiesTable).OrderBy("seq"), scanProperty); err != nil {
		return dataset.Snapshot{}, fmt.Errorf("load properties: %w", err)
	}
	if snap.Contracts, err = collect(ctx, tx, psql.Select(contractColumns...).From(ContractsTable).OrderBy("seq"), scanContract); err != nil {
		return dataset.Snapshot{}, fmt.Errorf("load contracts: %w", err)
	}
	if snap.Payments, err = collect(ctx, tx, psql.Select(paymentColumns...).From(PaymentsTable).OrderBy("seq"), scanPayment); err != nil {
		return dataset.Snapshot{}, fmt.Errorf("load payments: %w", err)
	}
	if snap.Vendors, err = collect(ctx, tx, psql.Select(vendorColumns...).From(VendorsTable).OrderBy("seq"), scanVendor); err != nil {
		return dataset.Snapshot{}, fmt.Errorf("load vendors: %w", err)
	}
	if snap.MaintenanceRequests, err = loadRequests(ctx, tx, nil); err != nil {
		return dataset.Snapshot{}, err
	}
	if snap.Communications, err = loadCommunications(ctx, tx); err != nil {
		return dataset.Snapshot{}, err
	}
	if snap.Notifications, err = collect(ctx, tx, psql.Select(notificationColumns...).From(NotificationsTable).OrderBy("seq"), scanNotification); err != nil {
		return dataset.Snapshot{}, fmt.Errorf("load notifications: %w", err)
	}

	return snap, nil
}

func (s *PostgresSource) ListUsers(ctx context.Context) ([]entity.User, error) {
	users, err := collect(ctx, s.pool, psql.Select(userColumns...).From(UsersTable).OrderBy("seq"), scanUser)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *PostgresSource) CreateUser(ctx context.Context, user entity.User) (entity.User, error) {
	query, args, err := psql.Insert(UsersTable).
		Columns(userColumns...).
		Values(user.ID, strings.TrimSpace(user.Name), strings.TrimSpace(user.Email), user.AvatarRef, string(user.Role)).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return entity.User{}, fmt.Errorf("build insert user: %w", err)
	}

	created, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return entity.User{}, dataset.ErrConflict
		}
		return entity.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (s *PostgresSource) CreateMaintenanceRequest(ctx context.Context, request entity.MaintenanceRequest) (entity.MaintenanceRequest, error) {
	var created entity.MaintenanceRequest
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		query, args, err := psql.Insert(MaintenanceRequestsTable).
			Columns(requestColumns...).
			Values(request.ID, request.PropertyID, request.Description, string(request.Status),
				request.SubmittedDate, string(request.InitiatedBy), request.AssignedVendorID).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert request: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return dataset.ErrConflict
			}
			return fmt.Errorf("insert request: %w", err)
		}

		for _, activity := range request.ActivityLog {
			if err := insertActivity(ctx, tx, request.ID, activity); err != nil {
				return err
			}
		}

		created, err = loadRequest(ctx, tx, request.ID)
		return err
	})
	return created, err
}

func (s *PostgresSource) AppendMaintenanceActivity(ctx context.Context, requestID string, activity entity.MaintenanceActivity) (entity.MaintenanceRequest, error) {
	var updated entity.MaintenanceRequest
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockRequest(ctx, tx, requestID); err != nil {
			return err
		}
		if err := insertActivity(ctx, tx, requestID, activity); err != nil {
			return err
		}

		var err error
		updated, err = loadRequest(ctx, tx, requestID)
		return err
	})
	return updated, err
}

func (s *PostgresSource) UpdateMaintenanceRequest(ctx context.Context, requestID string, update dataset.MaintenanceUpdate) (entity.MaintenanceRequest, error) {
	var updated entity.MaintenanceRequest
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockRequest(ctx, tx, requestID); err != nil {
			return err
		}

		set := map[string]any{}
		if update.Status != nil {
			set["status"] = string(*update.Status)
		}
		if update.AssignedVendorID != nil {
			set["assigned_vendor_id"] = *update.AssignedVendorID
		}
		if len(set) > 0 {
			query, args, err := psql.Update(MaintenanceRequestsTable).
				SetMap(set).
				Where(squirrel.Eq{"request_id": requestID}).
				ToSql()
			if err != nil {
				return fmt.Errorf("build update request: %w", err)
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return fmt.Errorf("update request: %w", err)
			}
		}

		if update.Activity.ID != "" {
			if err := insertActivity(ctx, tx, requestID, update.Activity); err != nil {
				return err
			}
		}

		var err error
		updated, err = loadRequest(ctx, tx, requestID)
		return err
	})
	return updated, err
}

func (s *PostgresSource) MarkNotificationRead(ctx context.Context, notificationID string) (entity.Notification, error) {
	query, args, err := psql.Update(NotificationsTable).
		Set("is_read", true).
		Where(squirrel.Eq{"notification_id": notificationID}).
		Suffix("RETURNING " + strings.Join(notificationColumns, ", ")).
		ToSql()
	if err != nil {
		return entity.Notification{}, fmt.Errorf("build mark read: %w", err)
	}

	n, err := scanNotification(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Notification{}, dataset.ErrNotFound
		}
		return entity.Notification{}, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

func (s *PostgresSource) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresSource) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func lockRequest(ctx context.Context, q querier, requestID string) error {
	query, args, err := psql.Select("request_id").
		From(MaintenanceRequestsTable).
		Where(squirrel.Eq{"request_id": requestID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lock request: %w", err)
	}

	var id string
	if err := q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dataset.ErrNotFound
		}
		return fmt.Errorf("lock request: %w", err)
	}
	return nil
}

func insertActivity(ctx context.Context, q querier, requestID string, activity entity.MaintenanceActivity) error {
	query, args, err := psql.Insert(MaintenanceActivitiesTable).
		Columns(activityColumns...).
		Values(activity.ID, requestID, activity.Timestamp, activity.Description, activity.AuthorID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert activity: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return dataset.ErrConflict
		}
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func loadRequest(ctx context.Context, q querier, requestID string) (entity.MaintenanceRequest, error) {
	requests, err := loadRequests(ctx, q, squirrel.Eq{"request_id": requestID})
	if err != nil {
		return entity.MaintenanceRequest{}, err
	}
	if len(requests) == 0 {
		return entity.MaintenanceRequest{}, dataset.ErrNotFound
	}
	return requests[0], nil
}

// loadRequests returns requests (optionally filtered) with their activity logs attached in
// insertion order.
func loadRequests(ctx context.Context, q querier, filter squirrel.Sqlizer) ([]entity.MaintenanceRequest, error) {
	reqQuery := psql.Select(requestColumns...).From(MaintenanceRequestsTable).OrderBy("seq")
	actQuery := psql.Select(activityColumns...).From(MaintenanceActivitiesTable).OrderBy("seq")
	if filter != nil {
		reqQuery = reqQuery.Where(filter)
		actQuery = actQuery.Where(filter)
	}

	requests, err := collect(ctx, q, reqQuery, scanRequest)
	if err != nil {
		return nil, fmt.Errorf("load maintenance requests: %w", err)
	}

	type ownedActivity struct {
		requestID string
		activity  entity.MaintenanceActivity
	}
	activities, err := collect(ctx, q, actQuery, func(row pgx.Row) (ownedActivity, error) {
		var (
			out ownedActivity
			ts  time.Time
		)
		if err := row.Scan(&out.activity.ID, &out.requestID, &ts, &out.activity.Description, &out.activity.AuthorID); err != nil {
			return ownedActivity{}, err
		}
		out.activity.Timestamp = ts.UTC()
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load maintenance activities: %w", err)
	}

	byRequest := make(map[string][]entity.MaintenanceActivity, len(requests))
	for _, a := range activities {
		byRequest[a.requestID] = append(byRequest[a.requestID], a.activity)
	}
	for i := range requests {
		requests[i].ActivityLog = byRequest[requests[i].ID]
	}
	return requests, nil
}

func loadCommunications(ctx context.Context, q querier) ([]entity.Communication, error) {
	comms, err := collect(ctx, q, psql.Select(communicationColumn...).From(CommunicationsTable).OrderBy("seq"), scanCommunication)
	if err != nil {
		return nil, fmt.Errorf("load communications: %w", err)
	}

	type ownedMessage struct {
		threadID string
		message  entity.Message
	}
	messages, err := collect(ctx, q, psql.Select(messageColumns...).From(MessagesTable).OrderBy("seq"), func(row pgx.Row) (ownedMessage, error) {
		var (
			out ownedMessage
			ts  time.Time
		)
		if err := row.Scan(&out.message.ID, &out.threadID, &out.message.UserID, &out.message.Text, &ts); err != nil {
			return ownedMessage{}, err
		}
		out.message.Timestamp = ts.UTC()
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	byThread := make(map[string][]entity.Message, len(comms))
	for _, m := range messages {
		byThread[m.threadID] = append(byThread[m.threadID], m.message)
	}
	for i := range comms {
		comms[i].Messages = byThread[comms[i].ID]
	}
	return comms, nil
}

func collect[T any](ctx context.Context, q querier, builder squirrel.SelectBuilder, scan func(pgx.Row) (T, error)) ([]T, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, scanErr := scan(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan: %w", scanErr)
		}
		out = append(out, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanUser(row pgx.Row) (entity.User, error) {
	var (
		u    entity.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.AvatarRef, &role); err != nil {
		return entity.User{}, err
	}
	u.Role = entity.Role(role)
	return u, nil
}

func scanProperty(row pgx.Row) (entity.Property, error) {
	var p entity.Property
	if err := row.Scan(&p.ID, &p.Name, &p.Address, &p.ImageRef, &p.OwnerID); err != nil {
		return entity.Property{}, err
	}
	return p, nil
}

func scanContract(row pgx.Row) (entity.Contract, error) {
	var (
		c      entity.Contract
		status string
	)
	if err := row.Scan(&c.ID, &c.PropertyID, &c.LandlordID, &c.TenantID, &c.StartDate, &c.EndDate, &status, &c.RentAmount); err != nil {
		return entity.Contract{}, err
	}
	c.Status = entity.ContractStatus(status)
	c.StartDate = c.StartDate.UTC()
	c.EndDate = c.EndDate.UTC()
	return c, nil
}

func scanPayment(row pgx.Row) (entity.Payment, error) {
	var p entity.Payment
	if err := row.Scan(&p.ID, &p.ContractID, &p.PropertyID, &p.Amount, &p.DueDate, &p.PaidDate); err != nil {
		return entity.Payment{}, err
	}
	p.DueDate = p.DueDate.UTC()
	if p.PaidDate != nil {
		paid := p.PaidDate.UTC()
		p.PaidDate = &paid
	}
	return p, nil
}

func scanVendor(row pgx.Row) (entity.Vendor, error) {
	var v entity.Vendor
	if err := row.Scan(&v.ID, &v.Name, &v.ContactEmail, &v.Specialty); err != nil {
		return entity.Vendor{}, err
	}
	return v, nil
}

func scanRequest(row pgx.Row) (entity.MaintenanceRequest, error) {
	var (
		r                 entity.MaintenanceRequest
		status, initiator string
	)
	if err := row.Scan(&r.ID, &r.PropertyID, &r.Description, &status, &r.SubmittedDate, &initiator, &r.AssignedVendorID); err != nil {
		return entity.MaintenanceRequest{}, err
	}
	r.Status = entity.MaintenanceStatus(status)
	r.InitiatedBy = entity.Initiator(initiator)
	r.SubmittedDate = r.SubmittedDate.UTC()
	return r, nil
}

func scanCommunication(row pgx.Row) (entity.Communication, error) {
	var c entity.Communication
	if err := row.Scan(&c.ID, &c.PropertyID, &c.Users); err != nil {
		return entity.Communication{}, err
	}
	return c, nil
}

func scanNotification(row pgx.Row) (entity.Notification, error) {
	var n entity.Notification
	if err := row.Scan(&n.ID, &n.Title, &n.Description, &n.Read, &n.CreatedAt); err != nil {
		return entity.Notification{}, err
	}
	n.CreatedAt = n.CreatedAt.UTC()
	return n, nil
}
