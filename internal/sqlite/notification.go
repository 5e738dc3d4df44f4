package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/repository"
)

// NotificationRepository implements notification.Repository for SQLite
type NotificationRepository struct {
	db *DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `
	id, workspace_id, type, status, entity_type, entity_id, title, message,
	due_at, dedupe_key, metadata, snoozed_until, handled_at, handled_by_id,
	created_at, updated_at`

type notificationRow struct {
	ID           string         `db:"id"`
	WorkspaceID  string         `db:"workspace_id"`
	Type         string         `db:"type"`
	Status       string         `db:"status"`
	EntityType   string         `db:"entity_type"`
	EntityID     string         `db:"entity_id"`
	Title        string         `db:"title"`
	Message      string         `db:"message"`
	DueAt        sql.NullTime   `db:"due_at"`
	DedupeKey    string         `db:"dedupe_key"`
	Metadata     string         `db:"metadata"`
	SnoozedUntil sql.NullTime   `db:"snoozed_until"`
	HandledAt    sql.NullTime   `db:"handled_at"`
	HandledByID  sql.NullString `db:"handled_by_id"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (row notificationRow) toDomain() (notification.Notification, error) {
	metadata, err := unmarshalMetadata(row.Metadata)
	if err != nil {
		return notification.Notification{}, fmt.Errorf("failed to decode metadata for %s: %w", row.ID, err)
	}
	n := notification.Notification{
		ID:           row.ID,
		WorkspaceID:  row.WorkspaceID,
		Type:         notification.Type(row.Type),
		Status:       notification.Status(row.Status),
		EntityType:   row.EntityType,
		EntityID:     row.EntityID,
		Title:        row.Title,
		Message:      row.Message,
		DueAt:        nullTimePtr(row.DueAt),
		DedupeKey:    row.DedupeKey,
		Metadata:     metadata,
		SnoozedUntil: nullTimePtr(row.SnoozedUntil),
		HandledAt:    nullTimePtr(row.HandledAt),
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	if row.HandledByID.Valid {
		id := row.HandledByID.String
		n.HandledByID = &id
	}
	return n, nil
}

// Get retrieves a notification by ID within the workspace
func (r *NotificationRepository) Get(ctx context.Context, workspaceID, id string) (*notification.Notification, error) {
	var row notificationRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ? AND workspace_id = ?`, id, workspaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	n, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &n, nil
}

const statusRank = "CASE status WHEN 'OPEN' THEN 0 WHEN 'SNOOZED' THEN 1 ELSE 2 END"

// List returns notifications ordered by status, due date, then newest first
func (r *NotificationRepository) List(ctx context.Context, workspaceID string, opts notification.ListOptions) ([]notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE workspace_id = ?`
	args := []any{workspaceID}
	var conditions []string

	if opts.Type != nil {
		conditions = append(conditions, "type = ?")
		args = append(args, string(*opts.Type))
	}
	if opts.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*opts.Status))
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	// Open before snoozed before handled; NULL due dates sort last.
	query += " ORDER BY " + statusRank + ", due_at IS NULL, due_at ASC, created_at DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	var rows []notificationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	list := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		n, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, nil
}

// Update persists the inbox state of a notification
func (r *NotificationRepository) Update(ctx context.Context, workspaceID string, n *notification.Notification) error {
	var handledBy any
	if n.HandledByID != nil {
		handledBy = *n.HandledByID
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET status = ?, snoozed_until = ?, handled_at = ?, handled_by_id = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ?
	`,
		string(n.Status), utcPtr(n.SnoozedUntil), utcPtr(n.HandledAt), handledBy, n.UpdatedAt.UTC(),
		n.ID, workspaceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
