package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mtxos/opsboard/internal/domain/activity"
)

// ActivityRepository implements activity.Repository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log inserts a new activity entry
func (r *ActivityRepository) Log(ctx context.Context, workspaceID string, entry *activity.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	metadata, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode activity metadata: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_log (
			workspace_id, actor_id, action, entity_type, entity_id, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		workspaceID,
		entry.ActorID,
		string(entry.Action),
		entry.EntityType,
		entry.EntityID,
		metadata,
		createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		entry.ID = id
	}

	entry.WorkspaceID = workspaceID
	entry.CreatedAt = createdAt.UTC()

	return nil
}

type activityRow struct {
	ID          int64     `db:"id"`
	WorkspaceID string    `db:"workspace_id"`
	ActorID     string    `db:"actor_id"`
	Action      string    `db:"action"`
	EntityType  string    `db:"entity_type"`
	EntityID    string    `db:"entity_id"`
	Metadata    string    `db:"metadata"`
	CreatedAt   time.Time `db:"created_at"`
}

// List returns activity entries matching the given filters, newest first
func (r *ActivityRepository) List(ctx context.Context, workspaceID string, opts activity.ListOptions) ([]activity.Entry, error) {
	query := `
		SELECT id, workspace_id, actor_id, action, entity_type, entity_id, metadata, created_at
		FROM activity_log
		WHERE workspace_id = ?
	`
	args := []any{workspaceID}
	var conditions []string

	if opts.EntityType != "" {
		conditions = append(conditions, "entity_type = ?")
		args = append(args, opts.EntityType)
	}
	if opts.EntityID != "" {
		conditions = append(conditions, "entity_id = ?")
		args = append(args, opts.EntityID)
	}
	if opts.Action != nil {
		conditions = append(conditions, "action = ?")
		args = append(args, string(*opts.Action))
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC, id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		if opts.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	var rows []activityRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	entries := make([]activity.Entry, 0, len(rows))
	for _, row := range rows {
		metadata, err := unmarshalMetadata(row.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to decode activity metadata: %w", err)
		}
		entries = append(entries, activity.Entry{
			ID:          row.ID,
			WorkspaceID: row.WorkspaceID,
			ActorID:     row.ActorID,
			Action:      activity.Action(row.Action),
			EntityType:  row.EntityType,
			EntityID:    row.EntityID,
			Metadata:    metadata,
			CreatedAt:   row.CreatedAt.UTC(),
		})
	}
	return entries, nil
}
