package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/domain/reminder"
)

// ReminderRepository implements reminder.Repository for SQLite
type ReminderRepository struct {
	db *DB
}

// NewReminderRepository creates a new ReminderRepository
func NewReminderRepository(db *DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// ListWorkspaceIDs returns every workspace ID.
func (r *ReminderRepository) ListWorkspaceIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM workspaces ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return ids, nil
}

type renewalRow struct {
	ID            string         `db:"id"`
	WorkspaceID   string         `db:"workspace_id"`
	ClientID      string         `db:"client_id"`
	ClientName    string         `db:"client_name"`
	Name          string         `db:"name"`
	Provider      string         `db:"provider"`
	RenewalDate   time.Time      `db:"renewal_date"`
	ReminderRules sql.NullString `db:"reminder_rules"`
}

// ListActiveServicesWithRenewalDue returns active services of active clients
// that have a renewal date.
func (r *ReminderRepository) ListActiveServicesWithRenewalDue(ctx context.Context, workspaceID string) ([]reminder.RenewalService, error) {
	query := `
		SELECT
			s.id, c.workspace_id, s.client_id, c.name AS client_name,
			s.name, s.provider, s.renewal_date, s.reminder_rules
		FROM services s
		JOIN clients c ON c.id = s.client_id
		WHERE c.workspace_id = ?
		  AND c.status = ?
		  AND s.status = ?
		  AND s.renewal_date IS NOT NULL
		ORDER BY s.renewal_date
	`

	var rows []renewalRow
	if err := r.db.SelectContext(ctx, &rows, query, workspaceID, string(reminder.ClientActive), string(reminder.ServiceActive)); err != nil {
		return nil, fmt.Errorf("failed to list renewal services: %w", err)
	}

	services := make([]reminder.RenewalService, 0, len(rows))
	for _, row := range rows {
		svc := reminder.RenewalService{
			ID:          row.ID,
			WorkspaceID: row.WorkspaceID,
			ClientID:    row.ClientID,
			ClientName:  row.ClientName,
			Name:        row.Name,
			Provider:    row.Provider,
			RenewalDate: row.RenewalDate.UTC(),
		}
		if row.ReminderRules.Valid {
			svc.ReminderRules = json.RawMessage(row.ReminderRules.String)
		}
		services = append(services, svc)
	}
	return services, nil
}

type dueTaskRow struct {
	ID          string         `db:"id"`
	WorkspaceID string         `db:"workspace_id"`
	Title       string         `db:"title"`
	Status      string         `db:"status"`
	DueAt       time.Time      `db:"due_at"`
	ClientID    sql.NullString `db:"client_id"`
	ClientName  sql.NullString `db:"client_name"`
	ProjectID   sql.NullString `db:"project_id"`
}

// ListOpenTasksWithDueDate returns unfinished tasks that have a due date.
func (r *ReminderRepository) ListOpenTasksWithDueDate(ctx context.Context, workspaceID string) ([]reminder.DueTask, error) {
	query, args, err := sqlx.In(`
		SELECT
			t.id, t.workspace_id, t.title, t.status, t.due_at,
			t.client_id, c.name AS client_name, t.project_id
		FROM tasks t
		LEFT JOIN clients c ON c.id = t.client_id
		WHERE t.workspace_id = ?
		  AND t.status IN (?)
		  AND t.due_at IS NOT NULL
		ORDER BY t.due_at
	`, workspaceID, openTaskStatuses())
	if err != nil {
		return nil, fmt.Errorf("failed to build task query: %w", err)
	}

	var rows []dueTaskRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list due tasks: %w", err)
	}

	tasks := make([]reminder.DueTask, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, reminder.DueTask{
			ID:          row.ID,
			WorkspaceID: row.WorkspaceID,
			Title:       row.Title,
			Status:      reminder.TaskStatus(row.Status),
			DueAt:       row.DueAt.UTC(),
			ClientID:    row.ClientID.String,
			ClientName:  row.ClientName.String,
			ProjectID:   row.ProjectID.String,
		})
	}
	return tasks, nil
}

type clientRow struct {
	ID          string    `db:"id"`
	WorkspaceID string    `db:"workspace_id"`
	Name        string    `db:"name"`
	Status      string    `db:"status"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ListActiveClients returns the workspace's active clients.
func (r *ReminderRepository) ListActiveClients(ctx context.Context, workspaceID string) ([]reminder.Client, error) {
	var rows []clientRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, workspace_id, name, status, updated_at
		FROM clients
		WHERE workspace_id = ? AND status = ?
		ORDER BY name
	`, workspaceID, string(reminder.ClientActive))
	if err != nil {
		return nil, fmt.Errorf("failed to list active clients: %w", err)
	}

	clients := make([]reminder.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, reminder.Client{
			ID:          row.ID,
			WorkspaceID: row.WorkspaceID,
			Name:        row.Name,
			Status:      reminder.ClientStatus(row.Status),
			UpdatedAt:   row.UpdatedAt.UTC(),
		})
	}
	return clients, nil
}

// activitySource is one record kind that counts as client activity. Direct
// sources carry a client_id column; the others point at a client through
// entity_type/entity_id.
type activitySource struct {
	table      string
	timeColumn string
	direct     bool
}

var clientActivitySources = []activitySource{
	{table: "services", timeColumn: "updated_at", direct: true},
	{table: "projects", timeColumn: "updated_at", direct: true},
	{table: "tasks", timeColumn: "updated_at", direct: true},
	{table: "asset_links", timeColumn: "updated_at", direct: true},
	{table: "vault_pointers", timeColumn: "updated_at", direct: true},
	{table: "notes", timeColumn: "updated_at"},
	{table: "decisions", timeColumn: "updated_at"},
	{table: "handovers", timeColumn: "updated_at"},
	{table: "attachment_links", timeColumn: "created_at"},
	{table: "activity_log", timeColumn: "created_at"},
}

func (s activitySource) query() string {
	if s.direct {
		return fmt.Sprintf(`SELECT client_id, %s AS ts FROM %s WHERE client_id IN (?)`, s.timeColumn, s.table)
	}
	return fmt.Sprintf(
		`SELECT entity_id AS client_id, %s AS ts FROM %s WHERE workspace_id = ? AND entity_type = 'Client' AND entity_id IN (?)`,
		s.timeColumn, s.table)
}

type activityStamp struct {
	ClientID string    `db:"client_id"`
	TS       time.Time `db:"ts"`
}

// LatestActivityByClient returns the newest related-record timestamp for each
// client that has any. MAX() would drop the column's declared type, so rows
// are folded here instead.
func (r *ReminderRepository) LatestActivityByClient(ctx context.Context, workspaceID string, clientIDs []string) (map[string]time.Time, error) {
	latest := make(map[string]time.Time, len(clientIDs))
	if len(clientIDs) == 0 {
		return latest, nil
	}

	for _, src := range clientActivitySources {
		var (
			query string
			args  []any
			err   error
		)
		if src.direct {
			query, args, err = sqlx.In(src.query(), clientIDs)
		} else {
			query, args, err = sqlx.In(src.query(), workspaceID, clientIDs)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to build %s activity query: %w", src.table, err)
		}

		var stamps []activityStamp
		if err := r.db.SelectContext(ctx, &stamps, r.db.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("failed to read %s activity: %w", src.table, err)
		}
		for _, st := range stamps {
			if cur, ok := latest[st.ClientID]; !ok || st.TS.After(cur) {
				latest[st.ClientID] = st.TS.UTC()
			}
		}
	}
	return latest, nil
}

// InsertNotificationsSkippingDuplicates inserts candidates in one transaction,
// leaving rows whose (workspace_id, dedupe_key) already exists untouched.
func (r *ReminderRepository) InsertNotificationsSkippingDuplicates(ctx context.Context, candidates []notification.Notification) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO notifications (
			id, workspace_id, type, status, entity_type, entity_id,
			title, message, due_at, dedupe_key, metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(workspace_id, dedupe_key) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare notification insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, n := range candidates {
		metadata, err := marshalMetadata(n.Metadata)
		if err != nil {
			return 0, fmt.Errorf("failed to encode metadata for %s: %w", n.DedupeKey, err)
		}
		status := n.Status
		if status == "" {
			status = notification.StatusOpen
		}

		res, err := stmt.ExecContext(ctx,
			n.ID, n.WorkspaceID, string(n.Type), string(status), n.EntityType, n.EntityID,
			n.Title, n.Message, utcPtr(n.DueAt), n.DedupeKey, metadata,
			n.CreatedAt.UTC(), n.UpdatedAt.UTC(),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert notification %s: %w", n.DedupeKey, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read rows affected: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit notifications: %w", err)
	}
	return inserted, nil
}

func openTaskStatuses() []string {
	out := make([]string, len(reminder.OpenTaskStatuses))
	for i, s := range reminder.OpenTaskStatuses {
		out[i] = string(s)
	}
	return out
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func marshalMetadata(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalMetadata(raw string) (map[string]any, error) {
	m := map[string]any{}
	if raw == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}
