package gormstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/domain/reminder"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReminderRepository implements reminder.Repository on gorm.
type ReminderRepository struct {
	db *gorm.DB
}

// NewReminderRepository creates a ReminderRepository.
func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) ListWorkspaceIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&Workspace{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("listing workspaces: %w", err)
	}
	return ids, nil
}

type renewalRow struct {
	ID            string
	WorkspaceID   string
	ClientID      string
	ClientName    string
	Name          string
	Provider      string
	RenewalDate   time.Time
	ReminderRules *string
}

func (r *ReminderRepository) renewalQuery(ctx context.Context, workspaceID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("services AS s").
		Select("s.id, c.workspace_id, s.client_id, c.name AS client_name, s.name, s.provider, s.renewal_date, s.reminder_rules").
		Joins("JOIN clients c ON c.id = s.client_id").
		Where("c.workspace_id = ? AND c.status = ? AND s.status = ? AND s.renewal_date IS NOT NULL",
			workspaceID, string(reminder.ClientActive), string(reminder.ServiceActive)).
		Order("s.renewal_date")
}

func (r *ReminderRepository) ListActiveServicesWithRenewalDue(ctx context.Context, workspaceID string) ([]reminder.RenewalService, error) {
	var rows []renewalRow
	if err := r.renewalQuery(ctx, workspaceID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing renewal services: %w", err)
	}
	out := make([]reminder.RenewalService, 0, len(rows))
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
		if row.ReminderRules != nil {
			svc.ReminderRules = json.RawMessage(*row.ReminderRules)
		}
		out = append(out, svc)
	}
	return out, nil
}

type dueTaskRow struct {
	ID          string
	WorkspaceID string
	Title       string
	Status      string
	DueAt       time.Time
	ClientID    *string
	ClientName  *string
	ProjectID   *string
}

func (r *ReminderRepository) dueTaskQuery(ctx context.Context, workspaceID string) *gorm.DB {
	statuses := make([]string, len(reminder.OpenTaskStatuses))
	for i, s := range reminder.OpenTaskStatuses {
		statuses[i] = string(s)
	}
	return r.db.WithContext(ctx).
		Table("tasks AS t").
		Select("t.id, t.workspace_id, t.title, t.status, t.due_at, t.client_id, c.name AS client_name, t.project_id").
		Joins("LEFT JOIN clients c ON c.id = t.client_id").
		Where("t.workspace_id = ? AND t.status IN ? AND t.due_at IS NOT NULL", workspaceID, statuses).
		Order("t.due_at")
}

func (r *ReminderRepository) ListOpenTasksWithDueDate(ctx context.Context, workspaceID string) ([]reminder.DueTask, error) {
	var rows []dueTaskRow
	if err := r.dueTaskQuery(ctx, workspaceID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing due tasks: %w", err)
	}
	out := make([]reminder.DueTask, 0, len(rows))
	for _, row := range rows {
		out = append(out, reminder.DueTask{
			ID:          row.ID,
			WorkspaceID: row.WorkspaceID,
			Title:       row.Title,
			Status:      reminder.TaskStatus(row.Status),
			DueAt:       row.DueAt.UTC(),
			ClientID:    deref(row.ClientID),
			ClientName:  deref(row.ClientName),
			ProjectID:   deref(row.ProjectID),
		})
	}
	return out, nil
}

func (r *ReminderRepository) ListActiveClients(ctx context.Context, workspaceID string) ([]reminder.Client, error) {
	var rows []Client
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND status = ?", workspaceID, string(reminder.ClientActive)).
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing active clients: %w", err)
	}
	out := make([]reminder.Client, 0, len(rows))
	for _, row := range rows {
		out = append(out, reminder.Client{
			ID:          row.ID,
			WorkspaceID: row.WorkspaceID,
			Name:        row.Name,
			Status:      reminder.ClientStatus(row.Status),
			UpdatedAt:   row.UpdatedAt.UTC(),
		})
	}
	return out, nil
}

// activitySource is one record kind that counts as client activity.
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

type activityStamp struct {
	ClientID string
	TS       time.Time
}

func (r *ReminderRepository) latestQuery(ctx context.Context, src activitySource, workspaceID string, clientIDs []string) *gorm.DB {
	q := r.db.WithContext(ctx).Table(src.table)
	if src.direct {
		return q.Select(fmt.Sprintf("client_id, MAX(%s) AS ts", src.timeColumn)).
			Where("client_id IN ?", clientIDs).
			Group("client_id")
	}
	return q.Select(fmt.Sprintf("entity_id AS client_id, MAX(%s) AS ts", src.timeColumn)).
		Where("workspace_id = ? AND entity_type = ? AND entity_id IN ?", workspaceID, "Client", clientIDs).
		Group("entity_id")
}

func (r *ReminderRepository) LatestActivityByClient(ctx context.Context, workspaceID string, clientIDs []string) (map[string]time.Time, error) {
	latest := make(map[string]time.Time, len(clientIDs))
	if len(clientIDs) == 0 {
		return latest, nil
	}
	for _, src := range clientActivitySources {
		var stamps []activityStamp
		if err := r.latestQuery(ctx, src, workspaceID, clientIDs).Find(&stamps).Error; err != nil {
			return nil, fmt.Errorf("reading %s activity: %w", src.table, err)
		}
		for _, st := range stamps {
			if cur, ok := latest[st.ClientID]; !ok || st.TS.After(cur) {
				latest[st.ClientID] = st.TS.UTC()
			}
		}
	}
	return latest, nil
}

// insertIgnoring builds the insert for rows, leaving existing dedupe keys untouched.
func insertIgnoring(tx *gorm.DB, rows []Notification) *gorm.DB {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
}

// InsertNotificationsSkippingDuplicates inserts candidates one by one inside a
// transaction and counts the rows MySQL actually wrote.
func (r *ReminderRepository) InsertNotificationsSkippingDuplicates(ctx context.Context, candidates []notification.Notification) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}
	rows := make([]Notification, 0, len(candidates))
	for _, n := range candidates {
		row, err := notificationModel(n)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}

	inserted := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			res := insertIgnoring(tx, rows[i:i+1])
			if res.Error != nil {
				return fmt.Errorf("inserting notification %s: %w", rows[i].DedupeKey, res.Error)
			}
			inserted += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
