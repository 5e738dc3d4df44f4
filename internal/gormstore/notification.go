package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/repository"
	"gorm.io/gorm"
)

// NotificationRepository implements notification.Repository on gorm.
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a NotificationRepository.
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Get(ctx context.Context, workspaceID, id string) (*notification.Notification, error) {
	var row Notification
	err := r.db.WithContext(ctx).Where("id = ? AND workspace_id = ?", id, workspaceID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("getting notification: %w", err)
	}
	n, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) listQuery(ctx context.Context, workspaceID string, opts notification.ListOptions) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&Notification{}).Where("workspace_id = ?", workspaceID)
	if opts.Type != nil {
		q = q.Where("type = ?", string(*opts.Type))
	}
	if opts.Status != nil {
		q = q.Where("status = ?", string(*opts.Status))
	}
	q = q.Order("CASE status WHEN 'OPEN' THEN 0 WHEN 'SNOOZED' THEN 1 ELSE 2 END").Order("due_at IS NULL").Order("due_at ASC").Order("created_at DESC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	return q
}

func (r *NotificationRepository) List(ctx context.Context, workspaceID string, opts notification.ListOptions) ([]notification.Notification, error) {
	var rows []Notification
	if err := r.listQuery(ctx, workspaceID, opts).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	out := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		n, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *NotificationRepository) Update(ctx context.Context, workspaceID string, n *notification.Notification) error {
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND workspace_id = ?", n.ID, workspaceID).
		Updates(map[string]any{
			"status":        string(n.Status),
			"snoozed_until": utcPtr(n.SnoozedUntil),
			"handled_at":    utcPtr(n.HandledAt),
			"handled_by_id": n.HandledByID,
			"updated_at":    n.UpdatedAt.UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("updating notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func notificationModel(n notification.Notification) (Notification, error) {
	metadata, err := encodeMetadata(n.Metadata)
	if err != nil {
		return Notification{}, fmt.Errorf("encoding metadata for %s: %w", n.DedupeKey, err)
	}
	status := n.Status
	if status == "" {
		status = notification.StatusOpen
	}
	return Notification{
		ID:           n.ID,
		WorkspaceID:  n.WorkspaceID,
		Type:         string(n.Type),
		Status:       string(status),
		EntityType:   n.EntityType,
		EntityID:     n.EntityID,
		Title:        n.Title,
		Message:      n.Message,
		DueAt:        utcPtr(n.DueAt),
		DedupeKey:    n.DedupeKey,
		Metadata:     metadata,
		SnoozedUntil: utcPtr(n.SnoozedUntil),
		HandledAt:    utcPtr(n.HandledAt),
		HandledByID:  n.HandledByID,
		CreatedAt:    n.CreatedAt.UTC(),
		UpdatedAt:    n.UpdatedAt.UTC(),
	}, nil
}

func (row Notification) toDomain() (notification.Notification, error) {
	metadata, err := decodeMetadata(row.Metadata)
	if err != nil {
		return notification.Notification{}, fmt.Errorf("decoding metadata for %s: %w", row.ID, err)
	}
	return notification.Notification{
		ID:           row.ID,
		WorkspaceID:  row.WorkspaceID,
		Type:         notification.Type(row.Type),
		Status:       notification.Status(row.Status),
		EntityType:   row.EntityType,
		EntityID:     row.EntityID,
		Title:        row.Title,
		Message:      row.Message,
		DueAt:        utcPtr(row.DueAt),
		DedupeKey:    row.DedupeKey,
		Metadata:     metadata,
		SnoozedUntil: utcPtr(row.SnoozedUntil),
		HandledAt:    utcPtr(row.HandledAt),
		HandledByID:  row.HandledByID,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}, nil
}

func encodeMetadata(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeMetadata(raw string) (map[string]any, error) {
	m := map[string]any{}
	if raw == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}
