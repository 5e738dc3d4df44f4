package gormstore

import (
	"context"
	"fmt"
	"time"

	"github.com/mtxos/opsboard/internal/domain/activity"
	"gorm.io/gorm"
)

// ActivityRepository implements activity.Repository on gorm.
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates an ActivityRepository.
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Log(ctx context.Context, workspaceID string, entry *activity.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	metadata, err := encodeMetadata(entry.Metadata)
	if err != nil {
		return fmt.Errorf("encoding activity metadata: %w", err)
	}
	row := ActivityLog{
		WorkspaceID: workspaceID,
		ActorID:     entry.ActorID,
		Action:      string(entry.Action),
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Metadata:    metadata,
		CreatedAt:   createdAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	entry.ID = row.ID
	entry.WorkspaceID = workspaceID
	entry.CreatedAt = row.CreatedAt
	return nil
}

func (r *ActivityRepository) listQuery(ctx context.Context, workspaceID string, opts activity.ListOptions) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&ActivityLog{}).Where("workspace_id = ?", workspaceID)
	if opts.EntityType != "" {
		q = q.Where("entity_type = ?", opts.EntityType)
	}
	if opts.EntityID != "" {
		q = q.Where("entity_id = ?", opts.EntityID)
	}
	if opts.Action != nil {
		q = q.Where("action = ?", string(*opts.Action))
	}
	q = q.Order("created_at DESC").Order("id DESC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	return q
}

func (r *ActivityRepository) List(ctx context.Context, workspaceID string, opts activity.ListOptions) ([]activity.Entry, error) {
	var rows []ActivityLog
	if err := r.listQuery(ctx, workspaceID, opts).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	out := make([]activity.Entry, 0, len(rows))
	for _, row := range rows {
		metadata, err := decodeMetadata(row.Metadata)
		if err != nil {
			return nil, fmt.Errorf("decoding activity metadata: %w", err)
		}
		out = append(out, activity.Entry{
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
	return out, nil
}
