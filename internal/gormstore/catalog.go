package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mtxos/opsboard/internal/domain/catalog"
	"github.com/mtxos/opsboard/internal/domain/reminder"
	"github.com/mtxos/opsboard/internal/repository"
	"gorm.io/gorm"
)

// CatalogRepository implements catalog.Repository on gorm.
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a CatalogRepository.
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

type scopedService struct {
	Service
	WorkspaceID string
}

func (r *CatalogRepository) GetService(ctx context.Context, workspaceID, id string) (*catalog.ClientService, error) {
	var row scopedService
	err := r.db.WithContext(ctx).
		Table("services AS s").
		Select("s.*, c.workspace_id").
		Joins("JOIN clients c ON c.id = s.client_id").
		Where("s.id = ? AND c.workspace_id = ?", id, workspaceID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("getting service: %w", err)
	}

	var stored any
	if row.ReminderRules != nil {
		stored = json.RawMessage(*row.ReminderRules)
	}
	return &catalog.ClientService{
		ID:            row.ID,
		WorkspaceID:   row.WorkspaceID,
		ClientID:      row.ClientID,
		Name:          row.Name,
		Provider:      row.Provider,
		Status:        row.Status,
		RenewalDate:   utcPtr(row.RenewalDate),
		ReminderRules: reminder.ParseReminderRules(stored),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}, nil
}

func (r *CatalogRepository) UpdateReminderRules(ctx context.Context, workspaceID, id string, rules []int, updatedAt time.Time) error {
	encoded, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("encoding reminder rules: %w", err)
	}
	scope := r.db.WithContext(ctx).Model(&Client{}).Select("id").Where("workspace_id = ?", workspaceID)
	res := r.db.WithContext(ctx).
		Model(&Service{}).
		Where("id = ? AND client_id IN (?)", id, scope).
		Updates(map[string]any{
			"reminder_rules": string(encoded),
			"updated_at":     updatedAt.UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("updating reminder rules: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
