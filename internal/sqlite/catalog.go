package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mtxos/opsboard/internal/domain/catalog"
	"github.com/mtxos/opsboard/internal/domain/reminder"
	"github.com/mtxos/opsboard/internal/repository"
)

// CatalogRepository implements catalog.Repository for SQLite
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

type serviceRow struct {
	ID            string         `db:"id"`
	WorkspaceID   string         `db:"workspace_id"`
	ClientID      string         `db:"client_id"`
	Name          string         `db:"name"`
	Provider      string         `db:"provider"`
	Status        string         `db:"status"`
	RenewalDate   sql.NullTime   `db:"renewal_date"`
	ReminderRules sql.NullString `db:"reminder_rules"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// GetService retrieves a service scoped to the workspace through its client
func (r *CatalogRepository) GetService(ctx context.Context, workspaceID, id string) (*catalog.ClientService, error) {
	var row serviceRow
	err := r.db.GetContext(ctx, &row, `
		SELECT s.id, c.workspace_id, s.client_id, s.name, s.provider, s.status,
		       s.renewal_date, s.reminder_rules, s.updated_at
		FROM services s
		JOIN clients c ON c.id = s.client_id
		WHERE s.id = ? AND c.workspace_id = ?
	`, id, workspaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	svc := &catalog.ClientService{
		ID:          row.ID,
		WorkspaceID: row.WorkspaceID,
		ClientID:    row.ClientID,
		Name:        row.Name,
		Provider:    row.Provider,
		Status:      row.Status,
		RenewalDate: nullTimePtr(row.RenewalDate),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	var stored any
	if row.ReminderRules.Valid {
		stored = json.RawMessage(row.ReminderRules.String)
	}
	svc.ReminderRules = reminder.ParseReminderRules(stored)
	return svc, nil
}

// UpdateReminderRules stores a normalized rule set and bumps updated_at
func (r *CatalogRepository) UpdateReminderRules(ctx context.Context, workspaceID, id string, rules []int, updatedAt time.Time) error {
	encoded, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to encode reminder rules: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE services
		SET reminder_rules = ?, updated_at = ?
		WHERE id = ?
		  AND client_id IN (SELECT id FROM clients WHERE workspace_id = ?)
	`, string(encoded), updatedAt.UTC(), id, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to update reminder rules: %w", err)
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
