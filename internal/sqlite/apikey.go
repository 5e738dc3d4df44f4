package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mtxos/opsboard/internal/identity"
	"github.com/mtxos/opsboard/internal/repository"
)

// APIKeyRepository stores hashed API keys and resolves bearer tokens
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// EnsureWorkspace creates the workspace if it doesn't exist
func (r *APIKeyRepository) EnsureWorkspace(ctx context.Context, id, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workspaces (id, name, created_at) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		id, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to ensure workspace: %w", err)
	}
	return nil
}

// Create stores the hash of token for the given principal
func (r *APIKeyRepository) Create(ctx context.Context, token string, p identity.Principal, description string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_keys (key_hash, workspace_id, actor_id, description, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key_hash) DO NOTHING
	`, identity.HashToken(token), p.WorkspaceID, p.ActorID, description, time.Now().UTC())
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("unknown workspace %s: %w", p.WorkspaceID, repository.ErrForeignKeyViolation)
		}
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

// ResolvePrincipal maps a bearer token to its workspace and actor
func (r *APIKeyRepository) ResolvePrincipal(ctx context.Context, token string) (identity.Principal, error) {
	var p identity.Principal
	hash := identity.HashToken(token)
	err := r.db.QueryRowContext(ctx,
		`SELECT workspace_id, actor_id FROM api_keys WHERE key_hash = ?`, hash,
	).Scan(&p.WorkspaceID, &p.ActorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return identity.Principal{}, identity.ErrUnauthorized
		}
		return identity.Principal{}, fmt.Errorf("failed to resolve api key: %w", err)
	}

	// Best effort; a failed touch shouldn't reject a valid key.
	_, _ = r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now().UTC(), hash)
	return p, nil
}
