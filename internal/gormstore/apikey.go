package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mtxos/opsboard/internal/identity"
	"github.com/mtxos/opsboard/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// APIKeyRepository stores hashed API keys and resolves bearer tokens.
type APIKeyRepository struct {
	db *gorm.DB
}

// NewAPIKeyRepository creates an APIKeyRepository.
func NewAPIKeyRepository(db *gorm.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// EnsureWorkspace creates the workspace if it doesn't exist.
func (r *APIKeyRepository) EnsureWorkspace(ctx context.Context, id, name string) error {
	ws := Workspace{ID: id, Name: name, CreatedAt: time.Now().UTC()}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ws).Error; err != nil {
		return fmt.Errorf("ensuring workspace: %w", err)
	}
	return nil
}

// Create stores the hash of token for the given principal.
func (r *APIKeyRepository) Create(ctx context.Context, token string, p identity.Principal, description string) error {
	key := APIKey{
		KeyHash:     identity.HashToken(token),
		WorkspaceID: p.WorkspaceID,
		ActorID:     p.ActorID,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&key).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("unknown workspace %s: %w", p.WorkspaceID, repository.ErrForeignKeyViolation)
		}
		return fmt.Errorf("creating api key: %w", err)
	}
	return nil
}

// ResolvePrincipal maps a bearer token to its workspace and actor.
func (r *APIKeyRepository) ResolvePrincipal(ctx context.Context, token string) (identity.Principal, error) {
	var key APIKey
	hash := identity.HashToken(token)
	err := r.db.WithContext(ctx).Where("key_hash = ?", hash).First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return identity.Principal{}, identity.ErrUnauthorized
		}
		return identity.Principal{}, fmt.Errorf("resolving api key: %w", err)
	}
	_ = r.db.WithContext(ctx).Model(&APIKey{}).Where("key_hash = ?", hash).Update("last_used", time.Now().UTC()).Error
	return identity.Principal{WorkspaceID: key.WorkspaceID, ActorID: key.ActorID}, nil
}
