package activity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// LogActivity validates and logs an entry, stamping the current time if missing.
func (s *Service) LogActivity(ctx context.Context, workspaceID string, entry *Entry) error {
	if err := Validate(workspaceID, entry); err != nil {
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Metadata == nil {
		entry.Metadata = map[string]any{}
	}
	if err := s.repo.Log(ctx, workspaceID, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// GetRecentActivity lists activity entries with filtering.
func (s *Service) GetRecentActivity(ctx context.Context, workspaceID string, opts ListOptions) ([]Entry, error) {
	if opts.Limit <= 0 || opts.Limit > 500 {
		opts.Limit = 100
	}
	return s.repo.List(ctx, workspaceID, opts)
}

// Validate checks the fields every audit entry must carry.
func Validate(workspaceID string, entry *Entry) error {
	if entry == nil || strings.TrimSpace(workspaceID) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(entry.ActorID) == "" ||
		strings.TrimSpace(string(entry.Action)) == "" ||
		strings.TrimSpace(entry.EntityType) == "" ||
		strings.TrimSpace(entry.EntityID) == "" {
		return ErrInvalidInput
	}
	return nil
}
