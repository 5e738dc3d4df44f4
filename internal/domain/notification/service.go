package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtxos/opsboard/internal/domain/activity"
	"github.com/mtxos/opsboard/internal/repository"
)

// Service handles the notification inbox.
type Service struct {
	repo       Repository
	activities ActivityRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new notification service.
func NewService(repo Repository, activities ActivityRepository, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		activities: activities,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns notifications in the workspace matching the filters.
func (s *Service) List(ctx context.Context, workspaceID string, opts ListOptions) ([]Notification, error) {
	if opts.Type != nil && !ValidType(*opts.Type) {
		return nil, ErrInvalidInput
	}
	if opts.Status != nil && !ValidStatus(*opts.Status) {
		return nil, ErrInvalidInput
	}
	if opts.Limit <= 0 || opts.Limit > MaxListLimit {
		opts.Limit = MaxListLimit
	}
	list, err := s.repo.List(ctx, workspaceID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return list, nil
}

// Snooze hides a notification for the given number of minutes, or for
// DefaultSnoozeMinutes when minutes is nil.
func (s *Service) Snooze(ctx context.Context, workspaceID, actorID, id string, minutes *int) (*Notification, error) {
	length, err := ValidateSnoozeMinutes(minutes)
	if err != nil {
		return nil, err
	}

	n, err := s.get(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(n.Status, StatusSnoozed); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	until := now.Add(time.Duration(length) * time.Minute)
	n.Status = StatusSnoozed
	n.SnoozedUntil = &until
	n.UpdatedAt = now

	if err := s.repo.Update(ctx, workspaceID, n); err != nil {
		return nil, fmt.Errorf("snoozing notification: %w", err)
	}

	s.logActivity(ctx, workspaceID, &activity.Entry{
		ActorID:    actorID,
		Action:     activity.ActionNotificationSnooze,
		EntityType: "Notification",
		EntityID:   n.ID,
		Metadata:   map[string]any{"snoozedUntil": until.Format(time.RFC3339)},
		CreatedAt:  now,
	})

	return n, nil
}

// MarkHandled closes a notification on behalf of actorID.
func (s *Service) MarkHandled(ctx context.Context, workspaceID, actorID, id string) (*Notification, error) {
	n, err := s.get(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(n.Status, StatusHandled); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	handledBy := actorID
	n.Status = StatusHandled
	n.HandledAt = &now
	n.HandledByID = &handledBy
	n.UpdatedAt = now

	if err := s.repo.Update(ctx, workspaceID, n); err != nil {
		return nil, fmt.Errorf("marking notification handled: %w", err)
	}

	s.logActivity(ctx, workspaceID, &activity.Entry{
		ActorID:    actorID,
		Action:     activity.ActionNotificationMarkHandled,
		EntityType: "Notification",
		EntityID:   n.ID,
		Metadata:   map[string]any{},
		CreatedAt:  now,
	})

	return n, nil
}

func (s *Service) get(ctx context.Context, workspaceID, id string) (*Notification, error) {
	n, err := s.repo.Get(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("getting notification: %w", err)
	}
	return n, nil
}

// logActivity records the audit entry; the inbox change already committed, so failures only log.
func (s *Service) logActivity(ctx context.Context, workspaceID string, entry *activity.Entry) {
	if s.activities == nil {
		return
	}
	if err := s.activities.Log(ctx, workspaceID, entry); err != nil && s.logger != nil {
		s.logger.Warn("failed to log notification activity", "action", entry.Action, "notification_id", entry.EntityID, "error", err)
	}
}
