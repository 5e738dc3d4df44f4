package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/mtxos/opsboard/internal/domain/activity"
	"github.com/mtxos/opsboard/internal/domain/reminder"
	"github.com/mtxos/opsboard/internal/repository"
)

// MaxReminderRules caps how many offsets a service may carry.
const MaxReminderRules = 12

// Service handles service catalog operations.
type Service struct {
	repo       Repository
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates a new catalog service.
func NewService(repo Repository, activities ActivityRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, activities: activities, logger: logger}
}

// GetService fetches a service by ID.
func (s *Service) GetService(ctx context.Context, workspaceID, id string) (*ClientService, error) {
	svc, err := s.repo.GetService(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("getting service: %w", err)
	}
	return svc, nil
}

// ValidateReminderRules checks a rule set submitted by a caller: 1 to 12
// whole-day offsets, each within [0,365].
func ValidateReminderRules(rules []float64) error {
	if len(rules) == 0 || len(rules) > MaxReminderRules {
		return fmt.Errorf("%w: expected 1 to %d entries, got %d", ErrInvalidRules, MaxReminderRules, len(rules))
	}
	for _, r := range rules {
		if r != math.Trunc(r) || r < reminder.MinReminderDay || r > reminder.MaxReminderDay {
			return fmt.Errorf("%w: %v is not a whole day between %d and %d",
				ErrInvalidRules, r, reminder.MinReminderDay, reminder.MaxReminderDay)
		}
	}
	return nil
}

// UpdateReminderRules validates, normalizes and stores a service's reminder offsets.
func (s *Service) UpdateReminderRules(ctx context.Context, workspaceID, actorID, id string, rules []float64) (*ClientService, error) {
	if err := ValidateReminderRules(rules); err != nil {
		return nil, err
	}

	svc, err := s.GetService(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	normalized := reminder.NormalizeReminderRules(rules)
	now := time.Now().UTC()
	if err := s.repo.UpdateReminderRules(ctx, workspaceID, id, normalized, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("updating reminder rules: %w", err)
	}
	svc.ReminderRules = normalized
	svc.UpdatedAt = now

	if s.activities != nil {
		entry := &activity.Entry{
			ActorID:    actorID,
			Action:     activity.ActionServiceReminderRules,
			EntityType: "Service",
			EntityID:   svc.ID,
			Metadata: map[string]any{
				"clientId":      svc.ClientID,
				"name":          svc.Name,
				"reminderRules": normalized,
			},
			CreatedAt: now,
		}
		if err := s.activities.Log(ctx, workspaceID, entry); err != nil && s.logger != nil {
			s.logger.Warn("failed to log service activity", "service_id", svc.ID, "error", err)
		}
	}

	return svc, nil
}
