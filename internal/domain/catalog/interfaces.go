package catalog

import (
	"context"
	"time"

	"github.com/mtxos/opsboard/internal/domain/activity"
)

// Repository provides persistence for client services.
type Repository interface {
	GetService(ctx context.Context, workspaceID, id string) (*ClientService, error)
	UpdateReminderRules(ctx context.Context, workspaceID, id string, rules []int, updatedAt time.Time) error
}

// ActivityRepository logs catalog changes.
type ActivityRepository interface {
	Log(ctx context.Context, workspaceID string, entry *activity.Entry) error
}
