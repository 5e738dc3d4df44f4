package notification

import (
	"context"

	"github.com/mtxos/opsboard/internal/domain/activity"
)

// Repository provides persistence for notifications.
type Repository interface {
	Get(ctx context.Context, workspaceID, id string) (*Notification, error)
	List(ctx context.Context, workspaceID string, opts ListOptions) ([]Notification, error)
	Update(ctx context.Context, workspaceID string, n *Notification) error
}

// ActivityRepository logs inbox actions.
type ActivityRepository interface {
	Log(ctx context.Context, workspaceID string, entry *activity.Entry) error
}
