package reminder

import (
	"context"
	"time"

	"github.com/mtxos/opsboard/internal/domain/notification"
)

// Repository is the data access the engine needs. Reads are scoped to one
// workspace; the insert must skip rows whose dedupe key already exists in
// the row's workspace and report how many rows it actually inserted.
type Repository interface {
	ListWorkspaceIDs(ctx context.Context) ([]string, error)
	ListActiveServicesWithRenewalDue(ctx context.Context, workspaceID string) ([]RenewalService, error)
	ListOpenTasksWithDueDate(ctx context.Context, workspaceID string) ([]DueTask, error)
	ListActiveClients(ctx context.Context, workspaceID string) ([]Client, error)
	LatestActivityByClient(ctx context.Context, workspaceID string, clientIDs []string) (map[string]time.Time, error)
	InsertNotificationsSkippingDuplicates(ctx context.Context, candidates []notification.Notification) (int, error)
}
