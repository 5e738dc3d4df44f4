package activity_test

import (
	"context"
	"testing"

	"github.com/mtxos/opsboard/internal/domain/activity"
	"github.com/mtxos/opsboard/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_LogAndList(t *testing.T) {
	ctx := context.Background()
	workspaceID := "ws1"

	repo := &mocks.ActivityRepository{}
	entry := &activity.Entry{
		ActorID:    "user1",
		Action:     activity.ActionNotificationSnooze,
		EntityType: "Notification",
		EntityID:   "n1",
	}

	repo.On("Log", ctx, workspaceID, entry).Return(nil)
	repo.On("List", ctx, workspaceID, activity.ListOptions{EntityType: "Client", Limit: 100}).Return([]activity.Entry{}, nil)

	svc := activity.NewService(repo, nil)
	require.NoError(t, svc.LogActivity(ctx, workspaceID, entry))
	require.False(t, entry.CreatedAt.IsZero())
	require.NotNil(t, entry.Metadata)

	_, err := svc.GetRecentActivity(ctx, workspaceID, activity.ListOptions{EntityType: "Client"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestActivityService_RejectsIncompleteEntry(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	svc := activity.NewService(repo, nil)

	require.ErrorIs(t, svc.LogActivity(ctx, "ws1", nil), activity.ErrInvalidInput)
	require.ErrorIs(t, svc.LogActivity(ctx, "", &activity.Entry{ActorID: "u", Action: "a", EntityType: "Client", EntityID: "c1"}), activity.ErrInvalidInput)
	require.ErrorIs(t, svc.LogActivity(ctx, "ws1", &activity.Entry{ActorID: "u", Action: "a", EntityType: "Client"}), activity.ErrInvalidInput)
	repo.AssertNotCalled(t, "Log", mock.Anything, mock.Anything, mock.Anything)
}
