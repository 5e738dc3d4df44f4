package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/mtxos/opsboard/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func activityEntry(clientID string, at time.Time) *activity.Entry {
	return &activity.Entry{
		ActorID:    "user1",
		Action:     activity.ActionServiceReminderRules,
		EntityType: "Client",
		EntityID:   clientID,
		Metadata:   map[string]any{"source": "test"},
		CreatedAt:  at,
	}
}

func TestActivityRepository_LogAndList(t *testing.T) {
	db := NewTestDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	first := activityEntry("c1", fixedNow.Add(-time.Hour))
	require.NoError(t, repo.Log(ctx, "ws1", first))
	require.NotZero(t, first.ID)
	require.Equal(t, "ws1", first.WorkspaceID)

	second := activityEntry("c2", fixedNow)
	second.Action = activity.ActionNotificationSnooze
	second.EntityType = "Notification"
	require.NoError(t, repo.Log(ctx, "ws1", second))
	require.NoError(t, repo.Log(ctx, "ws2", activityEntry("c9", fixedNow)))

	all, err := repo.List(ctx, "ws1", activity.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, second.ID, all[0].ID, "newest first")
	require.Equal(t, "test", all[1].Metadata["source"])

	clients, err := repo.List(ctx, "ws1", activity.ListOptions{EntityType: "Client"})
	require.NoError(t, err)
	require.Len(t, clients, 1)
	require.Equal(t, "c1", clients[0].EntityID)

	snooze := activity.ActionNotificationSnooze
	filtered, err := repo.List(ctx, "ws1", activity.ListOptions{Action: &snooze})
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	paged, err := repo.List(ctx, "ws1", activity.ListOptions{Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	require.Equal(t, first.ID, paged[0].ID)
}
