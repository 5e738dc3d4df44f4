package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/domain/reminder"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestReminderRepository_ListActiveServicesWithRenewalDue(t *testing.T) {
	db := NewTestDB(t)
	f := newFixtures(t, db)
	repo := NewReminderRepository(db)
	ctx := context.Background()

	f.workspace("ws1")
	f.workspace("ws2")
	f.client("ws1", "c1", "Acme", "ACTIVE", fixedNow)
	f.client("ws1", "c2", "Paused Co", "PAUSED", fixedNow)
	f.client("ws2", "c3", "Other", "ACTIVE", fixedNow)

	renewal := fixedNow.AddDate(0, 0, 14)
	f.service("c1", "s1", "acme.com", "Namecheap", "ACTIVE", &renewal, ptr(`[30,14]`), fixedNow)
	f.service("c1", "s2", "old host", "Hetzner", "CANCELED", &renewal, nil, fixedNow)
	f.service("c1", "s3", "no date", "AWS", "ACTIVE", nil, nil, fixedNow)
	f.service("c2", "s4", "paused client", "AWS", "ACTIVE", &renewal, nil, fixedNow)
	f.service("c3", "s5", "other ws", "AWS", "ACTIVE", &renewal, nil, fixedNow)

	services, err := repo.ListActiveServicesWithRenewalDue(ctx, "ws1")
	require.NoError(t, err)
	require.Len(t, services, 1)
	require.Equal(t, "s1", services[0].ID)
	require.Equal(t, "Acme", services[0].ClientName)
	require.Equal(t, "ws1", services[0].WorkspaceID)
	require.True(t, renewal.Equal(services[0].RenewalDate))
	require.Equal(t, []int{30, 14}, reminder.ParseReminderRules(services[0].ReminderRules))
}

func TestReminderRepository_ListOpenTasksWithDueDate(t *testing.T) {
	db := NewTestDB(t)
	f := newFixtures(t, db)
	repo := NewReminderRepository(db)

	f.workspace("ws1")
	f.client("ws1", "c1", "Acme", "ACTIVE", fixedNow)
	due := fixedNow.AddDate(0, 0, 3)
	f.task("ws1", "t1", "c1", "Renew cert", "BLOCKED", &due, fixedNow)
	f.task("ws1", "t2", "", "Internal", "TODO", &due, fixedNow)
	f.task("ws1", "t3", "", "Done", "DONE", &due, fixedNow)
	f.task("ws1", "t4", "", "Undated", "IN_PROGRESS", nil, fixedNow)

	tasks, err := repo.ListOpenTasksWithDueDate(context.Background(), "ws1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	byID := map[string]reminder.DueTask{}
	for _, task := range tasks {
		byID[task.ID] = task
	}
	require.Equal(t, "Acme", byID["t1"].ClientName)
	require.Equal(t, reminder.TaskBlocked, byID["t1"].Status)
	require.Empty(t, byID["t2"].ClientID)
}

func TestReminderRepository_LatestActivityByClient(t *testing.T) {
	db := NewTestDB(t)
	f := newFixtures(t, db)
	repo := NewReminderRepository(db)
	ctx := context.Background()

	f.workspace("ws1")
	old := fixedNow.AddDate(0, 0, -90)
	f.client("ws1", "c1", "Acme", "ACTIVE", old)
	f.client("ws1", "c2", "Quiet", "ACTIVE", old)
	f.client("ws1", "c3", "Notes only", "ACTIVE", old)

	f.service("c1", "s1", "acme.com", "Namecheap", "ACTIVE", nil, nil, fixedNow.AddDate(0, 0, -40))
	f.task("ws1", "t1", "c1", "Call", "TODO", nil, fixedNow.AddDate(0, 0, -5))
	f.note("ws1", "n1", "Client", "c3", fixedNow.AddDate(0, 0, -2))
	f.note("ws1", "n2", "Project", "c2", fixedNow)

	activities := NewActivityRepository(db)
	require.NoError(t, activities.Log(ctx, "ws1", activityEntry("c2", fixedNow.AddDate(0, 0, -10))))

	latest, err := repo.LatestActivityByClient(ctx, "ws1", []string{"c1", "c2", "c3"})
	require.NoError(t, err)
	require.True(t, fixedNow.AddDate(0, 0, -5).Equal(latest["c1"]))
	require.True(t, fixedNow.AddDate(0, 0, -10).Equal(latest["c2"]), "project-scoped note must not count")
	require.True(t, fixedNow.AddDate(0, 0, -2).Equal(latest["c3"]))

	empty, err := repo.LatestActivityByClient(ctx, "ws1", nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestReminderRepository_LatestActivityByClientCoversEverySource(t *testing.T) {
	db := NewTestDB(t)
	f := newFixtures(t, db)
	repo := NewReminderRepository(db)
	ctx := context.Background()

	f.workspace("ws1")
	old := fixedNow.AddDate(0, 0, -120)
	ids := []string{"project", "asset", "vault", "decision", "handover", "attachment"}
	for _, id := range ids {
		f.client("ws1", id, id, "ACTIVE", old)
	}

	at := func(days int) time.Time { return fixedNow.AddDate(0, 0, -days).UTC() }
	f.exec(`INSERT INTO projects (id, workspace_id, client_id, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"p1", "ws1", "project", "Site", old.UTC(), at(11))
	f.exec(`INSERT INTO asset_links (id, client_id, label, url, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"a1", "asset", "Repo", "https://example.com", old.UTC(), at(12))
	f.exec(`INSERT INTO vault_pointers (id, client_id, label, item_ref, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"v1", "vault", "Admin", "op://vault/item", old.UTC(), at(13))
	f.exec(`INSERT INTO decisions (id, workspace_id, entity_type, entity_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"d1", "ws1", "Client", "decision", "Switch host", old.UTC(), at(14))
	f.exec(`INSERT INTO handovers (id, workspace_id, entity_type, entity_id, summary, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"h1", "ws1", "Client", "handover", "Passed on", old.UTC(), at(15))
	f.exec(`INSERT INTO attachment_links (id, workspace_id, entity_type, entity_id, file_name, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"f1", "ws1", "Client", "attachment", "contract.pdf", at(16))

	// Scoped to a project, so it must not count for the client with the same id.
	f.exec(`INSERT INTO decisions (id, workspace_id, entity_type, entity_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"d2", "ws1", "Project", "handover", "Other", old.UTC(), fixedNow.UTC())

	latest, err := repo.LatestActivityByClient(ctx, "ws1", ids)
	require.NoError(t, err)
	require.Len(t, latest, len(ids))
	for i, id := range ids {
		require.True(t, at(11+i).Equal(latest[id]), "client %s: got %s", id, latest[id])
	}
}

func TestReminderRepository_InsertSkipsDuplicates(t *testing.T) {
	db := NewTestDB(t)
	f := newFixtures(t, db)
	repo := NewReminderRepository(db)
	ctx := context.Background()

	f.workspace("ws1")
	f.workspace("ws2")

	due := fixedNow.AddDate(0, 0, 7)
	candidate := func(id, ws, key string) notification.Notification {
		return notification.Notification{
			ID:          id,
			WorkspaceID: ws,
			Type:        notification.TypeRenewal,
			Status:      notification.StatusOpen,
			EntityType:  "Service",
			EntityID:    "s1",
			Title:       "Renewal in 7 days",
			Message:     "Acme · acme.com (Namecheap) renews on 2026-03-08.",
			DueAt:       &due,
			DedupeKey:   key,
			Metadata:    map[string]any{"remainingDays": 7},
			CreatedAt:   fixedNow,
			UpdatedAt:   fixedNow,
		}
	}

	inserted, err := repo.InsertNotificationsSkippingDuplicates(ctx, []notification.Notification{
		candidate("n1", "ws1", "renewal:s1:7:2026-03-08"),
		candidate("n2", "ws2", "renewal:s1:7:2026-03-08"),
	})
	require.NoError(t, err)
	require.Equal(t, 2, inserted)

	inserted, err = repo.InsertNotificationsSkippingDuplicates(ctx, []notification.Notification{
		candidate("n3", "ws1", "renewal:s1:7:2026-03-08"),
		candidate("n4", "ws1", "renewal:s1:30:2026-03-31"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, inserted)

	// The original row is never overwritten.
	n, err := NewNotificationRepository(db).Get(ctx, "ws1", "n1")
	require.NoError(t, err)
	require.Equal(t, "renewal:s1:7:2026-03-08", n.DedupeKey)
	require.EqualValues(t, 7, n.Metadata["remainingDays"])
}

func TestReminderRepository_EngineRunIsIdempotent(t *testing.T) {
	db := NewTestDB(t)
	f := newFixtures(t, db)
	ctx := context.Background()

	f.workspace("ws1")
	f.client("ws1", "c1", "Acme", "ACTIVE", fixedNow.AddDate(0, 0, -45))
	renewal := fixedNow.AddDate(0, 0, 30)
	f.service("c1", "s1", "acme.com", "Namecheap", "ACTIVE", &renewal, nil, fixedNow.AddDate(0, 0, -60))
	due := fixedNow.AddDate(0, 0, -1)
	f.task("ws1", "t1", "", "File taxes", "TODO", &due, fixedNow.AddDate(0, 0, -50))

	engine := reminder.NewEngine(NewReminderRepository(db), nil,
		reminder.WithClock(func() time.Time { return fixedNow }))

	first, err := engine.Run(ctx, reminder.RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, first.Generated)
	require.Equal(t, 1, first.ByType[notification.TypeInactivity])

	second, err := engine.Run(ctx, reminder.RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 0, second.Generated)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM notifications"))
	require.Equal(t, 3, count)
}
