package sqlite

import (
	"context"
	"testing"

	"github.com/mtxos/opsboard/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestCatalogRepository_ReminderRules(t *testing.T) {
	db := NewTestDB(t)
	f := newFixtures(t, db)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	f.workspace("ws1")
	f.client("ws1", "c1", "Acme", "ACTIVE", fixedNow)
	f.service("c1", "s1", "acme.com", "Namecheap", "ACTIVE", nil, ptr(`"garbage"`), fixedNow)

	svc, err := repo.GetService(ctx, "ws1", "s1")
	require.NoError(t, err)
	require.Equal(t, []int{60, 30, 14, 7}, svc.ReminderRules)
	require.Nil(t, svc.RenewalDate)

	later := fixedNow.AddDate(0, 0, 1)
	require.NoError(t, repo.UpdateReminderRules(ctx, "ws1", "s1", []int{90, 1}, later))

	svc, err = repo.GetService(ctx, "ws1", "s1")
	require.NoError(t, err)
	require.Equal(t, []int{90, 1}, svc.ReminderRules)
	require.True(t, later.Equal(svc.UpdatedAt))

	_, err = repo.GetService(ctx, "ws2", "s1")
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, repo.UpdateReminderRules(ctx, "ws2", "s1", []int{1}, later), repository.ErrNotFound)
}
