package sqlite

import (
	"context"
	"testing"

	"github.com/mtxos/opsboard/internal/identity"
	"github.com/mtxos/opsboard/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyRepository_Resolve(t *testing.T) {
	db := NewTestDB(t)
	repo := NewAPIKeyRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.EnsureWorkspace(ctx, "ws1", "Main"))
	require.NoError(t, repo.EnsureWorkspace(ctx, "ws1", "Main"))
	require.NoError(t, repo.Create(ctx, "secret-token", identity.Principal{WorkspaceID: "ws1", ActorID: "user1"}, "cli"))

	p, err := repo.ResolvePrincipal(ctx, "secret-token")
	require.NoError(t, err)
	require.Equal(t, identity.Principal{WorkspaceID: "ws1", ActorID: "user1"}, p)

	_, err = repo.ResolvePrincipal(ctx, "wrong")
	require.ErrorIs(t, err, identity.ErrUnauthorized)

	var stored string
	require.NoError(t, db.Get(&stored, "SELECT key_hash FROM api_keys"))
	require.Equal(t, identity.HashToken("secret-token"), stored)
}

func TestAPIKeyRepository_UnknownWorkspace(t *testing.T) {
	db := NewTestDB(t)
	repo := NewAPIKeyRepository(db)

	err := repo.Create(context.Background(), "tok", identity.Principal{WorkspaceID: "nope", ActorID: "u"}, "")
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)
}
