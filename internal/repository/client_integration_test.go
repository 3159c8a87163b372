//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/testutil"
)

func newStoredClient(slug string) *domain.Client {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Client{
		ID:        uuid.NewString(),
		Slug:      slug,
		Name:      slug,
		Tier:      domain.HostingTierShared,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestClientRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewClientRepository(pool)

	client := newStoredClient("acme")
	require.NoError(t, repo.Create(ctx, client))

	retrieved, err := repo.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, client.Slug, retrieved.Slug)
	assert.Equal(t, domain.HostingTierShared, retrieved.Tier)
	assert.True(t, retrieved.Active)

	bySlug, err := repo.GetBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, client.ID, bySlug.ID)
}

func TestClientRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewClientRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestClientRepository_DedicatedTier_RoundTripsDatabaseURL(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewClientRepository(pool)

	client := newStoredClient("bigcorp")
	client.Tier = domain.HostingTierDedicated
	client.DatabaseURL = "postgres://bigcorp:pw@tenant-db:5432/bigcorp"
	require.NoError(t, repo.Create(ctx, client))

	retrieved, err := repo.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HostingTierDedicated, retrieved.Tier)
	assert.Equal(t, client.DatabaseURL, retrieved.DatabaseURL)
}

func TestClientRepository_List_OrdersByNewest(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewClientRepository(pool)

	first := newStoredClient("first")
	second := newStoredClient("second")
	second.CreatedAt = first.CreatedAt.Add(time.Second)

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	clients, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "second", clients[0].Slug)
	assert.Equal(t, "first", clients[1].Slug)
}

func TestClientRepository_Update_Deactivate(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewClientRepository(pool)

	client := newStoredClient("fading")
	require.NoError(t, repo.Create(ctx, client))

	client.Active = false
	client.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.Update(ctx, client))

	retrieved, err := repo.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.False(t, retrieved.Active)
}

func TestAPIKeyRepository_CreateGetRevoke(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	clientRepo := NewClientRepository(pool)
	keyRepo := NewAPIKeyRepository(pool)

	client := newStoredClient("keyed")
	require.NoError(t, clientRepo.Create(ctx, client))

	key := &domain.APIKey{
		ID:        uuid.NewString(),
		ClientID:  client.ID,
		Name:      "production",
		KeyHash:   "deadbeefcafe",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, keyRepo.Create(ctx, key))

	byHash, err := keyRepo.GetByHash(ctx, "deadbeefcafe")
	require.NoError(t, err)
	assert.Equal(t, key.ID, byHash.ID)
	assert.False(t, byHash.IsRevoked())

	require.NoError(t, keyRepo.Revoke(ctx, key.ID))

	revoked, err := keyRepo.GetByHash(ctx, "deadbeefcafe")
	require.NoError(t, err)
	assert.True(t, revoked.IsRevoked())

	// Already revoked keys cannot be revoked again.
	err = keyRepo.Revoke(ctx, key.ID)
	assert.ErrorIs(t, err, domain.ErrAPIKeyNotFound)
}
