package repository

import (
	"context"

	"github.com/lhyphendixon/sidekick-forge/internal/database"
	"github.com/lhyphendixon/sidekick-forge/internal/service"
	"github.com/lhyphendixon/sidekick-forge/internal/tenancy"
)

// Resolver builds tenant-scoped repositories from a client id. It looks up
// the client row, picks the pool for its tier and binds the tenancy scope.
type Resolver struct {
	pools   *database.PoolManager
	clients *ClientRepository
}

func NewResolver(pools *database.PoolManager, clients *ClientRepository) *Resolver {
	return &Resolver{pools: pools, clients: clients}
}

func (r *Resolver) Resolve(ctx context.Context, clientID string) (service.TenantRepositories, error) {
	client, err := r.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	pool, err := r.pools.ForClient(ctx, client)
	if err != nil {
		return nil, err
	}

	return &tenantRepos{db: pool, scope: tenancy.ScopeFor(client)}, nil
}

type tenantRepos struct {
	db    dbtx
	scope tenancy.Scope
}

func (t *tenantRepos) Agents() service.AgentRepositoryInterface {
	return NewAgentRepository(t.db, t.scope)
}

func (t *tenantRepos) Documents() service.DocumentRepositoryInterface {
	return NewDocumentRepository(t.db, t.scope)
}

func (t *tenantRepos) Chunks() service.ChunkRepositoryInterface {
	return NewChunkRepository(t.db, t.scope)
}

func (t *tenantRepos) Transcripts() service.TranscriptRepositoryInterface {
	return NewTranscriptRepository(t.db, t.scope)
}
