package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lhyphendixon/sidekick-forge/internal/domain"
)

// PoolManager resolves the connection pool for a client. Shared-tier clients
// share the default pool; dedicated clients get a lazily opened pool against
// their own database.
type PoolManager struct {
	shared *pgxpool.Pool

	mu        sync.Mutex
	dedicated map[string]*pgxpool.Pool
}

// NewPoolManager creates a PoolManager over the shared pool.
func NewPoolManager(shared *pgxpool.Pool) *PoolManager {
	return &PoolManager{
		shared:    shared,
		dedicated: make(map[string]*pgxpool.Pool),
	}
}

// Shared returns the pooled (shared-tier) connection pool.
func (m *PoolManager) Shared() *pgxpool.Pool {
	return m.shared
}

// ForClient returns the pool serving the given client, opening the dedicated
// pool on first use.
func (m *PoolManager) ForClient(ctx context.Context, c *domain.Client) (*pgxpool.Pool, error) {
	if c.Tier != domain.HostingTierDedicated {
		return m.shared, nil
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("dedicated client %s has no database url", c.ID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if pool, ok := m.dedicated[c.ID]; ok {
		return pool, nil
	}

	pool, err := NewPool(ctx, c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open dedicated pool for client %s: %w", c.ID, err)
	}
	m.dedicated[c.ID] = pool
	return pool, nil
}

// Close closes every dedicated pool. The shared pool is owned by the caller.
func (m *PoolManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, pool := range m.dedicated {
		pool.Close()
		delete(m.dedicated, id)
	}
}
