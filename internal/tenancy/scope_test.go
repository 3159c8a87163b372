package tenancy

import (
	"testing"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sharedScope() Scope {
	return NewScope(domain.HostingTierShared, "client-42")
}

func dedicatedScope() Scope {
	return NewScope(domain.HostingTierDedicated, "client-42")
}

func TestSelectAddsClientFilterOnShared(t *testing.T) {
	sql, args := sharedScope().
		Select("agents", "id", "slug").
		Where("slug = ?", "support-bot").
		Build()

	assert.Equal(t, "SELECT id, slug FROM agents WHERE slug = $1 AND client_id = $2", sql)
	assert.Equal(t, []any{"support-bot", "client-42"}, args)
}

func TestSelectPassThroughOnDedicated(t *testing.T) {
	sql, args := dedicatedScope().
		Select("agents", "id", "slug").
		Where("slug = ?", "support-bot").
		Build()

	assert.Equal(t, "SELECT id, slug FROM agents WHERE slug = $1", sql)
	assert.Equal(t, []any{"support-bot"}, args)
}

func TestSelectWithoutConditionsStillScoped(t *testing.T) {
	sql, args := sharedScope().
		Select("agents").
		OrderBy("created_at DESC").
		Limit(20).
		Build()

	assert.Equal(t, "SELECT * FROM agents WHERE client_id = $1 ORDER BY created_at DESC LIMIT 20", sql)
	assert.Equal(t, []any{"client-42"}, args)
}

func TestClientFilterAppliedExactlyOnce(t *testing.T) {
	q := sharedScope().Select("documents").Where("status = ?", "indexed")

	sql1, args1 := q.Build()
	sql2, args2 := q.Build()

	require.Equal(t, sql1, sql2)
	require.Equal(t, args1, args2)
	assert.Equal(t, "SELECT * FROM documents WHERE status = $1 AND client_id = $2", sql1)
}

func TestUpdateScopedOnShared(t *testing.T) {
	sql, args := sharedScope().
		Update("agents").
		Set("name", "Renamed").
		Where("id = ?", "agent-1").
		Build()

	assert.Equal(t, "UPDATE agents SET name = $1 WHERE id = $2 AND client_id = $3", sql)
	assert.Equal(t, []any{"Renamed", "agent-1", "client-42"}, args)
}

func TestDeleteScopedOnShared(t *testing.T) {
	sql, args := sharedScope().
		Delete("documents").
		Where("id = ?", "doc-1").
		Build()

	assert.Equal(t, "DELETE FROM documents WHERE id = $1 AND client_id = $2", sql)
	assert.Equal(t, []any{"doc-1", "client-42"}, args)
}

func TestDeletePassThroughOnDedicated(t *testing.T) {
	sql, args := dedicatedScope().
		Delete("documents").
		Where("id = ?", "doc-1").
		Build()

	assert.Equal(t, "DELETE FROM documents WHERE id = $1", sql)
	assert.Equal(t, []any{"doc-1"}, args)
}

func TestInsertGainsClientIDOnShared(t *testing.T) {
	sql, args := sharedScope().
		Insert("agents").
		Value("id", "agent-1").
		Value("slug", "support-bot").
		Build()

	assert.Equal(t, "INSERT INTO agents (client_id, id, slug) VALUES ($1, $2, $3)", sql)
	assert.Equal(t, []any{"client-42", "agent-1", "support-bot"}, args)
}

func TestInsertKeepsExplicitClientID(t *testing.T) {
	sql, args := sharedScope().
		Insert("agents").
		Value("id", "agent-1").
		Value("client_id", "client-42").
		Build()

	assert.Equal(t, "INSERT INTO agents (client_id, id) VALUES ($1, $2)", sql)
	assert.Equal(t, []any{"client-42", "agent-1"}, args)
}

func TestInsertPassThroughOnDedicated(t *testing.T) {
	sql, args := dedicatedScope().
		Insert("agents").
		Value("id", "agent-1").
		Build()

	assert.Equal(t, "INSERT INTO agents (id) VALUES ($1)", sql)
	assert.Equal(t, []any{"agent-1"}, args)
}

func TestScopeFor(t *testing.T) {
	shared := ScopeFor(&domain.Client{ID: "c1", Tier: domain.HostingTierShared})
	assert.True(t, shared.Shared())
	assert.Equal(t, "c1", shared.ClientID())

	dedicated := ScopeFor(&domain.Client{ID: "c2", Tier: domain.HostingTierDedicated})
	assert.False(t, dedicated.Shared())
}
