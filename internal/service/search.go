package service

import (
	"context"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/telemetry"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// SearchService answers semantic queries over a tenant's documents and past
// conversations.
type SearchService struct {
	tenants  TenantResolver
	embedder EmbeddingClient
}

func NewSearchService(tenants TenantResolver, embedder EmbeddingClient) *SearchService {
	return &SearchService{tenants: tenants, embedder: embedder}
}

type SearchInput struct {
	ClientID string
	Query    string
	Limit    int
}

type SearchOutput struct {
	Results []*SearchResult
}

// Search embeds the query and runs a cosine-similarity scan over document
// chunks and transcript turns in the tenant's database.
func (s *SearchService) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		ClientID:  input.ClientID,
		Operation: "search",
	})
	defer span.End()

	if input.Query == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "search query is required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	repos, err := s.tenants.Resolve(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, input.Query)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "failed to embed query", err)
	}

	results, err := repos.Chunks().SearchByEmbedding(ctx, embedding, limit)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Results: results}, nil
}
