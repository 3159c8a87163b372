package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
)

func TestSearch(t *testing.T) {
	repos := newMockTenantRepos()
	embedder := new(MockEmbeddingClient)

	vector := []float32{0.1, 0.2, 0.3}
	embedder.On("GenerateEmbedding", mock.Anything, "refund policy").Return(vector, nil)
	repos.chunks.On("SearchByEmbedding", mock.Anything, vector, 10).Return([]*SearchResult{
		{ID: "c1", SourceID: "doc-1", SourceType: "document", Content: "Refunds last 30 days.", Score: 0.92},
	}, nil)

	svc := NewSearchService(&staticResolver{repos: repos}, embedder)

	out, err := svc.Search(context.Background(), SearchInput{ClientID: "client-1", Query: "refund policy"})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "document", out.Results[0].SourceType)
	assert.InDelta(t, 0.92, out.Results[0].Score, 1e-9)
}

func TestSearchRequiresQuery(t *testing.T) {
	svc := NewSearchService(&staticResolver{repos: newMockTenantRepos()}, new(MockEmbeddingClient))

	_, err := svc.Search(context.Background(), SearchInput{ClientID: "client-1"})
	assert.Error(t, err)
}

func TestSearchClampsLimit(t *testing.T) {
	repos := newMockTenantRepos()
	embedder := new(MockEmbeddingClient)

	embedder.On("GenerateEmbedding", mock.Anything, "q").Return([]float32{0.5}, nil)
	repos.chunks.On("SearchByEmbedding", mock.Anything, mock.Anything, maxSearchLimit).Return([]*SearchResult{}, nil)

	svc := NewSearchService(&staticResolver{repos: repos}, embedder)

	_, err := svc.Search(context.Background(), SearchInput{ClientID: "client-1", Query: "q", Limit: 500})
	require.NoError(t, err)
	repos.chunks.AssertExpectations(t)
}

func TestSearchEmbeddingFailure(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	embedder.On("GenerateEmbedding", mock.Anything, "q").Return(nil, assert.AnError)

	svc := NewSearchService(&staticResolver{repos: newMockTenantRepos()}, embedder)

	_, err := svc.Search(context.Background(), SearchInput{ClientID: "client-1", Query: "q"})
	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeUnavailable, domainErr.Code)
}
