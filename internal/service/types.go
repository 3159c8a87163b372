package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/pagination"
)

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// AgentRepositoryInterface defines tenant-scoped agent persistence.
type AgentRepositoryInterface interface {
	Create(ctx context.Context, a *domain.Agent) error
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Agent, error)
	List(ctx context.Context, cursor *pagination.Cursor, limit int) (*AgentPageResult, error)
	Update(ctx context.Context, a *domain.Agent) error
	Delete(ctx context.Context, id string) error
}

// DocumentRepositoryInterface defines tenant-scoped document persistence.
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error
	UpdateText(ctx context.Context, id, text string) error
	Delete(ctx context.Context, id string) error
}

// ChunkRepositoryInterface defines tenant-scoped chunk persistence and search.
type ChunkRepositoryInterface interface {
	CreateBatch(ctx context.Context, chunks []*domain.DocumentChunk) error
	DeleteByDocument(ctx context.Context, documentID string) error
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*SearchResult, error)
}

// TranscriptRepositoryInterface defines tenant-scoped transcript persistence.
type TranscriptRepositoryInterface interface {
	Append(ctx context.Context, t *domain.ConversationTranscript) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.ConversationTranscript, error)
	ListByRoom(ctx context.Context, roomName string, limit int) ([]*domain.ConversationTranscript, error)
	GetText(ctx context.Context, transcriptID string) (string, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}

// TenantRepositories bundles the repositories bound to one client's pool and
// scope.
type TenantRepositories interface {
	Agents() AgentRepositoryInterface
	Documents() DocumentRepositoryInterface
	Chunks() ChunkRepositoryInterface
	Transcripts() TranscriptRepositoryInterface
}

// TenantResolver resolves a client id to its scoped repositories, routing
// dedicated tenants to their own database.
type TenantResolver interface {
	Resolve(ctx context.Context, clientID string) (TenantRepositories, error)
}

// EmbeddingJobRepositoryInterface defines the shared embedding job queue.
type EmbeddingJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.EmbeddingJob) error
}

// EmbeddingClient generates embeddings for text.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// AgentPageResult is one page of agents.
type AgentPageResult struct {
	Items      []*domain.Agent
	NextCursor string
	HasMore    bool
}

// DocumentPageResult is one page of documents.
type DocumentPageResult struct {
	Items      []*domain.Document
	NextCursor string
	HasMore    bool
}

// SearchResult is one RAG retrieval hit.
type SearchResult struct {
	ID         string
	SourceID   string
	SourceType string
	Content    string
	Score      float64
}
