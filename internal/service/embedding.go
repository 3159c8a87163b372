package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
)

// maxDocumentBytes caps how much of an uploaded file is pulled for chunking.
const maxDocumentBytes = 10 << 20

// ObjectTextFetcher pulls raw uploaded bytes from object storage.
type ObjectTextFetcher interface {
	GetObjectText(ctx context.Context, key string, maxBytes int64) ([]byte, error)
}

// EmbeddingService turns queued documents and transcript turns into vectors.
// It is driven by the background job worker, one job at a time.
type EmbeddingService struct {
	tenants  TenantResolver
	client   EmbeddingClient
	fetcher  ObjectTextFetcher
	chunkCfg ChunkConfig
	uuidGen  UUIDGenerator
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(tenants TenantResolver, client EmbeddingClient, fetcher ObjectTextFetcher) *EmbeddingService {
	return &EmbeddingService{
		tenants:  tenants,
		client:   client,
		fetcher:  fetcher,
		chunkCfg: DefaultChunkConfig(),
		uuidGen:  &DefaultUUIDGenerator{},
	}
}

func NewEmbeddingServiceWithUUIDGen(tenants TenantResolver, client EmbeddingClient, fetcher ObjectTextFetcher, uuidGen UUIDGenerator) *EmbeddingService {
	s := NewEmbeddingService(tenants, client, fetcher)
	s.uuidGen = uuidGen
	return s
}

// ProcessJob embeds whatever the job points at. Called by the background
// worker; errors bubble up so the worker can retry or fail the job.
func (s *EmbeddingService) ProcessJob(ctx context.Context, job *domain.EmbeddingJob) error {
	repos, err := s.tenants.Resolve(ctx, job.ClientID)
	if err != nil {
		return err
	}

	switch {
	case job.DocumentID != "":
		return s.embedDocument(ctx, repos, job.DocumentID)
	case job.TranscriptID != "":
		return s.embedTranscript(ctx, repos, job.TranscriptID)
	default:
		return fmt.Errorf("embedding job %s has no target", job.ID)
	}
}

// embedDocument chunks the document text, embeds every chunk and replaces
// the stored chunk set. Status moves to indexed on success, failed on error.
func (s *EmbeddingService) embedDocument(ctx context.Context, repos TenantRepositories, documentID string) error {
	doc, err := repos.Documents().GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	text := doc.Text
	if strings.TrimSpace(text) == "" && doc.StorageKey != "" && s.fetcher != nil {
		data, err := s.fetcher.GetObjectText(ctx, doc.StorageKey, maxDocumentBytes)
		if err != nil {
			return s.failDocument(ctx, repos, documentID, fmt.Errorf("failed to fetch document content: %w", err))
		}
		text = string(data)
		if err := repos.Documents().UpdateText(ctx, documentID, text); err != nil {
			return err
		}
	}

	if strings.TrimSpace(text) == "" {
		return s.failDocument(ctx, repos, documentID, fmt.Errorf("document %s has no text to embed", documentID))
	}

	pieces := chunkText(text, s.chunkCfg)
	now := time.Now().UTC()
	chunks := make([]*domain.DocumentChunk, 0, len(pieces))
	for i, piece := range pieces {
		embedText := piece
		if doc.Title != "" {
			embedText = doc.Title + "\n\n" + piece
		}
		embedding, err := s.client.GenerateEmbedding(ctx, embedText)
		if err != nil {
			return s.failDocument(ctx, repos, documentID, fmt.Errorf("failed to generate chunk embedding: %w", err))
		}

		chunks = append(chunks, &domain.DocumentChunk{
			ID:         s.uuidGen.NewString(),
			DocumentID: doc.ID,
			ClientID:   doc.ClientID,
			ChunkIndex: i,
			Content:    piece,
			Embedding:  embedding,
			CreatedAt:  now,
		})
	}

	if err := repos.Chunks().DeleteByDocument(ctx, documentID); err != nil {
		return err
	}
	if err := repos.Chunks().CreateBatch(ctx, chunks); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}

	return repos.Documents().UpdateStatus(ctx, documentID, domain.DocumentStatusIndexed)
}

func (s *EmbeddingService) embedTranscript(ctx context.Context, repos TenantRepositories, transcriptID string) error {
	text, err := repos.Transcripts().GetText(ctx, transcriptID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("transcript %s has no text to embed", transcriptID)
	}

	embedding, err := s.client.GenerateEmbedding(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	return repos.Transcripts().UpdateEmbedding(ctx, transcriptID, embedding)
}

// failDocument flips the document to failed and reports the original error.
func (s *EmbeddingService) failDocument(ctx context.Context, repos TenantRepositories, documentID string, cause error) error {
	if err := repos.Documents().UpdateStatus(ctx, documentID, domain.DocumentStatusFailed); err != nil {
		return fmt.Errorf("%w (and failed to mark document failed: %v)", cause, err)
	}
	return cause
}
