package repository

import (
	"context"
	"fmt"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/service"
	"github.com/lhyphendixon/sidekick-forge/internal/tenancy"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository persists embeddable document slices and runs vector search
// over them.
type ChunkRepository struct {
	db    dbtx
	scope tenancy.Scope
}

func NewChunkRepository(db dbtx, scope tenancy.Scope) *ChunkRepository {
	return &ChunkRepository{db: db, scope: scope}
}

func (r *ChunkRepository) CreateBatch(ctx context.Context, chunks []*domain.DocumentChunk) error {
	for _, c := range chunks {
		sql, args := r.scope.Insert("document_chunks").
			Value("id", c.ID).
			Value("document_id", c.DocumentID).
			Value("client_id", c.ClientID).
			Value("chunk_index", c.ChunkIndex).
			Value("content", c.Content).
			Value("embedding", pgvector.NewVector(c.Embedding)).
			Value("created_at", c.CreatedAt).
			Build()
		if _, err := r.db.Exec(ctx, sql, args...); err != nil {
			return err
		}
	}
	return nil
}

func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	sql, args := r.scope.Delete("document_chunks").Where("document_id = ?", documentID).Build()
	_, err := r.db.Exec(ctx, sql, args...)
	return err
}

// SearchByEmbedding runs cosine-distance retrieval over document chunks and
// conversation transcripts. The union query is written by hand; the tenant
// predicate follows the scope the same way the builder applies it.
func (r *ChunkRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*service.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	vec := pgvector.NewVector(embedding)

	tenantFilter := ""
	args := []any{vec}
	if r.scope.Shared() {
		tenantFilter = " AND client_id = $2"
		args = append(args, r.scope.ClientID())
	}

	query := `
		WITH combined AS (
			SELECT id, document_id AS source_id, 'document' AS source_type, content,
			       1.0 / (1.0 + (embedding <=> $1)) AS score
			FROM document_chunks
			WHERE embedding IS NOT NULL` + tenantFilter + `
			UNION ALL
			SELECT id, session_id AS source_id, 'transcript' AS source_type, content,
			       1.0 / (1.0 + (embedding <=> $1)) AS score
			FROM conversation_transcripts
			WHERE embedding IS NOT NULL` + tenantFilter + `
		)
		SELECT id, source_id, source_type, content, score
		FROM combined
		ORDER BY score DESC
		LIMIT ` + fmt.Sprintf("$%d", len(args)+1)

	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*service.SearchResult, 0)
	for rows.Next() {
		var res service.SearchResult
		if err := rows.Scan(&res.ID, &res.SourceID, &res.SourceType, &res.Content, &res.Score); err != nil {
			return nil, err
		}
		results = append(results, &res)
	}
	return results, rows.Err()
}
