package repository

import (
	"context"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/tenancy"
	"github.com/pgvector/pgvector-go"
)

// TranscriptRepository persists conversation turns for one tenant scope.
type TranscriptRepository struct {
	db    dbtx
	scope tenancy.Scope
}

func NewTranscriptRepository(db dbtx, scope tenancy.Scope) *TranscriptRepository {
	return &TranscriptRepository{db: db, scope: scope}
}

const transcriptColumns = "id, client_id, agent_id, session_id, room_name, role, content, created_at"

func (r *TranscriptRepository) Append(ctx context.Context, t *domain.ConversationTranscript) error {
	sql, args := r.scope.Insert("conversation_transcripts").
		Value("id", t.ID).
		Value("client_id", t.ClientID).
		Value("agent_id", nullableString(t.AgentID)).
		Value("session_id", t.SessionID).
		Value("room_name", t.RoomName).
		Value("role", t.Role).
		Value("content", t.Content).
		Value("created_at", t.CreatedAt).
		Build()

	_, err := r.db.Exec(ctx, sql, args...)
	return err
}

func (r *TranscriptRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.ConversationTranscript, error) {
	if limit <= 0 {
		limit = 200
	}
	sql, args := r.scope.Select("conversation_transcripts", transcriptColumns).
		Where("session_id = ?", sessionID).
		OrderBy("created_at ASC").
		Limit(limit).
		Build()
	return r.list(ctx, sql, args)
}

func (r *TranscriptRepository) ListByRoom(ctx context.Context, roomName string, limit int) ([]*domain.ConversationTranscript, error) {
	if limit <= 0 {
		limit = 200
	}
	sql, args := r.scope.Select("conversation_transcripts", transcriptColumns).
		Where("room_name = ?", roomName).
		OrderBy("created_at ASC").
		Limit(limit).
		Build()
	return r.list(ctx, sql, args)
}

func (r *TranscriptRepository) list(ctx context.Context, sql string, args []any) ([]*domain.ConversationTranscript, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.ConversationTranscript
	for rows.Next() {
		var t domain.ConversationTranscript
		var agentID *string
		if err := rows.Scan(&t.ID, &t.ClientID, &agentID, &t.SessionID, &t.RoomName, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, err
		}
		if agentID != nil {
			t.AgentID = *agentID
		}
		results = append(results, &t)
	}
	return results, rows.Err()
}

// GetText returns the content of a single turn, used by the embedding worker.
func (r *TranscriptRepository) GetText(ctx context.Context, transcriptID string) (string, error) {
	sql, args := r.scope.Select("conversation_transcripts", "content").
		Where("id = ?", transcriptID).
		Build()

	var content string
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&content); err != nil {
		return "", domain.ErrTranscriptNotFound
	}
	return content, nil
}

func (r *TranscriptRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	sql, args := r.scope.Update("conversation_transcripts").
		Set("embedding", pgvector.NewVector(embedding)).
		Where("id = ?", id).
		Build()

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrTranscriptNotFound
	}
	return nil
}
