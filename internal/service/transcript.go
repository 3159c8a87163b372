package service

import (
	"context"
	"time"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/telemetry"
)

// TranscriptService records and retrieves conversation turns. Turns arrive
// from the agent worker during a session; embeddings are queued so past
// conversations become searchable.
type TranscriptService struct {
	tenants TenantResolver
	jobRepo EmbeddingJobRepositoryInterface
	uuidGen UUIDGenerator
}

func NewTranscriptService(tenants TenantResolver, jobRepo EmbeddingJobRepositoryInterface) *TranscriptService {
	return &TranscriptService{tenants: tenants, jobRepo: jobRepo, uuidGen: &DefaultUUIDGenerator{}}
}

func NewTranscriptServiceWithUUIDGen(tenants TenantResolver, jobRepo EmbeddingJobRepositoryInterface, uuidGen UUIDGenerator) *TranscriptService {
	return &TranscriptService{tenants: tenants, jobRepo: jobRepo, uuidGen: uuidGen}
}

type AppendTurnInput struct {
	ClientID  string
	AgentID   string
	SessionID string
	RoomName  string
	Role      domain.TranscriptRole
	Content   string
}

// Append records one turn and queues it for embedding. Assistant and user
// turns are embedded; system turns are stored but skipped.
func (s *TranscriptService) Append(ctx context.Context, input AppendTurnInput) (*domain.ConversationTranscript, error) {
	ctx, span := telemetry.StartSpan(ctx, "TranscriptService.Append", telemetry.SpanAttributes{
		ClientID:  input.ClientID,
		SessionID: input.SessionID,
		Operation: "append",
	})
	defer span.End()

	repos, err := s.tenants.Resolve(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	turn := &domain.ConversationTranscript{
		ID:        s.uuidGen.NewString(),
		ClientID:  input.ClientID,
		AgentID:   input.AgentID,
		SessionID: input.SessionID,
		RoomName:  input.RoomName,
		Role:      input.Role,
		Content:   input.Content,
		CreatedAt: now,
	}

	if err := domain.ValidateTranscript(turn); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid transcript turn", err)
	}

	if err := repos.Transcripts().Append(ctx, turn); err != nil {
		return nil, err
	}

	if input.Role != domain.TranscriptRoleSystem {
		job := &domain.EmbeddingJob{
			ID:           s.uuidGen.NewString(),
			ClientID:     input.ClientID,
			TranscriptID: turn.ID,
			Status:       domain.EmbeddingJobStatusPending,
			CreatedAt:    now,
		}
		if err := s.jobRepo.Create(ctx, job); err != nil {
			return nil, err
		}
	}

	return turn, nil
}

// ListBySession returns the turns of one session in order.
func (s *TranscriptService) ListBySession(ctx context.Context, clientID, sessionID string, limit int) ([]*domain.ConversationTranscript, error) {
	repos, err := s.tenants.Resolve(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return repos.Transcripts().ListBySession(ctx, sessionID, limit)
}

// ListByRoom returns the turns spoken in one LiveKit room in order.
func (s *TranscriptService) ListByRoom(ctx context.Context, clientID, roomName string, limit int) ([]*domain.ConversationTranscript, error) {
	repos, err := s.tenants.Resolve(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return repos.Transcripts().ListByRoom(ctx, roomName, limit)
}
