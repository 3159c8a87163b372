package service

import (
	"context"
	"strings"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/providers"
	"github.com/lhyphendixon/sidekick-forge/internal/telemetry"
)

// previewContextChunks caps how much retrieved context pads the prompt.
const previewContextChunks = 4

// ChatProvider runs a completion against a named LLM vendor.
type ChatProvider interface {
	ChatCompletion(ctx context.Context, provider domain.LLMProvider, model string, messages []providers.ChatMessage, temperature float64) (string, error)
}

// PreviewService answers a single text turn with an agent's persona without
// spawning a voice worker. Used for testing an agent from the dashboard.
type PreviewService struct {
	tenants  TenantResolver
	chat     ChatProvider
	embedder EmbeddingClient
}

func NewPreviewService(tenants TenantResolver, chat ChatProvider, embedder EmbeddingClient) *PreviewService {
	return &PreviewService{tenants: tenants, chat: chat, embedder: embedder}
}

type PreviewInput struct {
	ClientID  string
	AgentSlug string
	Message   string
}

type PreviewOutput struct {
	Reply     string
	AgentID   string
	AgentName string
}

// Preview resolves the agent, optionally augments the prompt with retrieved
// knowledge and runs one completion.
func (s *PreviewService) Preview(ctx context.Context, input PreviewInput) (*PreviewOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "PreviewService.Preview", telemetry.SpanAttributes{
		ClientID:  input.ClientID,
		Operation: "preview",
	})
	defer span.End()

	if input.Message == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "message is required")
	}

	repos, err := s.tenants.Resolve(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	agent, err := repos.Agents().GetBySlug(ctx, input.AgentSlug)
	if err != nil {
		return nil, err
	}
	if !agent.Enabled {
		return nil, domain.ErrAgentDisabled
	}

	systemPrompt := agent.SystemPrompt
	if knowledge := s.retrieveContext(ctx, repos, input.Message); knowledge != "" {
		systemPrompt = systemPrompt + "\n\nRelevant knowledge:\n" + knowledge
	}

	messages := []providers.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: input.Message},
	}

	reply, err := s.chat.ChatCompletion(ctx, agent.Voice.LLMProvider, agent.Voice.LLMModel, messages, agent.Voice.Temperature)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &PreviewOutput{
		Reply:     reply,
		AgentID:   agent.ID,
		AgentName: agent.Name,
	}, nil
}

// retrieveContext embeds the message and pulls the closest knowledge chunks.
// Retrieval failures degrade to an unaugmented prompt rather than failing the
// preview.
func (s *PreviewService) retrieveContext(ctx context.Context, repos TenantRepositories, message string) string {
	if s.embedder == nil {
		return ""
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, message)
	if err != nil {
		telemetry.CaptureError(ctx, err)
		return ""
	}

	results, err := repos.Chunks().SearchByEmbedding(ctx, embedding, previewContextChunks)
	if err != nil {
		telemetry.CaptureError(ctx, err)
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, "- "+r.Content)
	}
	return strings.Join(parts, "\n")
}
