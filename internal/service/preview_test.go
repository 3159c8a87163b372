package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/providers"
)

func TestPreview(t *testing.T) {
	repos := newMockTenantRepos()
	chat := new(MockChatProvider)
	embedder := new(MockEmbeddingClient)

	repos.agents.On("GetBySlug", mock.Anything, "helper").Return(enabledAgent(), nil)
	embedder.On("GenerateEmbedding", mock.Anything, "What is your refund policy?").Return([]float32{0.1}, nil)
	repos.chunks.On("SearchByEmbedding", mock.Anything, mock.Anything, previewContextChunks).Return([]*SearchResult{
		{Content: "Refunds last 30 days."},
	}, nil)
	chat.On("ChatCompletion", mock.Anything, domain.LLMProviderOpenAI, "gpt-4o-mini",
		mock.MatchedBy(func(messages []providers.ChatMessage) bool {
			if len(messages) != 2 || messages[0].Role != "system" {
				return false
			}
			// Retrieved knowledge gets folded into the system prompt.
			return messages[1].Content == "What is your refund policy?" &&
				containsAll(messages[0].Content, "You are helpful.", "Refunds last 30 days.")
		}), 0.7).Return("Refunds are accepted within 30 days.", nil)

	svc := NewPreviewService(&staticResolver{repos: repos}, chat, embedder)

	out, err := svc.Preview(context.Background(), PreviewInput{
		ClientID:  "client-1",
		AgentSlug: "helper",
		Message:   "What is your refund policy?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Refunds are accepted within 30 days.", out.Reply)
	assert.Equal(t, "agent-1", out.AgentID)
	chat.AssertExpectations(t)
}

func TestPreviewDegradesWhenRetrievalFails(t *testing.T) {
	repos := newMockTenantRepos()
	chat := new(MockChatProvider)
	embedder := new(MockEmbeddingClient)

	repos.agents.On("GetBySlug", mock.Anything, "helper").Return(enabledAgent(), nil)
	embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(nil, assert.AnError)
	chat.On("ChatCompletion", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("Hello!", nil)

	svc := NewPreviewService(&staticResolver{repos: repos}, chat, embedder)

	out, err := svc.Preview(context.Background(), PreviewInput{ClientID: "client-1", AgentSlug: "helper", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", out.Reply)
}

func TestPreviewDisabledAgent(t *testing.T) {
	repos := newMockTenantRepos()
	agent := enabledAgent()
	agent.Enabled = false
	repos.agents.On("GetBySlug", mock.Anything, "helper").Return(agent, nil)

	svc := NewPreviewService(&staticResolver{repos: repos}, new(MockChatProvider), nil)

	_, err := svc.Preview(context.Background(), PreviewInput{ClientID: "client-1", AgentSlug: "helper", Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrAgentDisabled)
}

func TestPreviewRequiresMessage(t *testing.T) {
	svc := NewPreviewService(&staticResolver{repos: newMockTenantRepos()}, new(MockChatProvider), nil)

	_, err := svc.Preview(context.Background(), PreviewInput{ClientID: "client-1", AgentSlug: "helper"})
	assert.Error(t, err)
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
