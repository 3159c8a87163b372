package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhyphendixon/sidekick-forge/internal/config"
	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/resilience"
)

func testBreakers() *resilience.Registry {
	return resilience.NewRegistry(resilience.Settings{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      time.Second,
	})
}

func TestRegistryConfiguredProviders(t *testing.T) {
	cfg := &config.Config{
		OpenAIAPIKey: "sk-test-key-long-enough-000",
		GroqAPIKey:   "gsk_test-key-long-enough-000",
	}
	r := NewRegistry(cfg, testBreakers())

	_, err := r.Chat(domain.LLMProviderOpenAI)
	assert.NoError(t, err)
	_, err = r.Chat(domain.LLMProviderGroq)
	assert.NoError(t, err)
	_, err = r.Embeddings()
	assert.NoError(t, err)
}

func TestRegistryUnconfiguredProviderIsConfigurationError(t *testing.T) {
	r := NewRegistry(&config.Config{}, testBreakers())

	_, err := r.Chat(domain.LLMProviderGroq)
	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeConfiguration, domainErr.Code)

	_, err = r.Embeddings()
	require.Error(t, err)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeConfiguration, domainErr.Code)

	_, err = r.Voices(domain.TTSProviderElevenLabs)
	require.Error(t, err)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeConfiguration, domainErr.Code)
}

func TestEmbeddingClientRejectsEmptyText(t *testing.T) {
	client := NewEmbeddingClient("sk-test")
	_, err := client.GenerateEmbedding(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
}
