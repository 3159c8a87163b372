package providers

import (
	"context"
	"fmt"

	"github.com/lhyphendixon/sidekick-forge/internal/config"
	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/resilience"
)

// Registry holds one client per configured provider. Providers without a key
// are absent, and asking for them is a configuration error rather than a
// request-time fallback. All outbound LLM calls go through a named circuit
// breaker.
type Registry struct {
	chat      map[domain.LLMProvider]ChatClient
	voice     map[domain.TTSProvider]VoiceClient
	embedding *EmbeddingClient
	deepgram  *DeepgramClient
	breakers  *resilience.Registry
}

func NewRegistry(cfg *config.Config, breakers *resilience.Registry) *Registry {
	r := &Registry{
		chat:     make(map[domain.LLMProvider]ChatClient),
		voice:    make(map[domain.TTSProvider]VoiceClient),
		breakers: breakers,
	}

	if cfg.OpenAIAPIKey != "" {
		r.chat[domain.LLMProviderOpenAI] = newOpenAICompatClient(cfg.OpenAIAPIKey, baseURLFor(domain.LLMProviderOpenAI))
		r.embedding = NewEmbeddingClient(cfg.OpenAIAPIKey)
	}
	if cfg.GroqAPIKey != "" {
		r.chat[domain.LLMProviderGroq] = newOpenAICompatClient(cfg.GroqAPIKey, baseURLFor(domain.LLMProviderGroq))
	}
	if cfg.SiliconFlowAPIKey != "" {
		r.chat[domain.LLMProviderSiliconFlow] = newOpenAICompatClient(cfg.SiliconFlowAPIKey, baseURLFor(domain.LLMProviderSiliconFlow))
	}
	if cfg.ElevenLabsAPIKey != "" {
		r.voice[domain.TTSProviderElevenLabs] = NewElevenLabsClient(cfg.ElevenLabsAPIKey)
	}
	if cfg.CartesiaAPIKey != "" {
		r.voice[domain.TTSProviderCartesia] = NewCartesiaClient(cfg.CartesiaAPIKey)
	}
	if cfg.DeepgramAPIKey != "" {
		r.deepgram = NewDeepgramClient(cfg.DeepgramAPIKey)
	}

	return r
}

// Chat returns the chat client for a provider, or a configuration error when
// its key is not set.
func (r *Registry) Chat(provider domain.LLMProvider) (ChatClient, error) {
	client, ok := r.chat[provider]
	if !ok {
		return nil, &domain.DomainError{
			Code:    domain.ErrCodeConfiguration,
			Message: fmt.Sprintf("llm provider %q is not configured", provider),
		}
	}
	return client, nil
}

// ChatCompletion runs one completion through the provider's circuit breaker.
func (r *Registry) ChatCompletion(ctx context.Context, provider domain.LLMProvider, model string, messages []ChatMessage, temperature float64) (string, error) {
	client, err := r.Chat(provider)
	if err != nil {
		return "", err
	}

	var reply string
	err = r.breakers.Execute(ctx, "llm."+string(provider), func(ctx context.Context) error {
		var callErr error
		reply, callErr = client.ChatCompletion(ctx, model, messages, temperature)
		return callErr
	})
	return reply, err
}

// Embeddings returns the embedding client, or a configuration error when the
// OpenAI key is not set.
func (r *Registry) Embeddings() (*EmbeddingClient, error) {
	if r.embedding == nil {
		return nil, &domain.DomainError{
			Code:    domain.ErrCodeConfiguration,
			Message: "embedding provider is not configured, set OPENAI_API_KEY",
		}
	}
	return r.embedding, nil
}

// GenerateEmbedding embeds text through the embedding circuit breaker.
func (r *Registry) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	client, err := r.Embeddings()
	if err != nil {
		return nil, err
	}

	var embedding []float32
	err = r.breakers.Execute(ctx, "embeddings.openai", func(ctx context.Context) error {
		var callErr error
		embedding, callErr = client.GenerateEmbedding(ctx, text)
		return callErr
	})
	return embedding, err
}

// Voices returns the voice client for a TTS provider.
func (r *Registry) Voices(provider domain.TTSProvider) (VoiceClient, error) {
	client, ok := r.voice[provider]
	if !ok {
		return nil, &domain.DomainError{
			Code:    domain.ErrCodeConfiguration,
			Message: fmt.Sprintf("tts provider %q is not configured", provider),
		}
	}
	return client, nil
}

// ValidateAll probes every configured provider credential. Called once at
// startup so a revoked key surfaces immediately.
func (r *Registry) ValidateAll(ctx context.Context) error {
	for provider, client := range r.voice {
		if validator, ok := client.(KeyValidator); ok {
			if err := validator.ValidateKey(ctx); err != nil {
				return fmt.Errorf("tts provider %q credential check failed: %w", provider, err)
			}
		}
	}
	if r.deepgram != nil {
		if err := r.deepgram.ValidateKey(ctx); err != nil {
			return fmt.Errorf("stt provider \"deepgram\" credential check failed: %w", err)
		}
	}
	return nil
}
