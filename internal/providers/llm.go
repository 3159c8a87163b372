package providers

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/lhyphendixon/sidekick-forge/internal/domain"
)

// OpenAI-compatible base URLs for vendors that speak the same wire format.
const (
	groqBaseURL        = "https://api.groq.com/openai/v1"
	siliconFlowBaseURL = "https://api.siliconflow.cn/v1"
)

// ChatMessage is one turn handed to an LLM.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatClient runs one chat completion.
type ChatClient interface {
	ChatCompletion(ctx context.Context, model string, messages []ChatMessage, temperature float64) (string, error)
}

// openAICompatClient serves OpenAI, Groq and SiliconFlow; they differ only in
// base URL and key.
type openAICompatClient struct {
	client *openai.Client
}

func newOpenAICompatClient(apiKey, baseURL string) *openAICompatClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openAICompatClient{client: openai.NewClientWithConfig(cfg)}
}

func (c *openAICompatClient) ChatCompletion(ctx context.Context, model string, messages []ChatMessage, temperature float64) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: float32(temperature),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func baseURLFor(provider domain.LLMProvider) string {
	switch provider {
	case domain.LLMProviderGroq:
		return groqBaseURL
	case domain.LLMProviderSiliconFlow:
		return siliconFlowBaseURL
	default:
		return ""
	}
}
