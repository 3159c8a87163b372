package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io"
	cartesiaBaseURL   = "https://api.cartesia.ai"
	cartesiaVersion   = "2024-06-10"
	deepgramBaseURL   = "https://api.deepgram.com"
)

// Voice is one synthesizable voice offered by a TTS vendor.
type Voice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VoiceClient lists voices and verifies vendor credentials. Synthesis itself
// happens inside the agent worker, the control plane only needs validation.
type VoiceClient interface {
	ListVoices(ctx context.Context) ([]Voice, error)
}

// KeyValidator checks a vendor credential without side effects.
type KeyValidator interface {
	ValidateKey(ctx context.Context) error
}

func newVoiceHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// ElevenLabsClient is a thin client for the ElevenLabs voices API.
type ElevenLabsClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewElevenLabsClient(apiKey string) *ElevenLabsClient {
	return &ElevenLabsClient{apiKey: apiKey, baseURL: elevenLabsBaseURL, http: newVoiceHTTPClient()}
}

func (c *ElevenLabsClient) ListVoices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs returned status %d", resp.StatusCode)
	}

	var payload struct {
		Voices []struct {
			VoiceID string `json:"voice_id"`
			Name    string `json:"name"`
		} `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode elevenlabs response: %w", err)
	}

	voices := make([]Voice, 0, len(payload.Voices))
	for _, v := range payload.Voices {
		voices = append(voices, Voice{ID: v.VoiceID, Name: v.Name})
	}
	return voices, nil
}

func (c *ElevenLabsClient) ValidateKey(ctx context.Context) error {
	_, err := c.ListVoices(ctx)
	return err
}

// CartesiaClient is a thin client for the Cartesia voices API.
type CartesiaClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewCartesiaClient(apiKey string) *CartesiaClient {
	return &CartesiaClient{apiKey: apiKey, baseURL: cartesiaBaseURL, http: newVoiceHTTPClient()}
}

func (c *CartesiaClient) ListVoices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Cartesia-Version", cartesiaVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cartesia request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cartesia returned status %d", resp.StatusCode)
	}

	var payload []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode cartesia response: %w", err)
	}

	voices := make([]Voice, 0, len(payload))
	for _, v := range payload {
		voices = append(voices, Voice{ID: v.ID, Name: v.Name})
	}
	return voices, nil
}

func (c *CartesiaClient) ValidateKey(ctx context.Context) error {
	_, err := c.ListVoices(ctx)
	return err
}

// DeepgramClient verifies a Deepgram credential. Transcription streams run in
// the agent worker.
type DeepgramClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewDeepgramClient(apiKey string) *DeepgramClient {
	return &DeepgramClient{apiKey: apiKey, baseURL: deepgramBaseURL, http: newVoiceHTTPClient()}
}

func (c *DeepgramClient) ValidateKey(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/auth/token", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("deepgram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deepgram returned status %d", resp.StatusCode)
	}
	return nil
}
