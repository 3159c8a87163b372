package domain

import (
	"fmt"
	"time"
)

// LLMProvider identifies the chat-completion vendor for an agent.
type LLMProvider string

const (
	LLMProviderOpenAI      LLMProvider = "openai"
	LLMProviderGroq        LLMProvider = "groq"
	LLMProviderSiliconFlow LLMProvider = "siliconflow"
)

// STTProvider identifies the speech-to-text vendor for an agent.
type STTProvider string

const (
	STTProviderDeepgram STTProvider = "deepgram"
	STTProviderOpenAI   STTProvider = "openai"
	STTProviderGroq     STTProvider = "groq"
)

// TTSProvider identifies the text-to-speech vendor for an agent.
type TTSProvider string

const (
	TTSProviderElevenLabs TTSProvider = "elevenlabs"
	TTSProviderCartesia   TTSProvider = "cartesia"
	TTSProviderOpenAI     TTSProvider = "openai"
)

// VoiceConfig holds the provider wiring for an agent persona. The worker
// process receives this verbatim; the backend only validates it.
type VoiceConfig struct {
	LLMProvider LLMProvider `json:"llm_provider"`
	LLMModel    string      `json:"llm_model"`
	STTProvider STTProvider `json:"stt_provider"`
	STTModel    string      `json:"stt_model"`
	TTSProvider TTSProvider `json:"tts_provider"`
	TTSVoiceID  string      `json:"tts_voice_id"`
	Temperature float64     `json:"temperature"`
}

// Agent represents a configured LLM+STT+TTS persona deployed as a LiveKit
// worker job.
type Agent struct {
	ID           string
	ClientID     string
	Slug         string
	Name         string
	SystemPrompt string
	Voice        VoiceConfig
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAgent creates a new enabled Agent instance.
func NewAgent(id, clientID, slug, name, systemPrompt string, voice VoiceConfig, now time.Time) *Agent {
	return &Agent{
		ID:           id,
		ClientID:     clientID,
		Slug:         slug,
		Name:         name,
		SystemPrompt: systemPrompt,
		Voice:        voice,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ValidateAgent validates an Agent instance
func ValidateAgent(a *Agent) error {
	if a == nil {
		return fmt.Errorf("agent cannot be nil")
	}
	if a.ID == "" {
		return fmt.Errorf("agent ID is required")
	}
	if a.ClientID == "" {
		return fmt.Errorf("agent ClientID is required")
	}
	if a.Slug == "" {
		return fmt.Errorf("agent Slug is required")
	}
	if a.Name == "" {
		return fmt.Errorf("agent Name is required")
	}
	return ValidateVoiceConfig(a.Voice)
}

// ValidateVoiceConfig checks provider identifiers and required model fields.
func ValidateVoiceConfig(v VoiceConfig) error {
	if !isValidLLMProvider(v.LLMProvider) {
		return fmt.Errorf("llm provider is invalid: %s", v.LLMProvider)
	}
	if v.LLMModel == "" {
		return fmt.Errorf("llm model is required")
	}
	if !isValidSTTProvider(v.STTProvider) {
		return fmt.Errorf("stt provider is invalid: %s", v.STTProvider)
	}
	if !isValidTTSProvider(v.TTSProvider) {
		return fmt.Errorf("tts provider is invalid: %s", v.TTSProvider)
	}
	if v.TTSProvider != TTSProviderOpenAI && v.TTSVoiceID == "" {
		return fmt.Errorf("tts voice id is required for provider %s", v.TTSProvider)
	}
	if v.Temperature < 0 || v.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	return nil
}

func isValidLLMProvider(p LLMProvider) bool {
	switch p {
	case LLMProviderOpenAI, LLMProviderGroq, LLMProviderSiliconFlow:
		return true
	}
	return false
}

func isValidSTTProvider(p STTProvider) bool {
	switch p {
	case STTProviderDeepgram, STTProviderOpenAI, STTProviderGroq:
		return true
	}
	return false
}

func isValidTTSProvider(p TTSProvider) bool {
	switch p {
	case TTSProviderElevenLabs, TTSProviderCartesia, TTSProviderOpenAI:
		return true
	}
	return false
}
