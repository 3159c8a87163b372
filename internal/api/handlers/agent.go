package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lhyphendixon/sidekick-forge/internal/api"
	"github.com/lhyphendixon/sidekick-forge/internal/api/middleware"
	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/service"
)

type AgentService interface {
	Create(ctx context.Context, input service.CreateAgentInput) (*domain.Agent, error)
	GetBySlug(ctx context.Context, clientID, slug string) (*domain.Agent, error)
	List(ctx context.Context, input service.ListAgentsInput) (*service.ListAgentsOutput, error)
	Update(ctx context.Context, input service.UpdateAgentInput) (*domain.Agent, error)
	Delete(ctx context.Context, clientID, agentID string) error
}

type AgentHandler struct {
	svc AgentService
}

func NewAgentHandler(svc AgentService) *AgentHandler {
	return &AgentHandler{svc: svc}
}

type VoiceConfigRequest struct {
	LLMProvider string  `json:"llm_provider"`
	LLMModel    string  `json:"llm_model"`
	STTProvider string  `json:"stt_provider"`
	STTModel    string  `json:"stt_model"`
	TTSProvider string  `json:"tts_provider"`
	TTSVoiceID  string  `json:"tts_voice_id"`
	Temperature float64 `json:"temperature"`
}

func (v VoiceConfigRequest) toDomain() domain.VoiceConfig {
	return domain.VoiceConfig{
		LLMProvider: domain.LLMProvider(v.LLMProvider),
		LLMModel:    v.LLMModel,
		STTProvider: domain.STTProvider(v.STTProvider),
		STTModel:    v.STTModel,
		TTSProvider: domain.TTSProvider(v.TTSProvider),
		TTSVoiceID:  v.TTSVoiceID,
		Temperature: v.Temperature,
	}
}

type CreateAgentRequest struct {
	Slug         string             `json:"slug"`
	Name         string             `json:"name"`
	SystemPrompt string             `json:"system_prompt"`
	Voice        VoiceConfigRequest `json:"voice"`
}

type UpdateAgentRequest struct {
	Name         string             `json:"name"`
	SystemPrompt string             `json:"system_prompt"`
	Voice        VoiceConfigRequest `json:"voice"`
	Enabled      *bool              `json:"enabled,omitempty"`
}

type AgentResponse struct {
	ID           string             `json:"id"`
	ClientID     string             `json:"client_id"`
	Slug         string             `json:"slug"`
	Name         string             `json:"name"`
	SystemPrompt string             `json:"system_prompt"`
	Voice        domain.VoiceConfig `json:"voice"`
	Enabled      bool               `json:"enabled"`
	CreatedAt    string             `json:"created_at"`
	UpdatedAt    string             `json:"updated_at"`
}

func agentToResponse(a *domain.Agent) *AgentResponse {
	return &AgentResponse{
		ID:           a.ID,
		ClientID:     a.ClientID,
		Slug:         a.Slug,
		Name:         a.Name,
		SystemPrompt: a.SystemPrompt,
		Voice:        a.Voice,
		Enabled:      a.Enabled,
		CreatedAt:    a.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    a.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	if clientID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Slug == "" {
		api.Error(w, http.StatusBadRequest, "slug is required")
		return
	}
	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	input := service.CreateAgentInput{
		ClientID:     clientID,
		Slug:         req.Slug,
		Name:         req.Name,
		SystemPrompt: req.SystemPrompt,
		Voice:        req.Voice.toDomain(),
	}

	agent, err := h.svc.Create(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, agentToResponse(agent))
}

func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	if clientID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		api.Error(w, http.StatusBadRequest, "slug is required")
		return
	}

	agent, err := h.svc.GetBySlug(r.Context(), clientID, slug)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, agentToResponse(agent))
}

type AgentListResponse struct {
	Items   []*AgentResponse `json:"items"`
	Cursor  string           `json:"cursor,omitempty"`
	HasMore bool             `json:"has_more"`
}

func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	if clientID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cursor := r.URL.Query().Get("cursor")
	limitStr := r.URL.Query().Get("limit")
	limit := 20
	if limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	output, err := h.svc.List(r.Context(), service.ListAgentsInput{
		ClientID: clientID,
		Cursor:   cursor,
		Limit:    limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*AgentResponse, len(output.Items))
	for i, a := range output.Items {
		responses[i] = agentToResponse(a)
	}

	api.Success(w, http.StatusOK, AgentListResponse{
		Items:   responses,
		Cursor:  output.Cursor,
		HasMore: output.HasMore,
	})
}

func (h *AgentHandler) Update(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	if clientID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		api.Error(w, http.StatusBadRequest, "slug is required")
		return
	}

	var req UpdateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	agent, err := h.svc.GetBySlug(r.Context(), clientID, slug)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	input := service.UpdateAgentInput{
		ClientID:     clientID,
		AgentID:      agent.ID,
		Name:         req.Name,
		SystemPrompt: req.SystemPrompt,
		Voice:        req.Voice.toDomain(),
		Enabled:      req.Enabled,
	}

	updated, err := h.svc.Update(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, agentToResponse(updated))
}

func (h *AgentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	if clientID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		api.Error(w, http.StatusBadRequest, "slug is required")
		return
	}

	agent, err := h.svc.GetBySlug(r.Context(), clientID, slug)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), clientID, agent.ID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "deleted"})
}
