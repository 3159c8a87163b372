package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lhyphendixon/sidekick-forge/internal/api"
	"github.com/lhyphendixon/sidekick-forge/internal/api/middleware"
	"github.com/lhyphendixon/sidekick-forge/internal/service"
	"github.com/lhyphendixon/sidekick-forge/internal/worker"
)

type TriggerService interface {
	Trigger(ctx context.Context, input service.TriggerInput) (*service.TriggerResult, error)
	StopSession(ctx context.Context, clientID, sessionID string) error
	ListSessions(clientID string) []worker.Session
}

type PreviewService interface {
	Preview(ctx context.Context, input service.PreviewInput) (*service.PreviewOutput, error)
}

type TriggerHandler struct {
	triggers TriggerService
	previews PreviewService
}

func NewTriggerHandler(triggers TriggerService, previews PreviewService) *TriggerHandler {
	return &TriggerHandler{triggers: triggers, previews: previews}
}

type TriggerRequest struct {
	UserIdentity string `json:"user_identity"`
	UserName     string `json:"user_name,omitempty"`
}

type TriggerResponse struct {
	SessionID  string `json:"session_id"`
	RoomName   string `json:"room_name"`
	LiveKitURL string `json:"livekit_url"`
	UserToken  string `json:"user_token"`
	AgentID    string `json:"agent_id"`
	AgentName  string `json:"agent_name"`
	StartedAt  string `json:"started_at"`
}

func (h *TriggerHandler) Trigger(w http.ResponseWriter, r *http.Request) {
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

	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserIdentity == "" {
		api.Error(w, http.StatusBadRequest, "user_identity is required")
		return
	}

	result, err := h.triggers.Trigger(r.Context(), service.TriggerInput{
		ClientID:     clientID,
		AgentSlug:    slug,
		UserIdentity: req.UserIdentity,
		UserName:     req.UserName,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, TriggerResponse{
		SessionID:  result.SessionID,
		RoomName:   result.RoomName,
		LiveKitURL: result.LiveKitURL,
		UserToken:  result.UserToken,
		AgentID:    result.AgentID,
		AgentName:  result.AgentName,
		StartedAt:  result.StartedAt.Format("2006-01-02T15:04:05Z"),
	})
}

type PreviewRequest struct {
	Message string `json:"message"`
}

type PreviewResponse struct {
	Reply     string `json:"reply"`
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name"`
}

func (h *TriggerHandler) Preview(w http.ResponseWriter, r *http.Request) {
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

	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Message == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	output, err := h.previews.Preview(r.Context(), service.PreviewInput{
		ClientID:  clientID,
		AgentSlug: slug,
		Message:   req.Message,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, PreviewResponse{
		Reply:     output.Reply,
		AgentID:   output.AgentID,
		AgentName: output.AgentName,
	})
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
	AgentID   string `json:"agent_id"`
	RoomName  string `json:"room_name"`
	StartedAt string `json:"started_at"`
}

func (h *TriggerHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	if clientID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessions := h.triggers.ListSessions(clientID)

	responses := make([]*SessionResponse, len(sessions))
	for i, s := range sessions {
		responses[i] = &SessionResponse{
			SessionID: s.SessionID,
			AgentID:   s.AgentID,
			RoomName:  s.RoomName,
			StartedAt: s.StartedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	api.Success(w, http.StatusOK, responses)
}

func (h *TriggerHandler) StopSession(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	if clientID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.triggers.StopSession(r.Context(), clientID, sessionID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "stopped"})
}
