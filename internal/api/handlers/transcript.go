package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/lhyphendixon/sidekick-forge/internal/api"
	"github.com/lhyphendixon/sidekick-forge/internal/api/middleware"
	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/service"
)

type TranscriptService interface {
	Append(ctx context.Context, input service.AppendTurnInput) (*domain.ConversationTranscript, error)
	ListBySession(ctx context.Context, clientID, sessionID string, limit int) ([]*domain.ConversationTranscript, error)
	ListByRoom(ctx context.Context, clientID, roomName string, limit int) ([]*domain.ConversationTranscript, error)
}

type TranscriptHandler struct {
	svc TranscriptService
}

func NewTranscriptHandler(svc TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{svc: svc}
}

type AppendTurnRequest struct {
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
	RoomName  string `json:"room_name"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

type TranscriptResponse struct {
	ID        string `json:"id"`
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
	RoomName  string `json:"room_name"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func transcriptToResponse(t *domain.ConversationTranscript) *TranscriptResponse {
	return &TranscriptResponse{
		ID:        t.ID,
		AgentID:   t.AgentID,
		SessionID: t.SessionID,
		RoomName:  t.RoomName,
		Role:      string(t.Role),
		Content:   t.Content,
		CreatedAt: t.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *TranscriptHandler) Append(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	if clientID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AppendTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SessionID == "" {
		api.Error(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.Role == "" {
		api.Error(w, http.StatusBadRequest, "role is required")
		return
	}

	turn, err := h.svc.Append(r.Context(), service.AppendTurnInput{
		ClientID:  clientID,
		AgentID:   req.AgentID,
		SessionID: req.SessionID,
		RoomName:  req.RoomName,
		Role:      domain.TranscriptRole(req.Role),
		Content:   req.Content,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, transcriptToResponse(turn))
}

func (h *TranscriptHandler) List(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	if clientID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessionID := r.URL.Query().Get("session")
	roomName := r.URL.Query().Get("room")
	if sessionID == "" && roomName == "" {
		api.Error(w, http.StatusBadRequest, "session or room is required")
		return
	}

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var (
		turns []*domain.ConversationTranscript
		err   error
	)
	if sessionID != "" {
		turns, err = h.svc.ListBySession(r.Context(), clientID, sessionID, limit)
	} else {
		turns, err = h.svc.ListByRoom(r.Context(), clientID, roomName, limit)
	}
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*TranscriptResponse, len(turns))
	for i, t := range turns {
		responses[i] = transcriptToResponse(t)
	}

	api.Success(w, http.StatusOK, responses)
}
