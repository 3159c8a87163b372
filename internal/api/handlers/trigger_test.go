package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/service"
	"github.com/lhyphendixon/sidekick-forge/internal/worker"
)

type MockTriggerService struct {
	mock.Mock
}

func (m *MockTriggerService) Trigger(ctx context.Context, input service.TriggerInput) (*service.TriggerResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TriggerResult), args.Error(1)
}

func (m *MockTriggerService) StopSession(ctx context.Context, clientID, sessionID string) error {
	args := m.Called(ctx, clientID, sessionID)
	return args.Error(0)
}

func (m *MockTriggerService) ListSessions(clientID string) []worker.Session {
	args := m.Called(clientID)
	return args.Get(0).([]worker.Session)
}

type MockPreviewService struct {
	mock.Mock
}

func (m *MockPreviewService) Preview(ctx context.Context, input service.PreviewInput) (*service.PreviewOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PreviewOutput), args.Error(1)
}

func TestTriggerHandler_Trigger_Success(t *testing.T) {
	mockTriggers := new(MockTriggerService)
	mockPreviews := new(MockPreviewService)
	handler := NewTriggerHandler(mockTriggers, mockPreviews)

	result := &service.TriggerResult{
		SessionID:  "session-123",
		RoomName:   "agent-support-bot-12345678",
		LiveKitURL: "wss://livekit.example.com",
		UserToken:  "jwt-token",
		AgentID:    "agent-123",
		AgentName:  "Support Bot",
		StartedAt:  time.Now().UTC(),
	}
	mockTriggers.On("Trigger", mock.Anything, mock.MatchedBy(func(input service.TriggerInput) bool {
		return input.ClientID == "client-456" && input.AgentSlug == "support-bot" && input.UserIdentity == "user-1"
	})).Return(result, nil)

	body := `{"user_identity":"user-1","user_name":"Alice"}`
	req := requestWithClientID(http.MethodPost, "/agents/support-bot/trigger", []byte(body))
	req = withURLParam(req, "slug", "support-bot")
	w := httptest.NewRecorder()

	handler.Trigger(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "session-123", data["session_id"])
	assert.Equal(t, "jwt-token", data["user_token"])
	assert.Equal(t, "wss://livekit.example.com", data["livekit_url"])
	mockTriggers.AssertExpectations(t)
}

func TestTriggerHandler_Trigger_MissingIdentity(t *testing.T) {
	handler := NewTriggerHandler(new(MockTriggerService), new(MockPreviewService))

	body := `{"user_name":"Alice"}`
	req := requestWithClientID(http.MethodPost, "/agents/support-bot/trigger", []byte(body))
	req = withURLParam(req, "slug", "support-bot")
	w := httptest.NewRecorder()

	handler.Trigger(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "user_identity is required")
}

func TestTriggerHandler_Trigger_AgentDisabled(t *testing.T) {
	mockTriggers := new(MockTriggerService)
	handler := NewTriggerHandler(mockTriggers, new(MockPreviewService))

	mockTriggers.On("Trigger", mock.Anything, mock.Anything).Return(nil, domain.ErrAgentDisabled)

	body := `{"user_identity":"user-1"}`
	req := requestWithClientID(http.MethodPost, "/agents/support-bot/trigger", []byte(body))
	req = withURLParam(req, "slug", "support-bot")
	w := httptest.NewRecorder()

	handler.Trigger(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "agent is disabled")
}

func TestTriggerHandler_Trigger_Unauthorized(t *testing.T) {
	handler := NewTriggerHandler(new(MockTriggerService), new(MockPreviewService))

	body := `{"user_identity":"user-1"}`
	req := httptest.NewRequest(http.MethodPost, "/agents/support-bot/trigger", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Trigger(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTriggerHandler_Preview_Success(t *testing.T) {
	mockPreviews := new(MockPreviewService)
	handler := NewTriggerHandler(new(MockTriggerService), mockPreviews)

	mockPreviews.On("Preview", mock.Anything, mock.MatchedBy(func(input service.PreviewInput) bool {
		return input.ClientID == "client-456" && input.AgentSlug == "support-bot" && input.Message == "hello"
	})).Return(&service.PreviewOutput{
		Reply:     "hi there",
		AgentID:   "agent-123",
		AgentName: "Support Bot",
	}, nil)

	body := `{"message":"hello"}`
	req := requestWithClientID(http.MethodPost, "/agents/support-bot/preview", []byte(body))
	req = withURLParam(req, "slug", "support-bot")
	w := httptest.NewRecorder()

	handler.Preview(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "hi there", data["reply"])
	mockPreviews.AssertExpectations(t)
}

func TestTriggerHandler_Preview_MissingMessage(t *testing.T) {
	handler := NewTriggerHandler(new(MockTriggerService), new(MockPreviewService))

	body := `{}`
	req := requestWithClientID(http.MethodPost, "/agents/support-bot/preview", []byte(body))
	req = withURLParam(req, "slug", "support-bot")
	w := httptest.NewRecorder()

	handler.Preview(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "message is required")
}

func TestTriggerHandler_ListSessions(t *testing.T) {
	mockTriggers := new(MockTriggerService)
	handler := NewTriggerHandler(mockTriggers, new(MockPreviewService))

	mockTriggers.On("ListSessions", "client-456").Return([]worker.Session{
		{SessionID: "session-1", ClientID: "client-456", AgentID: "agent-123", RoomName: "room-1", PID: 4242, StartedAt: time.Now().UTC()},
	})

	req := requestWithClientID(http.MethodGet, "/sessions", nil)
	w := httptest.NewRecorder()

	handler.ListSessions(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].([]interface{})
	require.Len(t, data, 1)
	session := data[0].(map[string]interface{})
	assert.Equal(t, "session-1", session["session_id"])
	mockTriggers.AssertExpectations(t)
}

func TestTriggerHandler_StopSession_NotFound(t *testing.T) {
	mockTriggers := new(MockTriggerService)
	handler := NewTriggerHandler(mockTriggers, new(MockPreviewService))

	mockTriggers.On("StopSession", mock.Anything, "client-456", "session-unknown").Return(domain.ErrSessionNotRunning)

	req := requestWithClientID(http.MethodDelete, "/sessions/session-unknown", nil)
	req = withURLParam(req, "id", "session-unknown")
	w := httptest.NewRecorder()

	handler.StopSession(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTriggerHandler_StopSession_Success(t *testing.T) {
	mockTriggers := new(MockTriggerService)
	handler := NewTriggerHandler(mockTriggers, new(MockPreviewService))

	mockTriggers.On("StopSession", mock.Anything, "client-456", "session-1").Return(nil)

	req := requestWithClientID(http.MethodDelete, "/sessions/session-1", nil)
	req = withURLParam(req, "id", "session-1")
	w := httptest.NewRecorder()

	handler.StopSession(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stopped")
	mockTriggers.AssertExpectations(t)
}
