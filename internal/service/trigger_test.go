package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/livekit"
	"github.com/lhyphendixon/sidekick-forge/internal/worker"
)

func enabledAgent() *domain.Agent {
	return domain.NewAgent("agent-1", "client-1", "helper", "Helper", "You are helpful.", testVoiceConfig(), testTime())
}

func TestTrigger(t *testing.T) {
	repos := newMockTenantRepos()
	rooms := newMockRoomClient()
	workers := new(MockWorkerManager)

	repos.agents.On("GetBySlug", mock.Anything, "helper").Return(enabledAgent(), nil)
	rooms.On("CreateRoom", mock.Anything, mock.MatchedBy(func(name string) bool {
		return len(name) > 0
	}), roomEmptyTimeout).Return(&livekit.Room{SID: "RM_1"}, nil)
	workers.On("Spawn", mock.Anything, mock.MatchedBy(func(req worker.SpawnRequest) bool {
		return req.ClientID == "client-1" && req.AgentSlug == "helper" && req.AccessToken != ""
	})).Return(&worker.Session{SessionID: "s", PID: 4242, StartedAt: testTime()}, nil)

	svc := NewTriggerServiceWithUUIDGen(&staticResolver{repos: repos}, rooms, workers, "wss://lk.example.com", &seqUUIDGen{})

	result, err := svc.Trigger(context.Background(), TriggerInput{
		ClientID:     "client-1",
		AgentSlug:    "helper",
		UserIdentity: "user-1",
		UserName:     "Alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID)
	assert.Contains(t, result.RoomName, "agent-helper-")
	assert.NotEmpty(t, result.UserToken)
	assert.Equal(t, 4242, result.WorkerPID)
	assert.Equal(t, "wss://lk.example.com", result.LiveKitURL)
	workers.AssertExpectations(t)
}

func TestTriggerDisabledAgent(t *testing.T) {
	repos := newMockTenantRepos()
	agent := enabledAgent()
	agent.Enabled = false
	repos.agents.On("GetBySlug", mock.Anything, "helper").Return(agent, nil)

	svc := NewTriggerServiceWithUUIDGen(&staticResolver{repos: repos}, newMockRoomClient(), new(MockWorkerManager), "wss://lk", &seqUUIDGen{})

	_, err := svc.Trigger(context.Background(), TriggerInput{ClientID: "client-1", AgentSlug: "helper", UserIdentity: "u"})
	assert.ErrorIs(t, err, domain.ErrAgentDisabled)
}

func TestTriggerWithoutLiveKit(t *testing.T) {
	svc := NewTriggerServiceWithUUIDGen(&staticResolver{repos: newMockTenantRepos()}, nil, new(MockWorkerManager), "", &seqUUIDGen{})

	_, err := svc.Trigger(context.Background(), TriggerInput{ClientID: "client-1", AgentSlug: "helper", UserIdentity: "u"})
	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeConfiguration, domainErr.Code)
}

func TestTriggerSpawnFailureDeletesRoom(t *testing.T) {
	repos := newMockTenantRepos()
	rooms := newMockRoomClient()
	workers := new(MockWorkerManager)

	repos.agents.On("GetBySlug", mock.Anything, "helper").Return(enabledAgent(), nil)
	rooms.On("CreateRoom", mock.Anything, mock.Anything, mock.Anything).Return(&livekit.Room{}, nil)
	rooms.On("DeleteRoom", mock.Anything, mock.Anything).Return(nil)
	workers.On("Spawn", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	svc := NewTriggerServiceWithUUIDGen(&staticResolver{repos: repos}, rooms, workers, "wss://lk", &seqUUIDGen{})

	_, err := svc.Trigger(context.Background(), TriggerInput{ClientID: "client-1", AgentSlug: "helper", UserIdentity: "u"})
	require.Error(t, err)
	rooms.AssertCalled(t, "DeleteRoom", mock.Anything, mock.Anything)
}

func TestStopSessionChecksOwnership(t *testing.T) {
	workers := new(MockWorkerManager)
	workers.On("Get", "sess-1").Return(&worker.Session{
		SessionID: "sess-1",
		ClientID:  "other-client",
		RoomName:  "room-1",
	}, true)

	svc := NewTriggerServiceWithUUIDGen(&staticResolver{repos: newMockTenantRepos()}, newMockRoomClient(), workers, "wss://lk", &seqUUIDGen{})

	err := svc.StopSession(context.Background(), "client-1", "sess-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotRunning)
	workers.AssertNotCalled(t, "Stop", mock.Anything, mock.Anything)
}

func TestStopSession(t *testing.T) {
	rooms := newMockRoomClient()
	workers := new(MockWorkerManager)
	workers.On("Get", "sess-1").Return(&worker.Session{
		SessionID: "sess-1",
		ClientID:  "client-1",
		RoomName:  "room-1",
	}, true)
	workers.On("Stop", mock.Anything, "sess-1").Return(nil)
	rooms.On("DeleteRoom", mock.Anything, "room-1").Return(nil)

	svc := NewTriggerServiceWithUUIDGen(&staticResolver{repos: newMockTenantRepos()}, rooms, workers, "wss://lk", &seqUUIDGen{})

	require.NoError(t, svc.StopSession(context.Background(), "client-1", "sess-1"))
	rooms.AssertExpectations(t)
}

func TestListSessionsFiltersByClient(t *testing.T) {
	workers := new(MockWorkerManager)
	workers.On("List").Return([]worker.Session{
		{SessionID: "s1", ClientID: "client-1"},
		{SessionID: "s2", ClientID: "client-2"},
		{SessionID: "s3", ClientID: "client-1"},
	})

	svc := NewTriggerServiceWithUUIDGen(&staticResolver{repos: newMockTenantRepos()}, newMockRoomClient(), workers, "wss://lk", &seqUUIDGen{})

	sessions := svc.ListSessions("client-1")
	assert.Len(t, sessions, 2)
}
