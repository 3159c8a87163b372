package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/livekit"
	"github.com/lhyphendixon/sidekick-forge/internal/telemetry"
	"github.com/lhyphendixon/sidekick-forge/internal/worker"
)

// roomEmptyTimeout tears down idle rooms server-side.
const roomEmptyTimeout = 5 * time.Minute

// RoomClient is the slice of the LiveKit API the trigger flow needs.
type RoomClient interface {
	CreateRoom(ctx context.Context, name string, emptyTimeout time.Duration) (*livekit.Room, error)
	DeleteRoom(ctx context.Context, name string) error
	Minter() *livekit.TokenMinter
}

// WorkerManager supervises agent worker subprocesses.
type WorkerManager interface {
	Spawn(ctx context.Context, req worker.SpawnRequest) (*worker.Session, error)
	Stop(ctx context.Context, sessionID string) error
	Get(sessionID string) (*worker.Session, bool)
	List() []worker.Session
}

// TriggerService starts and stops live agent sessions: it ensures the room
// exists, mints join tokens and spawns the worker subprocess that carries the
// conversation.
type TriggerService struct {
	tenants    TenantResolver
	rooms      RoomClient
	workers    WorkerManager
	livekitURL string
	uuidGen    UUIDGenerator
}

func NewTriggerService(tenants TenantResolver, rooms RoomClient, workers WorkerManager, livekitURL string) *TriggerService {
	return &TriggerService{
		tenants:    tenants,
		rooms:      rooms,
		workers:    workers,
		livekitURL: livekitURL,
		uuidGen:    &DefaultUUIDGenerator{},
	}
}

func NewTriggerServiceWithUUIDGen(tenants TenantResolver, rooms RoomClient, workers WorkerManager, livekitURL string, uuidGen UUIDGenerator) *TriggerService {
	s := NewTriggerService(tenants, rooms, workers, livekitURL)
	s.uuidGen = uuidGen
	return s
}

type TriggerInput struct {
	ClientID     string
	AgentSlug    string
	UserIdentity string
	UserName     string
}

type TriggerResult struct {
	SessionID    string
	RoomName     string
	LiveKitURL   string
	UserToken    string
	WorkerPID    int
	AgentID      string
	AgentName    string
	StartedAt    time.Time
	SystemPrompt string
}

// Trigger starts a session against an agent: creates the room, spawns the
// worker with an agent-scoped token and returns a join token for the user.
func (s *TriggerService) Trigger(ctx context.Context, input TriggerInput) (*TriggerResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "TriggerService.Trigger", telemetry.SpanAttributes{
		ClientID:  input.ClientID,
		Operation: "trigger",
	})
	defer span.End()

	if s.rooms == nil {
		return nil, domain.NewDomainError(domain.ErrCodeConfiguration, "livekit is not configured")
	}
	if input.UserIdentity == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "user identity is required")
	}

	repos, err := s.tenants.Resolve(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	agent, err := repos.Agents().GetBySlug(ctx, input.AgentSlug)
	if err != nil {
		return nil, err
	}
	if !agent.Enabled {
		return nil, domain.ErrAgentDisabled
	}

	sessionID := s.uuidGen.NewString()
	roomName := fmt.Sprintf("agent-%s-%s", agent.Slug, sessionID[:8])

	if _, err := s.rooms.CreateRoom(ctx, roomName, roomEmptyTimeout); err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "failed to create livekit room", err)
	}

	minter := s.rooms.Minter()
	agentToken, err := minter.MintAgentToken(roomName, "agent-"+sessionID[:8])
	if err != nil {
		return nil, err
	}
	userToken, err := minter.MintJoinToken(roomName, input.UserIdentity, input.UserName)
	if err != nil {
		return nil, err
	}

	session, err := s.workers.Spawn(ctx, worker.SpawnRequest{
		SessionID:   sessionID,
		ClientID:    input.ClientID,
		AgentID:     agent.ID,
		AgentSlug:   agent.Slug,
		RoomName:    roomName,
		LiveKitURL:  s.livekitURL,
		AccessToken: agentToken,
	})
	if err != nil {
		// Clean up the room so a retry does not collide with a half-started
		// session.
		_ = s.rooms.DeleteRoom(ctx, roomName)
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to spawn agent worker", err)
	}

	return &TriggerResult{
		SessionID:    sessionID,
		RoomName:     roomName,
		LiveKitURL:   s.livekitURL,
		UserToken:    userToken,
		WorkerPID:    session.PID,
		AgentID:      agent.ID,
		AgentName:    agent.Name,
		StartedAt:    session.StartedAt,
		SystemPrompt: agent.SystemPrompt,
	}, nil
}

// StopSession terminates the worker and removes the room.
func (s *TriggerService) StopSession(ctx context.Context, clientID, sessionID string) error {
	ctx, span := telemetry.StartSpan(ctx, "TriggerService.StopSession", telemetry.SpanAttributes{
		ClientID:  clientID,
		SessionID: sessionID,
		Operation: "stop",
	})
	defer span.End()

	session, ok := s.workers.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotRunning
	}
	if session.ClientID != clientID {
		// Do not leak existence of other tenants' sessions.
		return domain.ErrSessionNotRunning
	}

	if err := s.workers.Stop(ctx, sessionID); err != nil {
		return err
	}

	if s.rooms != nil {
		if err := s.rooms.DeleteRoom(ctx, session.RoomName); err != nil {
			telemetry.CaptureError(ctx, err)
		}
	}
	return nil
}

// ListSessions returns the running sessions belonging to a client.
func (s *TriggerService) ListSessions(clientID string) []worker.Session {
	var out []worker.Session
	for _, session := range s.workers.List() {
		if session.ClientID == clientID {
			out = append(out, session)
		}
	}
	return out
}
