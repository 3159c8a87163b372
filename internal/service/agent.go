package service

import (
	"context"
	"time"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/pagination"
	"github.com/lhyphendixon/sidekick-forge/internal/telemetry"
)

// AgentService handles business logic for agent personas.
type AgentService struct {
	tenants TenantResolver
	uuidGen UUIDGenerator
}

// NewAgentService creates a new AgentService instance
func NewAgentService(tenants TenantResolver) *AgentService {
	return &AgentService{tenants: tenants, uuidGen: &DefaultUUIDGenerator{}}
}

// NewAgentServiceWithUUIDGen creates a new AgentService with custom UUID generator (for testing)
func NewAgentServiceWithUUIDGen(tenants TenantResolver, uuidGen UUIDGenerator) *AgentService {
	return &AgentService{tenants: tenants, uuidGen: uuidGen}
}

// CreateAgentInput represents the input for creating an agent
type CreateAgentInput struct {
	ClientID     string
	Slug         string
	Name         string
	SystemPrompt string
	Voice        domain.VoiceConfig
}

// UpdateAgentInput represents the input for updating an agent
type UpdateAgentInput struct {
	ClientID     string
	AgentID      string
	Name         string
	SystemPrompt string
	Voice        domain.VoiceConfig
	Enabled      *bool
}

type ListAgentsInput struct {
	ClientID string
	Cursor   string
	Limit    int
}

type ListAgentsOutput struct {
	Items   []*domain.Agent
	Cursor  string
	HasMore bool
}

// Create creates a new agent after validating its provider wiring.
func (s *AgentService) Create(ctx context.Context, input CreateAgentInput) (*domain.Agent, error) {
	ctx, span := telemetry.StartSpan(ctx, "AgentService.Create", telemetry.SpanAttributes{
		ClientID:  input.ClientID,
		Operation: "create",
	})
	defer span.End()

	repos, err := s.tenants.Resolve(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	if existing, err := repos.Agents().GetBySlug(ctx, input.Slug); err == nil && existing != nil {
		return nil, domain.ErrAgentAlreadyExists
	}

	agent := domain.NewAgent(
		s.uuidGen.NewString(),
		input.ClientID,
		input.Slug,
		input.Name,
		input.SystemPrompt,
		input.Voice,
		time.Now().UTC(),
	)

	if err := domain.ValidateAgent(agent); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid agent", err)
	}

	if err := repos.Agents().Create(ctx, agent); err != nil {
		return nil, err
	}

	return agent, nil
}

// GetBySlug retrieves an agent by its slug within a client.
func (s *AgentService) GetBySlug(ctx context.Context, clientID, slug string) (*domain.Agent, error) {
	repos, err := s.tenants.Resolve(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return repos.Agents().GetBySlug(ctx, slug)
}

// List returns a page of agents ordered by recency.
func (s *AgentService) List(ctx context.Context, input ListAgentsInput) (*ListAgentsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "AgentService.List", telemetry.SpanAttributes{
		ClientID:  input.ClientID,
		Operation: "list",
	})
	defer span.End()

	repos, err := s.tenants.Resolve(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	var cursor *pagination.Cursor
	if input.Cursor != "" {
		cursor, err = pagination.DecodeCursor(input.Cursor)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
		}
	}

	page, err := repos.Agents().List(ctx, cursor, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ListAgentsOutput{Items: page.Items, Cursor: page.NextCursor, HasMore: page.HasMore}, nil
}

// Update replaces an agent's mutable fields.
func (s *AgentService) Update(ctx context.Context, input UpdateAgentInput) (*domain.Agent, error) {
	ctx, span := telemetry.StartSpan(ctx, "AgentService.Update", telemetry.SpanAttributes{
		ClientID:  input.ClientID,
		AgentID:   input.AgentID,
		Operation: "update",
	})
	defer span.End()

	repos, err := s.tenants.Resolve(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	agent, err := repos.Agents().GetByID(ctx, input.AgentID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		agent.Name = input.Name
	}
	if input.SystemPrompt != "" {
		agent.SystemPrompt = input.SystemPrompt
	}
	agent.Voice = input.Voice
	if input.Enabled != nil {
		agent.Enabled = *input.Enabled
	}
	agent.UpdatedAt = time.Now().UTC()

	if err := domain.ValidateAgent(agent); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid agent", err)
	}

	if err := repos.Agents().Update(ctx, agent); err != nil {
		return nil, err
	}

	return agent, nil
}

// Delete removes an agent permanently.
func (s *AgentService) Delete(ctx context.Context, clientID, agentID string) error {
	ctx, span := telemetry.StartSpan(ctx, "AgentService.Delete", telemetry.SpanAttributes{
		ClientID:  clientID,
		AgentID:   agentID,
		Operation: "delete",
	})
	defer span.End()

	repos, err := s.tenants.Resolve(ctx, clientID)
	if err != nil {
		return err
	}

	return repos.Agents().Delete(ctx, agentID)
}
