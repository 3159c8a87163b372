package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/pagination"
	"github.com/lhyphendixon/sidekick-forge/internal/service"
	"github.com/lhyphendixon/sidekick-forge/internal/tenancy"
)

// AgentRepository persists agent personas. Every statement goes through the
// tenant scope so shared-tier rows never leak across clients.
type AgentRepository struct {
	db    dbtx
	scope tenancy.Scope
}

func NewAgentRepository(db dbtx, scope tenancy.Scope) *AgentRepository {
	return &AgentRepository{db: db, scope: scope}
}

const agentColumns = "id, client_id, slug, name, system_prompt, voice_config, enabled, created_at, updated_at"

func (r *AgentRepository) Create(ctx context.Context, a *domain.Agent) error {
	voice, err := json.Marshal(a.Voice)
	if err != nil {
		return fmt.Errorf("failed to marshal voice config: %w", err)
	}

	sql, args := r.scope.Insert("agents").
		Value("id", a.ID).
		Value("client_id", a.ClientID).
		Value("slug", a.Slug).
		Value("name", a.Name).
		Value("system_prompt", a.SystemPrompt).
		Value("voice_config", voice).
		Value("enabled", a.Enabled).
		Value("created_at", a.CreatedAt).
		Value("updated_at", a.UpdatedAt).
		Build()

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *AgentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	sql, args := r.scope.Select("agents", agentColumns).Where("id = ?", id).Build()
	return r.scanOne(r.db.QueryRow(ctx, sql, args...))
}

func (r *AgentRepository) GetBySlug(ctx context.Context, slug string) (*domain.Agent, error) {
	sql, args := r.scope.Select("agents", agentColumns).Where("slug = ?", slug).Build()
	return r.scanOne(r.db.QueryRow(ctx, sql, args...))
}

func (r *AgentRepository) List(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.AgentPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	q := r.scope.Select("agents", agentColumns).
		OrderBy("updated_at DESC, id DESC").
		Limit(limit + 1)
	if cursor != nil {
		q = q.Where("(updated_at, id) < (?, ?)", cursor.Timestamp, cursor.LastID)
	}
	sql, args := q.Build()

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := r.scanRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.UpdatedAt)
	}

	return &service.AgentPageResult{Items: items, NextCursor: nextCursor, HasMore: hasMore}, nil
}

func (r *AgentRepository) Update(ctx context.Context, a *domain.Agent) error {
	a.UpdatedAt = time.Now().UTC()
	voice, err := json.Marshal(a.Voice)
	if err != nil {
		return fmt.Errorf("failed to marshal voice config: %w", err)
	}

	sql, args := r.scope.Update("agents").
		Set("name", a.Name).
		Set("system_prompt", a.SystemPrompt).
		Set("voice_config", voice).
		Set("enabled", a.Enabled).
		Set("updated_at", a.UpdatedAt).
		Where("id = ?", a.ID).
		Build()

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrAgentNotFound
	}
	return nil
}

func (r *AgentRepository) Delete(ctx context.Context, id string) error {
	sql, args := r.scope.Delete("agents").Where("id = ?", id).Build()
	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrAgentNotFound
	}
	return nil
}

func (r *AgentRepository) scanOne(row pgx.Row) (*domain.Agent, error) {
	var a domain.Agent
	var voice []byte
	err := row.Scan(&a.ID, &a.ClientID, &a.Slug, &a.Name, &a.SystemPrompt, &voice, &a.Enabled, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(voice, &a.Voice); err != nil {
		return nil, fmt.Errorf("failed to unmarshal voice config: %w", err)
	}
	return &a, nil
}

func (r *AgentRepository) scanRows(rows pgx.Rows) ([]*domain.Agent, error) {
	var results []*domain.Agent
	for rows.Next() {
		var a domain.Agent
		var voice []byte
		if err := rows.Scan(&a.ID, &a.ClientID, &a.Slug, &a.Name, &a.SystemPrompt, &voice, &a.Enabled, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(voice, &a.Voice); err != nil {
			return nil, fmt.Errorf("failed to unmarshal voice config: %w", err)
		}
		results = append(results, &a)
	}
	return results, rows.Err()
}
