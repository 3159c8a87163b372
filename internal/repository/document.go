package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/pagination"
	"github.com/lhyphendixon/sidekick-forge/internal/service"
	"github.com/lhyphendixon/sidekick-forge/internal/tenancy"
)

// DocumentRepository persists knowledge-base documents for one tenant scope.
type DocumentRepository struct {
	db    dbtx
	scope tenancy.Scope
}

func NewDocumentRepository(db dbtx, scope tenancy.Scope) *DocumentRepository {
	return &DocumentRepository{db: db, scope: scope}
}

const documentColumns = "id, client_id, agent_id, title, content_type, storage_key, sha256, size_bytes, text_content, status, created_at, updated_at"

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	sql, args := r.scope.Insert("documents").
		Value("id", d.ID).
		Value("client_id", d.ClientID).
		Value("agent_id", nullableString(d.AgentID)).
		Value("title", d.Title).
		Value("content_type", d.ContentType).
		Value("storage_key", nullableString(d.StorageKey)).
		Value("sha256", nullableString(d.SHA256)).
		Value("size_bytes", d.SizeBytes).
		Value("text_content", d.Text).
		Value("status", d.Status).
		Value("created_at", d.CreatedAt).
		Value("updated_at", d.UpdatedAt).
		Build()

	_, err := r.db.Exec(ctx, sql, args...)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	sql, args := r.scope.Select("documents", documentColumns).Where("id = ?", id).Build()

	var d domain.Document
	var agentID, storageKey, sha *string
	err := r.db.QueryRow(ctx, sql, args...).Scan(
		&d.ID, &d.ClientID, &agentID, &d.Title, &d.ContentType, &storageKey, &sha,
		&d.SizeBytes, &d.Text, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	if agentID != nil {
		d.AgentID = *agentID
	}
	if storageKey != nil {
		d.StorageKey = *storageKey
	}
	if sha != nil {
		d.SHA256 = *sha
	}
	return &d, nil
}

func (r *DocumentRepository) List(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.DocumentPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	q := r.scope.Select("documents", documentColumns).
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

	var items []*domain.Document
	for rows.Next() {
		var d domain.Document
		var agentID, storageKey, sha *string
		if err := rows.Scan(
			&d.ID, &d.ClientID, &agentID, &d.Title, &d.ContentType, &storageKey, &sha,
			&d.SizeBytes, &d.Text, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if agentID != nil {
			d.AgentID = *agentID
		}
		if storageKey != nil {
			d.StorageKey = *storageKey
		}
		if sha != nil {
			d.SHA256 = *sha
		}
		items = append(items, &d)
	}
	if err := rows.Err(); err != nil {
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

	return &service.DocumentPageResult{Items: items, NextCursor: nextCursor, HasMore: hasMore}, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	sql, args := r.scope.Update("documents").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where("id = ?", id).
		Build()

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) UpdateText(ctx context.Context, id, text string) error {
	sql, args := r.scope.Update("documents").
		Set("text_content", text).
		Set("updated_at", time.Now().UTC()).
		Where("id = ?", id).
		Build()

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	sql, args := r.scope.Delete("documents").Where("id = ?", id).Build()
	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
