package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lhyphendixon/sidekick-forge/internal/domain"
)

// ClientRepository persists tenant records. Clients are control-plane rows
// and always live in the shared database.
type ClientRepository struct {
	db dbtx
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{db: pool}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO clients (id, slug, name, tier, database_url, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Slug, c.Name, c.Tier, nullableString(c.DatabaseURL), c.Active, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	return r.getWhere(ctx, "id = $1", id)
}

func (r *ClientRepository) GetBySlug(ctx context.Context, slug string) (*domain.Client, error) {
	return r.getWhere(ctx, "slug = $1", slug)
}

func (r *ClientRepository) getWhere(ctx context.Context, cond string, arg any) (*domain.Client, error) {
	var c domain.Client
	var databaseURL *string
	err := r.db.QueryRow(ctx,
		`SELECT id, slug, name, tier, database_url, active, created_at, updated_at
		 FROM clients WHERE `+cond, arg,
	).Scan(&c.ID, &c.Slug, &c.Name, &c.Tier, &databaseURL, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	if databaseURL != nil {
		c.DatabaseURL = *databaseURL
	}
	return &c, nil
}

func (r *ClientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, slug, name, tier, database_url, active, created_at, updated_at
		 FROM clients ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Client
	for rows.Next() {
		var c domain.Client
		var databaseURL *string
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Tier, &databaseURL, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if databaseURL != nil {
			c.DatabaseURL = *databaseURL
		}
		results = append(results, &c)
	}
	return results, rows.Err()
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	c.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE clients SET name = $1, tier = $2, database_url = $3, active = $4, updated_at = $5
		 WHERE id = $6`,
		c.Name, c.Tier, nullableString(c.DatabaseURL), c.Active, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}
