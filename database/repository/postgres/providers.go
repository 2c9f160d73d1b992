package postgresRepo

import (
	"context"

	"slotbook/database/repository"
	"slotbook/models"

	"github.com/jackc/pgx/v5"
)

const providerColumns = `id, external_id, name, active, created_at`

func scanProvider(row pgx.Row) (*models.Provider, error) {
	var p models.Provider
	if err := row.Scan(&p.ID, &p.ExternalID, &p.Name, &p.Active, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (q queries) ProviderByID(ctx context.Context, id int64) (*models.Provider, error) {
	p, err := scanProvider(q.q.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE id = $1`, id))
	return p, wrap("select provider", err)
}

func (q queries) ProviderByExternalID(ctx context.Context, externalID string) (*models.Provider, error) {
	p, err := scanProvider(q.q.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE external_id = $1`, externalID))
	return p, wrap("select provider", err)
}

func (q queries) InsertProvider(ctx context.Context, p *models.Provider) error {
	err := q.q.QueryRow(ctx,
		`INSERT INTO providers (external_id, name, active, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		p.ExternalID, p.Name, p.Active, p.CreatedAt,
	).Scan(&p.ID)
	return wrap("insert provider", err)
}

func (q queries) SetProviderActive(ctx context.Context, id int64, active bool) error {
	tag, err := q.q.Exec(ctx, `UPDATE providers SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return wrap("update provider", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
