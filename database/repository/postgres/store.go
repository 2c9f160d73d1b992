// Package postgresRepo stores the reservation engine in PostgreSQL.
// Availability flips are conditional UPDATEs checked by affected rows, and
// slot inserts hold a row lock on the owning service for the duration of
// the transaction.
package postgresRepo

import (
	"context"
	"errors"
	"fmt"

	"slotbook/database/postgres"
	"slotbook/database/repository"

	"github.com/jackc/pgx/v5"
)

// Store embeds the query set bound to the pool; WithTx rebinds the same
// query set to a transaction.
type Store struct {
	queries
	db *postgres.DB
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *postgres.DB) *Store {
	return &Store{queries: queries{q: db.Q()}, db: db}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return s.db.InTx(ctx, func(tx pgx.Tx) error {
		return fn(ctx, queries{q: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

func (s *Store) Close(context.Context) error {
	s.db.Close()
	return nil
}

type queries struct {
	q postgres.Querier
}

var _ repository.Tx = queries{}

// wrap maps driver errors onto the repository sentinels.
func wrap(what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return repository.ErrNotFound
	case postgres.IsUniqueViolation(err):
		return repository.ErrDuplicate
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func collect[T any](rows pgx.Rows, err error, what string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	if err != nil {
		return nil, wrap(what, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, wrap(what, err)
		}
		out = append(out, v)
	}
	return out, wrap(what, rows.Err())
}
