// Package postgres provides the pgx-backed implementation of repository.Store.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/loja1/projectohibrido/internal/repository"
)

// Store runs queries against a pgx pool and scopes ExecTx callbacks to a
// single database transaction.
type Store struct {
	*repository.Queries
	pool *pgxpool.Pool
}

// Compile-time check that Store implements repository.Store.
var _ repository.Store = (*Store)(nil)

// NewStore creates a Store over pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Queries: repository.New(pool),
		pool:    pool,
	}
}

// ExecTx runs fn inside a READ COMMITTED transaction. Row locks taken by fn
// (SELECT ... FOR UPDATE, UPDATE) are held until commit or rollback.
func (s *Store) ExecTx(ctx context.Context, fn func(q repository.Querier) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(s.Queries.WithTx(tx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
