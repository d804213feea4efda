package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store is a Querier that can also run a function inside one transaction.
// The Querier handed to fn is bound to that transaction; when fn returns an
// error every write made through it is rolled back.
type Store interface {
	Querier
	ExecTx(ctx context.Context, fn func(q Querier) error) error
}

// Postgres error codes the services react to.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// IsNotFound reports whether err is the no-rows error returned by :one queries.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err came from a unique constraint or
// unique index, such as the one-active-cart-per-owner indexes.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// IsCheckViolation reports whether err came from a CHECK constraint.
func IsCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation
}
