// Package memstore is an in-memory repository.Store. It keeps the same
// observable contract as the Postgres store: pgx.ErrNoRows for missing rows,
// unique violations as *pgconn.PgError, and all-or-nothing transactions.
//
// A single mutex serializes every transaction, which is stronger than the
// row locks Postgres takes and makes concurrent tests deterministic.
package memstore

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/loja1/projectohibrido/internal/repository"
	"github.com/shopspring/decimal"
)

// Store is an in-memory repository.Store.
type Store struct {
	*queries
}

var _ repository.Store = (*Store)(nil)

// New creates an empty store seeded with the same payment and delivery
// types as the schema migrations.
func New() *Store {
	st := newState()
	st.paymentTypes[1] = repository.PaymentType{ID: 1, Name: "Dinheiro"}
	st.paymentTypes[2] = repository.PaymentType{ID: 2, Name: "Multicaixa"}
	st.paymentTypes[3] = repository.PaymentType{ID: 3, Name: "Transferencia"}
	st.deliveryTypes[1] = repository.DeliveryType{ID: 1, Name: "Levantamento na loja", Surcharge: decimal.Zero}
	st.deliveryTypes[2] = repository.DeliveryType{ID: 2, Name: "Entrega ao domicilio", Surcharge: decimal.NewFromInt(1000)}

	return &Store{
		queries: &queries{st: st, mu: &sync.Mutex{}, locking: true},
	}
}

// ExecTx runs fn against a private copy of the data and publishes the copy
// only when fn succeeds.
func (s *Store) ExecTx(ctx context.Context, fn func(q repository.Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(&queries{st: snapshot, now: s.now}); err != nil {
		return err
	}
	*s.st = *snapshot
	return nil
}

// SetClock replaces the time source, for tests that depend on timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// queries implements repository.Querier over a state. The store-level
// instance locks around each call; transaction instances run under the lock
// already held by ExecTx.
type queries struct {
	st      *state
	mu      *sync.Mutex
	locking bool
	now     func() time.Time
}

func (q *queries) enter() func() {
	if !q.locking {
		return func() {}
	}
	q.mu.Lock()
	return q.mu.Unlock
}

func (q *queries) timestamp() pgtype.Timestamptz {
	now := time.Now
	if q.now != nil {
		now = q.now
	}
	return pgtype.Timestamptz{Time: now().UTC(), Valid: true}
}

type state struct {
	seq           int64
	products      map[int64]repository.Product
	carts         map[int64]repository.Cart
	cartItems     map[int64]repository.CartItem
	orders        map[int64]repository.Order
	orderItems    map[int64]repository.OrderItem
	cancellations map[int64]repository.OrderCancellation
	paymentTypes  map[int64]repository.PaymentType
	deliveryTypes map[int64]repository.DeliveryType
	movements     map[int64]repository.StockMovement
}

func newState() *state {
	return &state{
		products:      map[int64]repository.Product{},
		carts:         map[int64]repository.Cart{},
		cartItems:     map[int64]repository.CartItem{},
		orders:        map[int64]repository.Order{},
		orderItems:    map[int64]repository.OrderItem{},
		cancellations: map[int64]repository.OrderCancellation{},
		paymentTypes:  map[int64]repository.PaymentType{},
		deliveryTypes: map[int64]repository.DeliveryType{},
		movements:     map[int64]repository.StockMovement{},
	}
}

func (s *state) clone() *state {
	return &state{
		seq:           s.seq,
		products:      maps.Clone(s.products),
		carts:         maps.Clone(s.carts),
		cartItems:     maps.Clone(s.cartItems),
		orders:        maps.Clone(s.orders),
		orderItems:    maps.Clone(s.orderItems),
		cancellations: maps.Clone(s.cancellations),
		paymentTypes:  maps.Clone(s.paymentTypes),
		deliveryTypes: maps.Clone(s.deliveryTypes),
		movements:     maps.Clone(s.movements),
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint \"" + constraint + "\"",
		ConstraintName: constraint,
	}
}

func checkViolation(constraint string) error {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23514",
		Message:        "new row violates check constraint \"" + constraint + "\"",
		ConstraintName: constraint,
	}
}

func integerOutOfRange() error {
	return &pgconn.PgError{
		Severity: "ERROR",
		Code:     "22003",
		Message:  "integer out of range",
	}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23503",
		Message:        "insert or update violates foreign key constraint \"" + constraint + "\"",
		ConstraintName: constraint,
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}
