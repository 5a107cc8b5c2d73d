package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same repository code runs inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store bundles the repositories over one connection scope.
type Store interface {
	Orders() OrderRepository
	Passengers() PassengerRepository
	Segments() SegmentRepository
	Applications() ApplicationRepository
	Policies() PolicyRepository
	OperationLogs() OperationLogRepository
	FeeLedger() FeeLedgerRepository
}

// Transactor runs a function against a transaction-scoped Store; either
// every write inside commits or none does.
type Transactor interface {
	InTx(ctx context.Context, fn func(Store) error) error
}

type PGStore struct {
	pool *pgxpool.Pool
	db   Querier
}

func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, db: pool}
}

func (s *PGStore) Orders() OrderRepository            { return NewOrderRepository(s.db) }
func (s *PGStore) Passengers() PassengerRepository    { return NewPassengerRepository(s.db) }
func (s *PGStore) Segments() SegmentRepository        { return NewSegmentRepository(s.db) }
func (s *PGStore) Applications() ApplicationRepository {
	return NewApplicationRepository(s.db)
}
func (s *PGStore) Policies() PolicyRepository          { return NewPolicyRepository(s.db) }
func (s *PGStore) OperationLogs() OperationLogRepository {
	return NewOperationLogRepository(s.db)
}
func (s *PGStore) FeeLedger() FeeLedgerRepository { return NewFeeLedgerRepository(s.db) }

func (s *PGStore) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&PGStore{pool: s.pool, db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var (
	_ Store      = (*PGStore)(nil)
	_ Transactor = (*PGStore)(nil)
)
