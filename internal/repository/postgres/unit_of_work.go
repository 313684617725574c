package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kassa-app/kassa-backend/internal/domain"
)

// UnitOfWork implements domain.UnitOfWork over a pgx connection pool. Every
// WithinTx call runs fn against repositories bound to one database
// transaction: an error from fn rolls the whole unit back, so an operation
// write can never commit without its balance adjustment.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork creates a new UnitOfWork
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

// WithinTx implements domain.UnitOfWork
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(stores domain.LedgerStores) error) error {
	return pgx.BeginFunc(ctx, u.pool, func(tx pgx.Tx) error {
		return fn(&txStores{tx: tx})
	})
}

// txStores binds the ledger repositories to a single pgx transaction
type txStores struct {
	tx pgx.Tx
}

func (s *txStores) Accounts() domain.AccountRepository {
	return NewAccountRepository(s.tx)
}

func (s *txStores) Categories() domain.CategoryRepository {
	return NewCategoryRepository(s.tx)
}

func (s *txStores) Operations() domain.OperationRepository {
	return NewOperationRepository(s.tx)
}
