package domain

import "context"

// LedgerStores groups the repositories that take part in a single ledger
// transaction. Implementations bind all three to the same underlying
// database transaction.
type LedgerStores interface {
	Accounts() AccountRepository
	Categories() CategoryRepository
	Operations() OperationRepository
}

// UnitOfWork runs a function against transaction-bound stores. If fn returns
// an error the whole unit rolls back; otherwise it commits. Partial
// application of an operation write without its balance adjustment (or the
// reverse) must be impossible.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(stores LedgerStores) error) error
}
