package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the system-wide currency code used when an account
// does not specify one and for the aggregated total-balance view.
const DefaultCurrency = "KGS"

// Account is a named monetary bucket owned by a single user. Balance is kept
// consistent with the account's operations by the ledger protocol and is only
// ever adjusted incrementally, never recomputed from scratch.
type Account struct {
	ID        int32           `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	Icon      *string         `json:"icon,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// AccountUpdate holds the optional fields of an account update.
// A nil field leaves the stored value unchanged. Balance here is the direct
// user edit path; the ledger protocol goes through AdjustBalance instead.
type AccountUpdate struct {
	Name     *string
	Balance  *decimal.Decimal
	Currency *string
	Icon     *string
}

// TotalBalance is the sum of balances across all of a user's accounts.
type TotalBalance struct {
	TotalBalance decimal.Decimal `json:"totalBalance"`
	Currency     string          `json:"currency"`
}

// AccountRepository defines owner-scoped persistence for accounts.
// Every lookup filters by (id, user_id); an owner mismatch is reported as
// ErrAccountNotFound, indistinguishable from a missing id.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*Account, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*Account, error)
	Update(ctx context.Context, userID uuid.UUID, id int32, update *AccountUpdate) (*Account, error)
	// Delete removes the account and, through the store's cascade, all of its
	// operations in the same transaction.
	Delete(ctx context.Context, userID uuid.UUID, id int32) error
	// AdjustBalance atomically adds delta to the account's balance as a single
	// statement. It carries no owner filter: callers establish ownership
	// through the operation's own owner check first.
	AdjustBalance(ctx context.Context, id int32, delta decimal.Decimal) (*Account, error)
}
