package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/kassa-app/kassa-backend/internal/domain"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	db DBTX
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = "id, user_id, name, balance, currency, icon, created_at, updated_at"

// Create inserts a new account with its caller-supplied starting balance
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	balance, err := decimalToPgNumeric(account.Balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO accounts (user_id, name, balance, currency, icon)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+accountColumns,
		account.UserID, account.Name, balance, account.Currency, toPgText(account.Icon),
	)
	return scanAccount(row)
}

// GetByID retrieves an account by (id, user_id); an owner mismatch is
// indistinguishable from a missing id.
func (r *AccountRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetAllByUser retrieves all accounts owned by a user
func (r *AccountRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// Update applies the non-nil fields of update to the account row
func (r *AccountRepository) Update(ctx context.Context, userID uuid.UUID, id int32, update *domain.AccountUpdate) (*domain.Account, error) {
	var balance *pgtype.Numeric
	if update.Balance != nil {
		num, err := decimalToPgNumeric(*update.Balance)
		if err != nil {
			return nil, fmt.Errorf("invalid balance: %w", err)
		}
		balance = &num
	}

	row := r.db.QueryRow(ctx,
		`UPDATE accounts
		 SET name       = COALESCE($3, name),
		     balance    = COALESCE($4, balance),
		     currency   = COALESCE($5, currency),
		     icon       = COALESCE($6, icon),
		     updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+accountColumns,
		id, userID, update.Name, balance, update.Currency, update.Icon,
	)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// Delete removes the account; the operations foreign key cascades, removing
// the account's operations in the same transaction.
func (r *AccountRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM accounts WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// AdjustBalance adds delta to the account balance in a single statement, so
// concurrent adjustments on the same account serialize at the row instead of
// losing updates. No owner filter: the ledger protocol has already resolved
// the owning operation under the caller's user id.
func (r *AccountRepository) AdjustBalance(ctx context.Context, id int32, delta decimal.Decimal) (*domain.Account, error) {
	num, err := decimalToPgNumeric(delta)
	if err != nil {
		return nil, fmt.Errorf("invalid delta: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`UPDATE accounts
		 SET balance = balance + $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+accountColumns,
		id, num,
	)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a       domain.Account
		balance pgtype.Numeric
		icon    pgtype.Text
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &balance, &a.Currency, &icon, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Balance = pgNumericToDecimal(balance)
	a.Icon = textPtr(icon)
	return &a, nil
}
