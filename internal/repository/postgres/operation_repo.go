package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kassa-app/kassa-backend/internal/domain"
)

// OperationRepository implements domain.OperationRepository using PostgreSQL
type OperationRepository struct {
	db DBTX
}

// NewOperationRepository creates a new OperationRepository
func NewOperationRepository(db DBTX) *OperationRepository {
	return &OperationRepository{db: db}
}

const operationColumns = "id, user_id, account_id, category_id, amount, description, operation_date, created_at, updated_at"

// Create inserts a new operation row. Balance adjustment is the ledger
// protocol's job, composed with this call inside one unit of work.
func (r *OperationRepository) Create(ctx context.Context, operation *domain.Operation) (*domain.Operation, error) {
	amount, err := decimalToPgNumeric(operation.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO operations (user_id, account_id, category_id, amount, description, operation_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+operationColumns,
		operation.UserID, operation.AccountID, operation.CategoryID,
		amount, toPgText(operation.Description), operation.OperationDate,
	)
	return scanOperation(row)
}

// GetByID retrieves an operation by (id, user_id)
func (r *OperationRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Operation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+operationColumns+` FROM operations WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	operation, err := scanOperation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperationNotFound
		}
		return nil, err
	}
	return operation, nil
}

// GetAllByUser lists the user's operations, newest first. Filters combine
// with AND; both date bounds are inclusive.
func (r *OperationRepository) GetAllByUser(ctx context.Context, userID uuid.UUID, filters *domain.OperationFilters) ([]*domain.Operation, error) {
	if filters == nil {
		filters = &domain.OperationFilters{}
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+operationColumns+`
		 FROM operations
		 WHERE user_id = $1
		   AND ($2::int  IS NULL OR account_id = $2)
		   AND ($3::int  IS NULL OR category_id = $3)
		   AND ($4::timestamptz IS NULL OR operation_date >= $4)
		   AND ($5::timestamptz IS NULL OR operation_date <= $5)
		 ORDER BY operation_date DESC, id`,
		userID, filters.AccountID, filters.CategoryID, filters.StartDate, filters.EndDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var operations []*domain.Operation
	for rows.Next() {
		operation, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		operations = append(operations, operation)
	}
	return operations, rows.Err()
}

// GetAllByCategory lists every operation recorded under a category
func (r *OperationRepository) GetAllByCategory(ctx context.Context, userID uuid.UUID, categoryID int32) ([]*domain.Operation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+operationColumns+`
		 FROM operations
		 WHERE user_id = $1 AND category_id = $2
		 ORDER BY id`,
		userID, categoryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var operations []*domain.Operation
	for rows.Next() {
		operation, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		operations = append(operations, operation)
	}
	return operations, rows.Err()
}

// GetWithDetails lists the user's operations joined with account and
// category names, same filters and ordering as GetAllByUser.
func (r *OperationRepository) GetWithDetails(ctx context.Context, userID uuid.UUID, filters *domain.OperationFilters) ([]*domain.OperationDetails, error) {
	if filters == nil {
		filters = &domain.OperationFilters{}
	}
	rows, err := r.db.Query(ctx,
		`SELECT o.id, o.user_id, o.account_id, o.category_id, o.amount, o.description,
		        o.operation_date, o.created_at, o.updated_at,
		        a.name AS account_name, c.name AS category_name, c.type AS category_type
		 FROM operations o
		 JOIN accounts a   ON a.id = o.account_id
		 JOIN categories c ON c.id = o.category_id
		 WHERE o.user_id = $1
		   AND ($2::int  IS NULL OR o.account_id = $2)
		   AND ($3::int  IS NULL OR o.category_id = $3)
		   AND ($4::timestamptz IS NULL OR o.operation_date >= $4)
		   AND ($5::timestamptz IS NULL OR o.operation_date <= $5)
		 ORDER BY o.operation_date DESC, o.id`,
		userID, filters.AccountID, filters.CategoryID, filters.StartDate, filters.EndDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.OperationDetails
	for rows.Next() {
		var (
			d           domain.OperationDetails
			amount      pgtype.Numeric
			description pgtype.Text
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.AccountID, &d.CategoryID, &amount, &description,
			&d.OperationDate, &d.CreatedAt, &d.UpdatedAt,
			&d.AccountName, &d.CategoryName, &d.CategoryType); err != nil {
			return nil, err
		}
		d.Amount = pgNumericToDecimal(amount)
		d.Description = textPtr(description)
		results = append(results, &d)
	}
	return results, rows.Err()
}

// Update applies the non-nil fields of update to the operation row
func (r *OperationRepository) Update(ctx context.Context, userID uuid.UUID, id int32, update *domain.OperationUpdate) (*domain.Operation, error) {
	var amount *pgtype.Numeric
	if update.Amount != nil {
		num, err := decimalToPgNumeric(*update.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount: %w", err)
		}
		amount = &num
	}

	row := r.db.QueryRow(ctx,
		`UPDATE operations
		 SET account_id     = COALESCE($3, account_id),
		     category_id    = COALESCE($4, category_id),
		     amount         = COALESCE($5, amount),
		     description    = COALESCE($6, description),
		     operation_date = COALESCE($7, operation_date),
		     updated_at     = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+operationColumns,
		id, userID, update.AccountID, update.CategoryID, amount, update.Description, update.OperationDate,
	)
	operation, err := scanOperation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperationNotFound
		}
		return nil, err
	}
	return operation, nil
}

// Delete removes the operation row
func (r *OperationRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM operations WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOperationNotFound
	}
	return nil
}

func scanOperation(row pgx.Row) (*domain.Operation, error) {
	var (
		o           domain.Operation
		amount      pgtype.Numeric
		description pgtype.Text
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.AccountID, &o.CategoryID, &amount, &description,
		&o.OperationDate, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Amount = pgNumericToDecimal(amount)
	o.Description = textPtr(description)
	return &o, nil
}
