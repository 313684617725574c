package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Operation is a single transaction event. Amount is always a positive
// magnitude; the signed balance effect is derived from the category type and
// never stored.
type Operation struct {
	ID            int32           `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	AccountID     int32           `json:"accountId"`
	CategoryID    int32           `json:"categoryId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   *string         `json:"description,omitempty"`
	OperationDate time.Time       `json:"operationDate"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// SignedEffect derives the balance contribution of an operation amount under
// the given category type: negative for expenses, positive for income.
func SignedEffect(amount decimal.Decimal, categoryType CategoryType) decimal.Decimal {
	if categoryType == CategoryTypeExpense {
		return amount.Neg()
	}
	return amount
}

// OperationUpdate holds the optional fields of an operation update.
// A nil field leaves the stored value unchanged.
type OperationUpdate struct {
	AccountID     *int32
	CategoryID    *int32
	Amount        *decimal.Decimal
	Description   *string
	OperationDate *time.Time
}

// OperationFilters narrows operation listings. Filters combine with AND;
// both date bounds are inclusive.
type OperationFilters struct {
	AccountID  *int32
	CategoryID *int32
	StartDate  *time.Time
	EndDate    *time.Time
}

// OperationDetails is an operation joined with the names of its account and
// category and the category's type.
type OperationDetails struct {
	Operation
	AccountName  string       `json:"accountName"`
	CategoryName string       `json:"categoryName"`
	CategoryType CategoryType `json:"categoryType"`
}

// OperationRepository defines owner-scoped persistence for operations.
type OperationRepository interface {
	Create(ctx context.Context, operation *Operation) (*Operation, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*Operation, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID, filters *OperationFilters) ([]*Operation, error)
	// GetAllByCategory lists every operation recorded under a category,
	// used to reverse balance effects before a category delete cascades.
	GetAllByCategory(ctx context.Context, userID uuid.UUID, categoryID int32) ([]*Operation, error)
	GetWithDetails(ctx context.Context, userID uuid.UUID, filters *OperationFilters) ([]*OperationDetails, error)
	Update(ctx context.Context, userID uuid.UUID, id int32, update *OperationUpdate) (*Operation, error)
	Delete(ctx context.Context, userID uuid.UUID, id int32) error
}
