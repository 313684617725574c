package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CategoryType string

const (
	CategoryTypeExpense CategoryType = "expense"
	CategoryTypeIncome  CategoryType = "income"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeExpense || t == CategoryTypeIncome
}

// Category is a labeled classification with a fixed polarity. The type
// determines the sign of the balance effect of operations recorded under it.
// Changing the type later does not re-sign past operations; the type is read
// at operation create/update time only.
type Category struct {
	ID        int32        `json:"id"`
	UserID    uuid.UUID    `json:"userId"`
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
	Icon      *string      `json:"icon,omitempty"`
	Color     *string      `json:"color,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// CategoryUpdate holds the optional fields of a category update.
// A nil field leaves the stored value unchanged.
type CategoryUpdate struct {
	Name  *string
	Type  *CategoryType
	Icon  *string
	Color *string
}

// CategoryWithTotal pairs a category with the sum of raw operation amounts
// recorded under it. Categories without operations carry a zero total.
type CategoryWithTotal struct {
	Category
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// CategoryRepository defines owner-scoped persistence for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*Category, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID, typeFilter *CategoryType) ([]*Category, error)
	GetWithTotals(ctx context.Context, userID uuid.UUID, typeFilter *CategoryType) ([]*CategoryWithTotal, error)
	Update(ctx context.Context, userID uuid.UUID, id int32, update *CategoryUpdate) (*Category, error)
	// Delete removes the category; the store's cascade removes its operations
	// in the same transaction. Reversing their balance effect first is the
	// caller's job (see CategoryService.Delete).
	Delete(ctx context.Context, userID uuid.UUID, id int32) error
}
