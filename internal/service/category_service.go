package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/kassa-app/kassa-backend/internal/domain"
	"github.com/kassa-app/kassa-backend/internal/ws"
)

// CategoryService handles category-related business logic
type CategoryService struct {
	uow          domain.UnitOfWork
	categoryRepo domain.CategoryRepository
	publisher    ws.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(uow domain.UnitOfWork, categoryRepo domain.CategoryRepository, publisher ws.EventPublisher) *CategoryService {
	if publisher == nil {
		publisher = &ws.NoOpPublisher{}
	}
	return &CategoryService{
		uow:          uow,
		categoryRepo: categoryRepo,
		publisher:    publisher,
	}
}

// CreateCategoryInput holds the input for creating a category
type CreateCategoryInput struct {
	Name  string
	Type  domain.CategoryType
	Icon  *string
	Color *string
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, userID uuid.UUID, input CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !input.Type.Valid() {
		return nil, domain.ErrInvalidCategoryType
	}

	return s.categoryRepo.Create(ctx, &domain.Category{
		UserID: userID,
		Name:   name,
		Type:   input.Type,
		Icon:   input.Icon,
		Color:  input.Color,
	})
}

// Get retrieves a category by id, scoped to userID
func (s *CategoryService) Get(ctx context.Context, userID uuid.UUID, id int32) (*domain.Category, error) {
	return s.categoryRepo.GetByID(ctx, userID, id)
}

// GetAll retrieves the user's categories, optionally filtered by type
func (s *CategoryService) GetAll(ctx context.Context, userID uuid.UUID, typeFilter *domain.CategoryType) ([]*domain.Category, error) {
	return s.categoryRepo.GetAllByUser(ctx, userID, typeFilter)
}

// GetWithTotals retrieves the user's categories with per-category sums of
// raw operation amounts; categories without operations carry a zero total.
func (s *CategoryService) GetWithTotals(ctx context.Context, userID uuid.UUID, typeFilter *domain.CategoryType) ([]*domain.CategoryWithTotal, error) {
	return s.categoryRepo.GetWithTotals(ctx, userID, typeFilter)
}

// Update applies a partial update, type included. Changing the type does not
// re-sign the balance contribution of operations already recorded under the
// category: the type is read at operation create/update time only.
func (s *CategoryService) Update(ctx context.Context, userID uuid.UUID, id int32, update *domain.CategoryUpdate) (*domain.Category, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, domain.ErrNameRequired
		}
		if len(name) > domain.MaxNameLength {
			return nil, domain.ErrNameTooLong
		}
		update.Name = &name
	}
	if update.Type != nil && !update.Type.Valid() {
		return nil, domain.ErrInvalidCategoryType
	}

	category, err := s.categoryRepo.Update(ctx, userID, id, update)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, ws.CategoryUpdated(category))
	return category, nil
}

// Delete removes a category and its operations. Before the cascade takes the
// operations away, each one's signed effect is reversed against its account,
// all inside one transaction, so account balances stay consistent.
func (s *CategoryService) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	var adjusted []*domain.Account
	err := s.uow.WithinTx(ctx, func(stores domain.LedgerStores) error {
		category, err := stores.Categories().GetByID(ctx, userID, id)
		if err != nil {
			return err
		}

		operations, err := stores.Operations().GetAllByCategory(ctx, userID, id)
		if err != nil {
			return err
		}
		for _, op := range operations {
			account, err := stores.Accounts().AdjustBalance(ctx, op.AccountID,
				domain.SignedEffect(op.Amount, category.Type).Neg())
			if err != nil {
				return err
			}
			adjusted = append(adjusted, account)
		}

		return stores.Categories().Delete(ctx, userID, id)
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(userID, ws.CategoryDeleted(map[string]int32{"id": id}))
	for _, account := range adjusted {
		s.publisher.Publish(userID, ws.AccountUpdated(account))
	}
	return nil
}
