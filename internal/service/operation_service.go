package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kassa-app/kassa-backend/internal/domain"
	"github.com/kassa-app/kassa-backend/internal/ws"
)

// OperationService implements the balance ledger protocol: every create,
// update or delete of an operation adjusts the owning account's balance in
// the same database transaction, reversing the old effect before applying
// the new one.
type OperationService struct {
	uow           domain.UnitOfWork
	operationRepo domain.OperationRepository
	publisher     ws.EventPublisher
}

// NewOperationService creates a new OperationService. operationRepo serves
// the read paths; all mutations go through the unit of work.
func NewOperationService(uow domain.UnitOfWork, operationRepo domain.OperationRepository, publisher ws.EventPublisher) *OperationService {
	if publisher == nil {
		publisher = &ws.NoOpPublisher{}
	}
	return &OperationService{
		uow:           uow,
		operationRepo: operationRepo,
		publisher:     publisher,
	}
}

// CreateOperationInput holds the input for creating an operation
type CreateOperationInput struct {
	AccountID     int32
	CategoryID    int32
	Amount        decimal.Decimal
	Description   *string
	OperationDate *time.Time
}

// Create inserts an operation and applies its signed effect to the referenced
// account, both inside one transaction. The account and category must exist
// and belong to userID.
func (s *OperationService) Create(ctx context.Context, userID uuid.UUID, input CreateOperationInput) (*domain.Operation, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	var (
		created *domain.Operation
		account *domain.Account
	)
	err := s.uow.WithinTx(ctx, func(stores domain.LedgerStores) error {
		if _, err := stores.Accounts().GetByID(ctx, userID, input.AccountID); err != nil {
			return err
		}
		category, err := stores.Categories().GetByID(ctx, userID, input.CategoryID)
		if err != nil {
			return err
		}

		operationDate := time.Now().UTC()
		if input.OperationDate != nil {
			operationDate = *input.OperationDate
		}

		created, err = stores.Operations().Create(ctx, &domain.Operation{
			UserID:        userID,
			AccountID:     input.AccountID,
			CategoryID:    input.CategoryID,
			Amount:        input.Amount,
			Description:   input.Description,
			OperationDate: operationDate,
		})
		if err != nil {
			return err
		}

		account, err = stores.Accounts().AdjustBalance(ctx, input.AccountID, domain.SignedEffect(input.Amount, category.Type))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, ws.OperationCreated(created))
	s.publisher.Publish(userID, ws.AccountUpdated(account))
	return created, nil
}

// Get retrieves an operation by id, scoped to userID
func (s *OperationService) Get(ctx context.Context, userID uuid.UUID, id int32) (*domain.Operation, error) {
	return s.operationRepo.GetByID(ctx, userID, id)
}

// GetAll lists the user's operations with optional conjunctive filters
func (s *OperationService) GetAll(ctx context.Context, userID uuid.UUID, filters *domain.OperationFilters) ([]*domain.Operation, error) {
	return s.operationRepo.GetAllByUser(ctx, userID, filters)
}

// GetWithDetails lists the user's operations joined with account and
// category names
func (s *OperationService) GetWithDetails(ctx context.Context, userID uuid.UUID, filters *domain.OperationFilters) ([]*domain.OperationDetails, error) {
	return s.operationRepo.GetWithDetails(ctx, userID, filters)
}

// Update applies a partial update to an operation. The old signed effect is
// reversed against the OLD account using the category snapshot taken before
// the row changes; the new effect is applied to the effective NEW account.
// When the account reference moves, both accounts end up correct. All of it
// is one transaction.
func (s *OperationService) Update(ctx context.Context, userID uuid.UUID, id int32, update *domain.OperationUpdate) (*domain.Operation, error) {
	if update.Amount != nil && update.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	var (
		updated    *domain.Operation
		oldAccount *domain.Account
		newAccount *domain.Account
	)
	err := s.uow.WithinTx(ctx, func(stores domain.LedgerStores) error {
		existing, err := stores.Operations().GetByID(ctx, userID, id)
		if err != nil {
			return err
		}

		// Old category snapshot before the row changes; its type decides the
		// sign of the reversal.
		oldCategory, err := stores.Categories().GetByID(ctx, userID, existing.CategoryID)
		if err != nil {
			return err
		}

		// A moved operation must land on an account the caller owns.
		if update.AccountID != nil && *update.AccountID != existing.AccountID {
			if _, err := stores.Accounts().GetByID(ctx, userID, *update.AccountID); err != nil {
				return err
			}
		}

		oldAccount, err = stores.Accounts().AdjustBalance(ctx, existing.AccountID,
			domain.SignedEffect(existing.Amount, oldCategory.Type).Neg())
		if err != nil {
			return err
		}

		updated, err = stores.Operations().Update(ctx, userID, id, update)
		if err != nil {
			return err
		}

		// The updated row already carries the effective values: updated field
		// if present in the partial, prior value otherwise.
		newCategory, err := stores.Categories().GetByID(ctx, userID, updated.CategoryID)
		if err != nil {
			return err
		}

		newAccount, err = stores.Accounts().AdjustBalance(ctx, updated.AccountID,
			domain.SignedEffect(updated.Amount, newCategory.Type))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, ws.OperationUpdated(updated))
	s.publisher.Publish(userID, ws.AccountUpdated(newAccount))
	// oldAccount only carries a final balance when the operation moved off it;
	// otherwise it is an intermediate snapshot superseded by newAccount.
	if oldAccount.ID != newAccount.ID {
		s.publisher.Publish(userID, ws.AccountUpdated(oldAccount))
	}
	return updated, nil
}

// Delete reverses the operation's signed effect and removes the row, both
// inside one transaction.
func (s *OperationService) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	var (
		deleted *domain.Operation
		account *domain.Account
	)
	err := s.uow.WithinTx(ctx, func(stores domain.LedgerStores) error {
		existing, err := stores.Operations().GetByID(ctx, userID, id)
		if err != nil {
			return err
		}
		category, err := stores.Categories().GetByID(ctx, userID, existing.CategoryID)
		if err != nil {
			return err
		}

		account, err = stores.Accounts().AdjustBalance(ctx, existing.AccountID,
			domain.SignedEffect(existing.Amount, category.Type).Neg())
		if err != nil {
			return err
		}

		deleted = existing
		return stores.Operations().Delete(ctx, userID, id)
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(userID, ws.OperationDeleted(deleted))
	s.publisher.Publish(userID, ws.AccountUpdated(account))
	return nil
}
