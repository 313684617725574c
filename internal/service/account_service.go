package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kassa-app/kassa-backend/internal/domain"
	"github.com/kassa-app/kassa-backend/internal/ws"
)

// AccountService handles account-related business logic
type AccountService struct {
	accountRepo     domain.AccountRepository
	publisher       ws.EventPublisher
	defaultCurrency string
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo domain.AccountRepository, publisher ws.EventPublisher, defaultCurrency string) *AccountService {
	if publisher == nil {
		publisher = &ws.NoOpPublisher{}
	}
	if defaultCurrency == "" {
		defaultCurrency = domain.DefaultCurrency
	}
	return &AccountService{
		accountRepo:     accountRepo,
		publisher:       publisher,
		defaultCurrency: defaultCurrency,
	}
}

// CreateAccountInput holds the input for creating an account
type CreateAccountInput struct {
	Name     string
	Balance  decimal.Decimal
	Currency string
	Icon     *string
}

// Create creates a new account with its caller-supplied starting balance
func (s *AccountService) Create(ctx context.Context, userID uuid.UUID, input CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	currency := input.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	return s.accountRepo.Create(ctx, &domain.Account{
		UserID:   userID,
		Name:     name,
		Balance:  input.Balance,
		Currency: currency,
		Icon:     input.Icon,
	})
}

// Get retrieves an account by id, scoped to userID
func (s *AccountService) Get(ctx context.Context, userID uuid.UUID, id int32) (*domain.Account, error) {
	return s.accountRepo.GetByID(ctx, userID, id)
}

// GetAll retrieves all accounts owned by the user
func (s *AccountService) GetAll(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	return s.accountRepo.GetAllByUser(ctx, userID)
}

// Update applies a partial update. Balance here is the direct user edit
// path; ledger-driven changes go through AdjustBalance instead.
func (s *AccountService) Update(ctx context.Context, userID uuid.UUID, id int32, update *domain.AccountUpdate) (*domain.Account, error) {
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

	account, err := s.accountRepo.Update(ctx, userID, id, update)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, ws.AccountUpdated(account))
	return account, nil
}

// Delete removes the account; its operations go with it through the store's
// cascade. No balance reversal is needed: the account row itself is gone.
func (s *AccountService) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	if err := s.accountRepo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.publisher.Publish(userID, ws.AccountDeleted(map[string]int32{"id": id}))
	return nil
}

// GetTotalBalance sums the balances of all the user's accounts. The label is
// the system-wide default currency; no cross-currency conversion happens.
func (s *AccountService) GetTotalBalance(ctx context.Context, userID uuid.UUID) (*domain.TotalBalance, error) {
	accounts, err := s.accountRepo.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, account := range accounts {
		total = total.Add(account.Balance)
	}

	return &domain.TotalBalance{
		TotalBalance: total,
		Currency:     s.defaultCurrency,
	}, nil
}
