package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kassa-app/kassa-backend/internal/domain"
)

// MockUserRepository is an in-memory implementation of domain.UserRepository
type MockUserRepository struct {
	Users map[uuid.UUID]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[uuid.UUID]*domain.User)}
}

// Create creates a new user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range m.Users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
		if u.Username == user.Username {
			return nil, domain.ErrUsernameTaken
		}
	}
	stored := *user
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.Users[stored.ID] = &stored
	return &stored, nil
}

// GetByID retrieves a user by id
func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := m.Users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by email
func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.Users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// GetByUsername retrieves a user by username
func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, user := range m.Users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Update applies a partial update to a user
func (m *MockUserRepository) Update(ctx context.Context, id uuid.UUID, update *domain.UserUpdate) (*domain.User, error) {
	user, ok := m.Users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	user.UpdatedAt = time.Now()
	return user, nil
}

// Delete removes a user
func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.Users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.Users, id)
	return nil
}

// MockAccountRepository is an in-memory implementation of domain.AccountRepository
type MockAccountRepository struct {
	Accounts map[int32]*domain.Account
	NextID   int32

	// AdjustBalanceErr, when set, makes AdjustBalance fail. Used to exercise
	// rollback paths.
	AdjustBalanceErr error
}

// NewMockAccountRepository creates a new MockAccountRepository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[int32]*domain.Account),
		NextID:   1,
	}
}

// Create creates a new account
func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	stored := *account
	stored.ID = m.NextID
	m.NextID++
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.Accounts[stored.ID] = &stored
	return &stored, nil
}

// GetByID retrieves an account by id, scoped to userID
func (m *MockAccountRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Account, error) {
	account, ok := m.Accounts[id]
	if !ok || account.UserID != userID {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// GetAllByUser retrieves all accounts owned by userID
func (m *MockAccountRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for _, account := range m.Accounts {
		if account.UserID == userID {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// Update applies a partial update to an account
func (m *MockAccountRepository) Update(ctx context.Context, userID uuid.UUID, id int32, update *domain.AccountUpdate) (*domain.Account, error) {
	account, err := m.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		account.Name = *update.Name
	}
	if update.Balance != nil {
		account.Balance = *update.Balance
	}
	if update.Currency != nil {
		account.Currency = *update.Currency
	}
	if update.Icon != nil {
		account.Icon = update.Icon
	}
	account.UpdatedAt = time.Now()
	return account, nil
}

// Delete removes an account
func (m *MockAccountRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	if _, err := m.GetByID(ctx, userID, id); err != nil {
		return err
	}
	delete(m.Accounts, id)
	return nil
}

// AdjustBalance adds delta to an account's balance
func (m *MockAccountRepository) AdjustBalance(ctx context.Context, id int32, delta decimal.Decimal) (*domain.Account, error) {
	if m.AdjustBalanceErr != nil {
		return nil, m.AdjustBalanceErr
	}
	account, ok := m.Accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	account.Balance = account.Balance.Add(delta)
	account.UpdatedAt = time.Now()
	// Return a value snapshot, as a database row scan would
	snapshot := *account
	return &snapshot, nil
}

// MockCategoryRepository is an in-memory implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int32]*domain.Category
	NextID     int32

	// Operations backs GetWithTotals; set by NewMockStores
	Operations *MockOperationRepository
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[int32]*domain.Category),
		NextID:     1,
	}
}

// Create creates a new category
func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	stored := *category
	stored.ID = m.NextID
	m.NextID++
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.Categories[stored.ID] = &stored
	return &stored, nil
}

// GetByID retrieves a category by id, scoped to userID
func (m *MockCategoryRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok || category.UserID != userID {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

// GetAllByUser retrieves the user's categories, optionally filtered by type
func (m *MockCategoryRepository) GetAllByUser(ctx context.Context, userID uuid.UUID, typeFilter *domain.CategoryType) ([]*domain.Category, error) {
	var categories []*domain.Category
	for _, category := range m.Categories {
		if category.UserID != userID {
			continue
		}
		if typeFilter != nil && category.Type != *typeFilter {
			continue
		}
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

// GetWithTotals retrieves the user's categories with per-category sums
func (m *MockCategoryRepository) GetWithTotals(ctx context.Context, userID uuid.UUID, typeFilter *domain.CategoryType) ([]*domain.CategoryWithTotal, error) {
	categories, err := m.GetAllByUser(ctx, userID, typeFilter)
	if err != nil {
		return nil, err
	}
	result := make([]*domain.CategoryWithTotal, len(categories))
	for i, category := range categories {
		total := decimal.Zero
		if m.Operations != nil {
			for _, op := range m.Operations.Operations {
				if op.UserID == userID && op.CategoryID == category.ID {
					total = total.Add(op.Amount)
				}
			}
		}
		result[i] = &domain.CategoryWithTotal{Category: *category, TotalAmount: total}
	}
	return result, nil
}

// Update applies a partial update to a category
func (m *MockCategoryRepository) Update(ctx context.Context, userID uuid.UUID, id int32, update *domain.CategoryUpdate) (*domain.Category, error) {
	category, err := m.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		category.Name = *update.Name
	}
	if update.Type != nil {
		category.Type = *update.Type
	}
	if update.Icon != nil {
		category.Icon = update.Icon
	}
	if update.Color != nil {
		category.Color = update.Color
	}
	category.UpdatedAt = time.Now()
	return category, nil
}

// Delete removes a category and, mirroring the store's cascade, its operations
func (m *MockCategoryRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	if _, err := m.GetByID(ctx, userID, id); err != nil {
		return err
	}
	delete(m.Categories, id)
	if m.Operations != nil {
		for opID, op := range m.Operations.Operations {
			if op.CategoryID == id {
				delete(m.Operations.Operations, opID)
			}
		}
	}
	return nil
}

// MockOperationRepository is an in-memory implementation of domain.OperationRepository
type MockOperationRepository struct {
	Operations map[int32]*domain.Operation
	NextID     int32

	// Accounts and Categories back GetWithDetails; set by NewMockStores
	Accounts   *MockAccountRepository
	Categories *MockCategoryRepository
}

// NewMockOperationRepository creates a new MockOperationRepository
func NewMockOperationRepository() *MockOperationRepository {
	return &MockOperationRepository{
		Operations: make(map[int32]*domain.Operation),
		NextID:     1,
	}
}

// Create creates a new operation
func (m *MockOperationRepository) Create(ctx context.Context, operation *domain.Operation) (*domain.Operation, error) {
	stored := *operation
	stored.ID = m.NextID
	m.NextID++
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.Operations[stored.ID] = &stored
	return &stored, nil
}

// GetByID retrieves an operation by id, scoped to userID
func (m *MockOperationRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Operation, error) {
	operation, ok := m.Operations[id]
	if !ok || operation.UserID != userID {
		return nil, domain.ErrOperationNotFound
	}
	return operation, nil
}

func matchesFilters(op *domain.Operation, filters *domain.OperationFilters) bool {
	if filters == nil {
		return true
	}
	if filters.AccountID != nil && op.AccountID != *filters.AccountID {
		return false
	}
	if filters.CategoryID != nil && op.CategoryID != *filters.CategoryID {
		return false
	}
	if filters.StartDate != nil && op.OperationDate.Before(*filters.StartDate) {
		return false
	}
	if filters.EndDate != nil && op.OperationDate.After(*filters.EndDate) {
		return false
	}
	return true
}

func sortOperations(operations []*domain.Operation) {
	sort.Slice(operations, func(i, j int) bool {
		if operations[i].OperationDate.Equal(operations[j].OperationDate) {
			return operations[i].ID < operations[j].ID
		}
		return operations[i].OperationDate.After(operations[j].OperationDate)
	})
}

// GetAllByUser retrieves the user's operations matching the given filters
func (m *MockOperationRepository) GetAllByUser(ctx context.Context, userID uuid.UUID, filters *domain.OperationFilters) ([]*domain.Operation, error) {
	var operations []*domain.Operation
	for _, op := range m.Operations {
		if op.UserID == userID && matchesFilters(op, filters) {
			operations = append(operations, op)
		}
	}
	sortOperations(operations)
	return operations, nil
}

// GetAllByCategory retrieves every operation recorded under a category
func (m *MockOperationRepository) GetAllByCategory(ctx context.Context, userID uuid.UUID, categoryID int32) ([]*domain.Operation, error) {
	var operations []*domain.Operation
	for _, op := range m.Operations {
		if op.UserID == userID && op.CategoryID == categoryID {
			operations = append(operations, op)
		}
	}
	sortOperations(operations)
	return operations, nil
}

// GetWithDetails retrieves operations joined with account and category names
func (m *MockOperationRepository) GetWithDetails(ctx context.Context, userID uuid.UUID, filters *domain.OperationFilters) ([]*domain.OperationDetails, error) {
	operations, err := m.GetAllByUser(ctx, userID, filters)
	if err != nil {
		return nil, err
	}
	details := make([]*domain.OperationDetails, len(operations))
	for i, op := range operations {
		d := &domain.OperationDetails{Operation: *op}
		if m.Accounts != nil {
			if account, ok := m.Accounts.Accounts[op.AccountID]; ok {
				d.AccountName = account.Name
			}
		}
		if m.Categories != nil {
			if category, ok := m.Categories.Categories[op.CategoryID]; ok {
				d.CategoryName = category.Name
				d.CategoryType = category.Type
			}
		}
		details[i] = d
	}
	return details, nil
}

// Update applies a partial update to an operation
func (m *MockOperationRepository) Update(ctx context.Context, userID uuid.UUID, id int32, update *domain.OperationUpdate) (*domain.Operation, error) {
	operation, err := m.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if update.AccountID != nil {
		operation.AccountID = *update.AccountID
	}
	if update.CategoryID != nil {
		operation.CategoryID = *update.CategoryID
	}
	if update.Amount != nil {
		operation.Amount = *update.Amount
	}
	if update.Description != nil {
		operation.Description = update.Description
	}
	if update.OperationDate != nil {
		operation.OperationDate = *update.OperationDate
	}
	operation.UpdatedAt = time.Now()
	return operation, nil
}

// Delete removes an operation
func (m *MockOperationRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	if _, err := m.GetByID(ctx, userID, id); err != nil {
		return err
	}
	delete(m.Operations, id)
	return nil
}

// MockStores bundles the in-memory repositories behind domain.LedgerStores
type MockStores struct {
	AccountRepo   *MockAccountRepository
	CategoryRepo  *MockCategoryRepository
	OperationRepo *MockOperationRepository
}

// NewMockStores creates a wired set of in-memory repositories
func NewMockStores() *MockStores {
	accounts := NewMockAccountRepository()
	categories := NewMockCategoryRepository()
	operations := NewMockOperationRepository()
	categories.Operations = operations
	operations.Accounts = accounts
	operations.Categories = categories
	return &MockStores{
		AccountRepo:   accounts,
		CategoryRepo:  categories,
		OperationRepo: operations,
	}
}

// Accounts returns the account repository
func (s *MockStores) Accounts() domain.AccountRepository { return s.AccountRepo }

// Categories returns the category repository
func (s *MockStores) Categories() domain.CategoryRepository { return s.CategoryRepo }

// Operations returns the operation repository
func (s *MockStores) Operations() domain.OperationRepository { return s.OperationRepo }

// MockUnitOfWork implements domain.UnitOfWork over MockStores. When fn
// fails, state is restored to the pre-call snapshot to emulate a rollback.
type MockUnitOfWork struct {
	Stores *MockStores
}

// NewMockUnitOfWork creates a MockUnitOfWork over the given stores
func NewMockUnitOfWork(stores *MockStores) *MockUnitOfWork {
	return &MockUnitOfWork{Stores: stores}
}

// WithinTx runs fn against the in-memory stores with rollback-on-error
func (u *MockUnitOfWork) WithinTx(ctx context.Context, fn func(stores domain.LedgerStores) error) error {
	accounts := snapshotAccounts(u.Stores.AccountRepo.Accounts)
	categories := snapshotCategories(u.Stores.CategoryRepo.Categories)
	operations := snapshotOperations(u.Stores.OperationRepo.Operations)

	if err := fn(u.Stores); err != nil {
		u.Stores.AccountRepo.Accounts = accounts
		u.Stores.CategoryRepo.Categories = categories
		u.Stores.OperationRepo.Operations = operations
		return err
	}
	return nil
}

func snapshotAccounts(src map[int32]*domain.Account) map[int32]*domain.Account {
	dst := make(map[int32]*domain.Account, len(src))
	for id, account := range src {
		copied := *account
		dst[id] = &copied
	}
	return dst
}

func snapshotCategories(src map[int32]*domain.Category) map[int32]*domain.Category {
	dst := make(map[int32]*domain.Category, len(src))
	for id, category := range src {
		copied := *category
		dst[id] = &copied
	}
	return dst
}

func snapshotOperations(src map[int32]*domain.Operation) map[int32]*domain.Operation {
	dst := make(map[int32]*domain.Operation, len(src))
	for id, operation := range src {
		copied := *operation
		dst[id] = &copied
	}
	return dst
}
