package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kassa-app/kassa-backend/internal/domain"
	"github.com/kassa-app/kassa-backend/internal/testutil"
)

func TestCreateCategory_Success(t *testing.T) {
	stores := testutil.NewMockStores()
	uow := testutil.NewMockUnitOfWork(stores)
	categoryService := NewCategoryService(uow, stores.CategoryRepo, nil)

	userID := uuid.New()
	category, err := categoryService.Create(context.Background(), userID, CreateCategoryInput{
		Name: "Groceries",
		Type: domain.CategoryTypeExpense,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if category.Name != "Groceries" {
		t.Errorf("Expected name 'Groceries', got %s", category.Name)
	}
	if category.Type != domain.CategoryTypeExpense {
		t.Errorf("Expected type 'expense', got %s", category.Type)
	}
	if category.UserID != userID {
		t.Errorf("Expected owner %s, got %s", userID, category.UserID)
	}
}

func TestCreateCategory_InvalidType(t *testing.T) {
	stores := testutil.NewMockStores()
	uow := testutil.NewMockUnitOfWork(stores)
	categoryService := NewCategoryService(uow, stores.CategoryRepo, nil)

	_, err := categoryService.Create(context.Background(), uuid.New(), CreateCategoryInput{
		Name: "Transfers",
		Type: domain.CategoryType("transfer"),
	})
	if !errors.Is(err, domain.ErrInvalidCategoryType) {
		t.Errorf("Expected ErrInvalidCategoryType, got %v", err)
	}
}

func TestUpdateCategory_AppliesTypeChange(t *testing.T) {
	stores := testutil.NewMockStores()
	uow := testutil.NewMockUnitOfWork(stores)
	categoryService := NewCategoryService(uow, stores.CategoryRepo, nil)

	userID := uuid.New()
	category, err := categoryService.Create(context.Background(), userID, CreateCategoryInput{
		Name: "Side Gig",
		Type: domain.CategoryTypeExpense,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	incomeType := domain.CategoryTypeIncome
	updated, err := categoryService.Update(context.Background(), userID, category.ID, &domain.CategoryUpdate{
		Type: &incomeType,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if updated.Type != domain.CategoryTypeIncome {
		t.Errorf("Expected type 'income', got %s", updated.Type)
	}
}

func TestUpdateCategory_TypeChangeDoesNotTouchBalances(t *testing.T) {
	stores := testutil.NewMockStores()
	uow := testutil.NewMockUnitOfWork(stores)
	categoryService := NewCategoryService(uow, stores.CategoryRepo, nil)
	operationService := NewOperationService(uow, stores.OperationRepo, nil)

	userID := uuid.New()
	account, category := seedLedger(t, stores, userID, decimal.NewFromInt(500), domain.CategoryTypeExpense)

	if _, err := operationService.Create(context.Background(), userID, CreateOperationInput{
		AccountID:  account.ID,
		CategoryID: category.ID,
		Amount:     decimal.NewFromInt(100),
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	incomeType := domain.CategoryTypeIncome
	if _, err := categoryService.Update(context.Background(), userID, category.ID, &domain.CategoryUpdate{
		Type: &incomeType,
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Recorded operations keep their original contribution
	got := stores.AccountRepo.Accounts[account.ID].Balance
	if !got.Equal(decimal.NewFromInt(400)) {
		t.Errorf("Expected balance still 400, got %s", got.String())
	}
}

func TestDeleteCategory_ReversesOperationEffects(t *testing.T) {
	stores := testutil.NewMockStores()
	uow := testutil.NewMockUnitOfWork(stores)
	categoryService := NewCategoryService(uow, stores.CategoryRepo, nil)
	operationService := NewOperationService(uow, stores.OperationRepo, nil)

	userID := uuid.New()
	account, category := seedLedger(t, stores, userID, decimal.NewFromInt(500), domain.CategoryTypeExpense)

	for _, amount := range []int64{100, 50} {
		if _, err := operationService.Create(context.Background(), userID, CreateOperationInput{
			AccountID:  account.ID,
			CategoryID: category.ID,
			Amount:     decimal.NewFromInt(amount),
		}); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	got := stores.AccountRepo.Accounts[account.ID].Balance
	if !got.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("Expected balance 350 before delete, got %s", got.String())
	}

	if err := categoryService.Delete(context.Background(), userID, category.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got = stores.AccountRepo.Accounts[account.ID].Balance
	if !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected balance restored to 500, got %s", got.String())
	}
	if len(stores.OperationRepo.Operations) != 0 {
		t.Error("Expected operations removed with the category")
	}
	if _, err := categoryService.Get(context.Background(), userID, category.ID); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("Expected ErrCategoryNotFound after delete, got %v", err)
	}
}

func TestDeleteCategory_RollsBackOnAdjustFailure(t *testing.T) {
	stores := testutil.NewMockStores()
	uow := testutil.NewMockUnitOfWork(stores)
	categoryService := NewCategoryService(uow, stores.CategoryRepo, nil)
	operationService := NewOperationService(uow, stores.OperationRepo, nil)

	userID := uuid.New()
	account, category := seedLedger(t, stores, userID, decimal.NewFromInt(500), domain.CategoryTypeExpense)

	if _, err := operationService.Create(context.Background(), userID, CreateOperationInput{
		AccountID:  account.ID,
		CategoryID: category.ID,
		Amount:     decimal.NewFromInt(100),
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	stores.AccountRepo.AdjustBalanceErr = errors.New("connection reset")

	if err := categoryService.Delete(context.Background(), userID, category.ID); err == nil {
		t.Fatal("Expected an error")
	}

	if _, ok := stores.CategoryRepo.Categories[category.ID]; !ok {
		t.Error("Expected category to survive the failed delete")
	}
	if len(stores.OperationRepo.Operations) != 1 {
		t.Error("Expected operation to survive the failed delete")
	}
	got := stores.AccountRepo.Accounts[account.ID].Balance
	if !got.Equal(decimal.NewFromInt(400)) {
		t.Errorf("Expected balance still 400, got %s", got.String())
	}
}

func TestGetCategoriesWithTotals_SumsRawAmounts(t *testing.T) {
	stores := testutil.NewMockStores()
	uow := testutil.NewMockUnitOfWork(stores)
	categoryService := NewCategoryService(uow, stores.CategoryRepo, nil)
	operationService := NewOperationService(uow, stores.OperationRepo, nil)

	userID := uuid.New()
	account, spending := seedLedger(t, stores, userID, decimal.NewFromInt(1000), domain.CategoryTypeExpense)
	empty, err := categoryService.Create(context.Background(), userID, CreateCategoryInput{
		Name: "Unused",
		Type: domain.CategoryTypeExpense,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, amount := range []int64{100, 40} {
		if _, err := operationService.Create(context.Background(), userID, CreateOperationInput{
			AccountID:  account.ID,
			CategoryID: spending.ID,
			Amount:     decimal.NewFromInt(amount),
		}); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	totals, err := categoryService.GetWithTotals(context.Background(), userID, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(totals) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(totals))
	}
	for _, entry := range totals {
		switch entry.ID {
		case spending.ID:
			if !entry.TotalAmount.Equal(decimal.NewFromInt(140)) {
				t.Errorf("Expected total 140, got %s", entry.TotalAmount.String())
			}
		case empty.ID:
			if !entry.TotalAmount.Equal(decimal.Zero) {
				t.Errorf("Expected zero total for unused category, got %s", entry.TotalAmount.String())
			}
		default:
			t.Errorf("Unexpected category %d in totals", entry.ID)
		}
	}
}

func TestGetCategories_TypeFilter(t *testing.T) {
	stores := testutil.NewMockStores()
	uow := testutil.NewMockUnitOfWork(stores)
	categoryService := NewCategoryService(uow, stores.CategoryRepo, nil)

	userID := uuid.New()
	if _, err := categoryService.Create(context.Background(), userID, CreateCategoryInput{
		Name: "Groceries",
		Type: domain.CategoryTypeExpense,
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := categoryService.Create(context.Background(), userID, CreateCategoryInput{
		Name: "Salary",
		Type: domain.CategoryTypeIncome,
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	incomeType := domain.CategoryTypeIncome
	categories, err := categoryService.GetAll(context.Background(), userID, &incomeType)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(categories) != 1 || categories[0].Name != "Salary" {
		t.Errorf("Expected only the income category, got %d entries", len(categories))
	}
}
