package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/kassa-app/kassa-backend/internal/domain"
	"github.com/kassa-app/kassa-backend/internal/service"
	"github.com/kassa-app/kassa-backend/internal/testutil"
)

func newOperationHandler() (*OperationHandler, *testutil.MockStores) {
	stores := testutil.NewMockStores()
	uow := testutil.NewMockUnitOfWork(stores)
	operationService := service.NewOperationService(uow, stores.OperationRepo, nil)
	return NewOperationHandler(operationService), stores
}

func seedHandlerLedger(t *testing.T, stores *testutil.MockStores, userID uuid.UUID) (*domain.Account, *domain.Category) {
	t.Helper()
	account, err := stores.AccountRepo.Create(context.Background(), &domain.Account{
		UserID:   userID,
		Name:     "Cash",
		Balance:  decimal.NewFromInt(500),
		Currency: "KGS",
	})
	if err != nil {
		t.Fatalf("Failed to seed account: %v", err)
	}
	category, err := stores.CategoryRepo.Create(context.Background(), &domain.Category{
		UserID: userID,
		Name:   "Groceries",
		Type:   domain.CategoryTypeExpense,
	})
	if err != nil {
		t.Fatalf("Failed to seed category: %v", err)
	}
	return account, category
}

func TestCreateOperationHandler_Success(t *testing.T) {
	e := echo.New()
	handler, stores := newOperationHandler()

	userID := uuid.New()
	account, category := seedHandlerLedger(t, stores, userID)

	reqBody := fmt.Sprintf(`{"accountId": %d, "categoryId": %d, "amount": "100.00", "description": "weekly shop"}`, account.ID, category.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/operations", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, userID)

	if err := handler.CreateOperation(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var response OperationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Amount != "100.00" {
		t.Errorf("Expected amount '100.00', got %s", response.Amount)
	}
	if response.Description == nil || *response.Description != "weekly shop" {
		t.Error("Expected description in response")
	}

	got := stores.AccountRepo.Accounts[account.ID].Balance
	if !got.Equal(decimal.NewFromInt(400)) {
		t.Errorf("Expected balance 400 after expense, got %s", got.String())
	}
}

func TestCreateOperationHandler_NonPositiveAmount(t *testing.T) {
	e := echo.New()
	handler, stores := newOperationHandler()

	userID := uuid.New()
	account, category := seedHandlerLedger(t, stores, userID)

	reqBody := fmt.Sprintf(`{"accountId": %d, "categoryId": %d, "amount": "0"}`, account.ID, category.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/operations", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, userID)

	if err := handler.CreateOperation(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateOperationHandler_SubCentAmountRejected(t *testing.T) {
	e := echo.New()
	handler, stores := newOperationHandler()

	userID := uuid.New()
	account, category := seedHandlerLedger(t, stores, userID)

	reqBody := fmt.Sprintf(`{"accountId": %d, "categoryId": %d, "amount": "0.005"}`, account.ID, category.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/operations", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, userID)

	if err := handler.CreateOperation(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	got := stores.AccountRepo.Accounts[account.ID].Balance
	if !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected balance untouched at 500, got %s", got.String())
	}
}

func TestUpdateOperationHandler_SubCentAmountRejected(t *testing.T) {
	e := echo.New()
	handler, stores := newOperationHandler()

	userID := uuid.New()
	account, category := seedHandlerLedger(t, stores, userID)
	operation, err := stores.OperationRepo.Create(context.Background(), &domain.Operation{
		UserID:     userID,
		AccountID:  account.ID,
		CategoryID: category.ID,
		Amount:     decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("Failed to seed operation: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/operations/1", strings.NewReader(`{"amount": "19.999"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%d", operation.ID))

	setupAuthContext(c, userID)

	if err := handler.UpdateOperation(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateOperationHandler_TrailingZeroAmountAccepted(t *testing.T) {
	e := echo.New()
	handler, stores := newOperationHandler()

	userID := uuid.New()
	account, category := seedHandlerLedger(t, stores, userID)

	reqBody := fmt.Sprintf(`{"accountId": %d, "categoryId": %d, "amount": "10.100"}`, account.ID, category.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/operations", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, userID)

	if err := handler.CreateOperation(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	got := stores.AccountRepo.Accounts[account.ID].Balance
	if !got.Equal(decimal.RequireFromString("489.90")) {
		t.Errorf("Expected balance 489.90, got %s", got.String())
	}
}

func TestCreateOperationHandler_UnknownCategory(t *testing.T) {
	e := echo.New()
	handler, stores := newOperationHandler()

	userID := uuid.New()
	account, _ := seedHandlerLedger(t, stores, userID)

	reqBody := fmt.Sprintf(`{"accountId": %d, "categoryId": 999, "amount": "10"}`, account.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/operations", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, userID)

	if err := handler.CreateOperation(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestGetOperationsHandler_DateFilter(t *testing.T) {
	e := echo.New()
	handler, stores := newOperationHandler()

	userID := uuid.New()
	account, category := seedHandlerLedger(t, stores, userID)

	for _, date := range []string{"2026-01-10T12:00:00Z", "2026-02-20T12:00:00Z"} {
		reqBody := fmt.Sprintf(`{"accountId": %d, "categoryId": %d, "amount": "10", "operationDate": "%s"}`, account.ID, category.ID, date)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/operations", strings.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		setupAuthContext(c, userID)
		if err := handler.CreateOperation(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	// endDate is a plain date and must be inclusive
	req := httptest.NewRequest(http.MethodGet, "/api/v1/operations?startDate=2026-01-01&endDate=2026-01-10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)

	if err := handler.GetOperations(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []OperationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Errorf("Expected 1 operation in January window, got %d", len(response))
	}
}

func TestGetOperationsHandler_BadFilter(t *testing.T) {
	e := echo.New()
	handler, _ := newOperationHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/operations?accountId=zero", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New())

	if err := handler.GetOperations(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestUpdateOperationHandler_AmountChange(t *testing.T) {
	e := echo.New()
	handler, stores := newOperationHandler()

	userID := uuid.New()
	account, category := seedHandlerLedger(t, stores, userID)

	reqBody := fmt.Sprintf(`{"accountId": %d, "categoryId": %d, "amount": "100"}`, account.ID, category.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/operations", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)
	if err := handler.CreateOperation(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var created OperationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/operations/1", strings.NewReader(`{"amount": "30"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%d", created.ID))
	setupAuthContext(c, userID)

	if err := handler.UpdateOperation(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	got := stores.AccountRepo.Accounts[account.ID].Balance
	if !got.Equal(decimal.NewFromInt(470)) {
		t.Errorf("Expected balance 470, got %s", got.String())
	}
}

func TestDeleteOperationHandler_RestoresBalance(t *testing.T) {
	e := echo.New()
	handler, stores := newOperationHandler()

	userID := uuid.New()
	account, category := seedHandlerLedger(t, stores, userID)

	reqBody := fmt.Sprintf(`{"accountId": %d, "categoryId": %d, "amount": "100"}`, account.ID, category.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/operations", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)
	if err := handler.CreateOperation(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var created OperationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/operations/1", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%d", created.ID))
	setupAuthContext(c, userID)

	if err := handler.DeleteOperation(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	got := stores.AccountRepo.Accounts[account.ID].Balance
	if !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected balance restored to 500, got %s", got.String())
	}
}

func TestGetOperationDetailsHandler(t *testing.T) {
	e := echo.New()
	handler, stores := newOperationHandler()

	userID := uuid.New()
	account, category := seedHandlerLedger(t, stores, userID)

	reqBody := fmt.Sprintf(`{"accountId": %d, "categoryId": %d, "amount": "25"}`, account.ID, category.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/operations", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)
	if err := handler.CreateOperation(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/operations/details", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	setupAuthContext(c, userID)

	if err := handler.GetOperationDetails(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []OperationDetailsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 detail row, got %d", len(response))
	}
	if response[0].AccountName != "Cash" {
		t.Errorf("Expected account name 'Cash', got %s", response[0].AccountName)
	}
	if response[0].CategoryName != "Groceries" {
		t.Errorf("Expected category name 'Groceries', got %s", response[0].CategoryName)
	}
	if response[0].CategoryType != "expense" {
		t.Errorf("Expected category type 'expense', got %s", response[0].CategoryType)
	}
}
