package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/kassa-app/kassa-backend/internal/domain"
	"github.com/kassa-app/kassa-backend/internal/middleware"
	"github.com/kassa-app/kassa-backend/internal/service"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest represents the create account request body
type CreateAccountRequest struct {
	Name     string  `json:"name"`
	Balance  string  `json:"balance,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Icon     *string `json:"icon,omitempty"`
}

// UpdateAccountRequest represents the update account request body
type UpdateAccountRequest struct {
	Name     *string `json:"name"`
	Balance  *string `json:"balance"`
	Currency *string `json:"currency"`
	Icon     *string `json:"icon"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        int32   `json:"id"`
	Name      string  `json:"name"`
	Balance   string  `json:"balance"`
	Currency  string  `json:"currency"`
	Icon      *string `json:"icon,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// TotalBalanceResponse represents the aggregate balance API response
type TotalBalanceResponse struct {
	TotalBalance string `json:"totalBalance"`
	Currency     string `json:"currency"`
}

func toAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Name:      account.Name,
		Balance:   account.Balance.StringFixed(2),
		Currency:  account.Currency,
		Icon:      account.Icon,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
		UpdatedAt: account.UpdatedAt.Format(time.RFC3339),
	}
}

func parseIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return int32(id), nil
}

// CreateAccount handles POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	balance := decimal.Zero
	if req.Balance != "" {
		var err error
		balance, err = decimal.NewFromString(req.Balance)
		if err != nil {
			return NewValidationError(c, "Invalid balance", []ValidationError{
				{Field: "balance", Message: "Must be a valid decimal number"},
			})
		}
	}

	account, err := h.accountService.Create(c.Request().Context(), userID, service.CreateAccountInput{
		Name:     req.Name,
		Balance:  balance,
		Currency: req.Currency,
		Icon:     req.Icon,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 255 characters or less"},
			})
		}
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to create account")
		return NewInternalError(c, "Failed to create account")
	}

	log.Info().Stringer("user_id", userID).Int32("account_id", account.ID).Str("name", account.Name).Msg("Account created")

	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// GetAccounts handles GET /api/v1/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	userID := middleware.GetUserID(c)

	accounts, err := h.accountService.GetAll(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to get accounts")
		return NewInternalError(c, "Failed to get accounts")
	}

	response := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		response[i] = toAccountResponse(account)
	}

	return c.JSON(http.StatusOK, response)
}

// GetAccount handles GET /api/v1/accounts/:id
func (h *AccountHandler) GetAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid account id", nil)
	}

	account, err := h.accountService.Get(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Stringer("user_id", userID).Int32("account_id", id).Msg("Failed to get account")
		return NewInternalError(c, "Failed to get account")
	}

	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// UpdateAccount handles PUT /api/v1/accounts/:id
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid account id", nil)
	}

	var req UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	update := &domain.AccountUpdate{
		Name:     req.Name,
		Currency: req.Currency,
		Icon:     req.Icon,
	}
	if req.Balance != nil {
		balance, err := decimal.NewFromString(*req.Balance)
		if err != nil {
			return NewValidationError(c, "Invalid balance", []ValidationError{
				{Field: "balance", Message: "Must be a valid decimal number"},
			})
		}
		update.Balance = &balance
	}

	account, err := h.accountService.Update(c.Request().Context(), userID, id, update)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name cannot be empty"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 255 characters or less"},
			})
		}
		log.Error().Err(err).Stringer("user_id", userID).Int32("account_id", id).Msg("Failed to update account")
		return NewInternalError(c, "Failed to update account")
	}

	log.Info().Stringer("user_id", userID).Int32("account_id", id).Msg("Account updated")

	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// DeleteAccount handles DELETE /api/v1/accounts/:id
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid account id", nil)
	}

	if err := h.accountService.Delete(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Stringer("user_id", userID).Int32("account_id", id).Msg("Failed to delete account")
		return NewInternalError(c, "Failed to delete account")
	}

	log.Info().Stringer("user_id", userID).Int32("account_id", id).Msg("Account deleted")

	return c.NoContent(http.StatusNoContent)
}

// GetTotalBalance handles GET /api/v1/accounts/total-balance
func (h *AccountHandler) GetTotalBalance(c echo.Context) error {
	userID := middleware.GetUserID(c)

	total, err := h.accountService.GetTotalBalance(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to get total balance")
		return NewInternalError(c, "Failed to get total balance")
	}

	return c.JSON(http.StatusOK, TotalBalanceResponse{
		TotalBalance: total.TotalBalance.StringFixed(2),
		Currency:     total.Currency,
	})
}
