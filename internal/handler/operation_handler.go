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

// OperationHandler handles operation-related HTTP requests
type OperationHandler struct {
	operationService *service.OperationService
}

// NewOperationHandler creates a new OperationHandler
func NewOperationHandler(operationService *service.OperationService) *OperationHandler {
	return &OperationHandler{operationService: operationService}
}

// CreateOperationRequest represents the create operation request body
type CreateOperationRequest struct {
	AccountID     int32   `json:"accountId"`
	CategoryID    int32   `json:"categoryId"`
	Amount        string  `json:"amount"`
	Description   *string `json:"description,omitempty"`
	OperationDate *string `json:"operationDate,omitempty"`
}

// UpdateOperationRequest represents the update operation request body
type UpdateOperationRequest struct {
	AccountID     *int32  `json:"accountId"`
	CategoryID    *int32  `json:"categoryId"`
	Amount        *string `json:"amount"`
	Description   *string `json:"description"`
	OperationDate *string `json:"operationDate"`
}

// OperationResponse represents an operation in API responses
type OperationResponse struct {
	ID            int32   `json:"id"`
	AccountID     int32   `json:"accountId"`
	CategoryID    int32   `json:"categoryId"`
	Amount        string  `json:"amount"`
	Description   *string `json:"description,omitempty"`
	OperationDate string  `json:"operationDate"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// OperationDetailsResponse represents an operation joined with account and
// category names
type OperationDetailsResponse struct {
	OperationResponse
	AccountName  string `json:"accountName"`
	CategoryName string `json:"categoryName"`
	CategoryType string `json:"categoryType"`
}

func toOperationResponse(op *domain.Operation) OperationResponse {
	return OperationResponse{
		ID:            op.ID,
		AccountID:     op.AccountID,
		CategoryID:    op.CategoryID,
		Amount:        op.Amount.StringFixed(2),
		Description:   op.Description,
		OperationDate: op.OperationDate.Format(time.RFC3339),
		CreatedAt:     op.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     op.UpdatedAt.Format(time.RFC3339),
	}
}

// parseOperationDate accepts RFC 3339 timestamps and plain dates
func parseOperationDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// parseOperationFilters reads the optional query params for list endpoints.
// endDate is inclusive, so a plain date extends to the end of that day.
func parseOperationFilters(c echo.Context) (*domain.OperationFilters, []ValidationError) {
	var errs []ValidationError
	filters := &domain.OperationFilters{}

	if raw := c.QueryParam("accountId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || id <= 0 {
			errs = append(errs, ValidationError{Field: "accountId", Message: "Must be a positive integer"})
		} else {
			v := int32(id)
			filters.AccountID = &v
		}
	}
	if raw := c.QueryParam("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || id <= 0 {
			errs = append(errs, ValidationError{Field: "categoryId", Message: "Must be a positive integer"})
		} else {
			v := int32(id)
			filters.CategoryID = &v
		}
	}
	if raw := c.QueryParam("startDate"); raw != "" {
		t, err := parseOperationDate(raw)
		if err != nil {
			errs = append(errs, ValidationError{Field: "startDate", Message: "Must be an RFC 3339 timestamp or YYYY-MM-DD date"})
		} else {
			filters.StartDate = &t
		}
	}
	if raw := c.QueryParam("endDate"); raw != "" {
		t, err := parseOperationDate(raw)
		if err != nil {
			errs = append(errs, ValidationError{Field: "endDate", Message: "Must be an RFC 3339 timestamp or YYYY-MM-DD date"})
		} else {
			if len(raw) == len("2006-01-02") {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			filters.EndDate = &t
		}
	}

	return filters, errs
}

// parseOperationAmount parses a money amount. Amounts carry at most two
// fraction digits so the stored row and the balance adjustment hold the
// same value.
func parseOperationAmount(raw string) (decimal.Decimal, *ValidationError) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, &ValidationError{Field: "amount", Message: "Must be a valid decimal number"}
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.Decimal{}, &ValidationError{Field: "amount", Message: "Must have at most two decimal places"}
	}
	return amount, nil
}

func operationValidationResponse(c echo.Context, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be greater than zero"},
		}), true
	case errors.Is(err, domain.ErrAccountNotFound):
		return NewNotFoundError(c, "Account not found"), true
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewNotFoundError(c, "Category not found"), true
	case errors.Is(err, domain.ErrOperationNotFound):
		return NewNotFoundError(c, "Operation not found"), true
	}
	return nil, false
}

// CreateOperation handles POST /api/v1/operations
func (h *OperationHandler) CreateOperation(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateOperationRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, amountErr := parseOperationAmount(req.Amount)
	if amountErr != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{*amountErr})
	}

	input := service.CreateOperationInput{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Description: req.Description,
	}
	if req.OperationDate != nil {
		t, err := parseOperationDate(*req.OperationDate)
		if err != nil {
			return NewValidationError(c, "Invalid operation date", []ValidationError{
				{Field: "operationDate", Message: "Must be an RFC 3339 timestamp or YYYY-MM-DD date"},
			})
		}
		input.OperationDate = &t
	}

	operation, err := h.operationService.Create(c.Request().Context(), userID, input)
	if err != nil {
		if resp, ok := operationValidationResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to create operation")
		return NewInternalError(c, "Failed to create operation")
	}

	log.Info().
		Stringer("user_id", userID).
		Int32("operation_id", operation.ID).
		Int32("account_id", operation.AccountID).
		Str("amount", operation.Amount.String()).
		Msg("Operation created")

	return c.JSON(http.StatusCreated, toOperationResponse(operation))
}

// GetOperations handles GET /api/v1/operations
func (h *OperationHandler) GetOperations(c echo.Context) error {
	userID := middleware.GetUserID(c)

	filters, errs := parseOperationFilters(c)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid filters", errs)
	}

	operations, err := h.operationService.GetAll(c.Request().Context(), userID, filters)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to get operations")
		return NewInternalError(c, "Failed to get operations")
	}

	response := make([]OperationResponse, len(operations))
	for i, op := range operations {
		response[i] = toOperationResponse(op)
	}

	return c.JSON(http.StatusOK, response)
}

// GetOperationDetails handles GET /api/v1/operations/details
func (h *OperationHandler) GetOperationDetails(c echo.Context) error {
	userID := middleware.GetUserID(c)

	filters, errs := parseOperationFilters(c)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid filters", errs)
	}

	operations, err := h.operationService.GetWithDetails(c.Request().Context(), userID, filters)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to get operation details")
		return NewInternalError(c, "Failed to get operation details")
	}

	response := make([]OperationDetailsResponse, len(operations))
	for i, op := range operations {
		response[i] = OperationDetailsResponse{
			OperationResponse: toOperationResponse(&op.Operation),
			AccountName:       op.AccountName,
			CategoryName:      op.CategoryName,
			CategoryType:      string(op.CategoryType),
		}
	}

	return c.JSON(http.StatusOK, response)
}

// GetOperation handles GET /api/v1/operations/:id
func (h *OperationHandler) GetOperation(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid operation id", nil)
	}

	operation, err := h.operationService.Get(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrOperationNotFound) {
			return NewNotFoundError(c, "Operation not found")
		}
		log.Error().Err(err).Stringer("user_id", userID).Int32("operation_id", id).Msg("Failed to get operation")
		return NewInternalError(c, "Failed to get operation")
	}

	return c.JSON(http.StatusOK, toOperationResponse(operation))
}

// UpdateOperation handles PUT /api/v1/operations/:id
func (h *OperationHandler) UpdateOperation(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid operation id", nil)
	}

	var req UpdateOperationRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	update := &domain.OperationUpdate{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
	}
	if req.Amount != nil {
		amount, amountErr := parseOperationAmount(*req.Amount)
		if amountErr != nil {
			return NewValidationError(c, "Invalid amount", []ValidationError{*amountErr})
		}
		update.Amount = &amount
	}
	if req.OperationDate != nil {
		t, err := parseOperationDate(*req.OperationDate)
		if err != nil {
			return NewValidationError(c, "Invalid operation date", []ValidationError{
				{Field: "operationDate", Message: "Must be an RFC 3339 timestamp or YYYY-MM-DD date"},
			})
		}
		update.OperationDate = &t
	}

	operation, err := h.operationService.Update(c.Request().Context(), userID, id, update)
	if err != nil {
		if resp, ok := operationValidationResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Stringer("user_id", userID).Int32("operation_id", id).Msg("Failed to update operation")
		return NewInternalError(c, "Failed to update operation")
	}

	log.Info().Stringer("user_id", userID).Int32("operation_id", id).Msg("Operation updated")

	return c.JSON(http.StatusOK, toOperationResponse(operation))
}

// DeleteOperation handles DELETE /api/v1/operations/:id
func (h *OperationHandler) DeleteOperation(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid operation id", nil)
	}

	if err := h.operationService.Delete(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrOperationNotFound) {
			return NewNotFoundError(c, "Operation not found")
		}
		log.Error().Err(err).Stringer("user_id", userID).Int32("operation_id", id).Msg("Failed to delete operation")
		return NewInternalError(c, "Failed to delete operation")
	}

	log.Info().Stringer("user_id", userID).Int32("operation_id", id).Msg("Operation deleted")

	return c.NoContent(http.StatusNoContent)
}
