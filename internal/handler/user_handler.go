package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/kassa-app/kassa-backend/internal/domain"
	"github.com/kassa-app/kassa-backend/internal/middleware"
	"github.com/kassa-app/kassa-backend/internal/service"
)

// UserHandler handles user profile HTTP requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateUserRequest represents the profile update request body
type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(c echo.Context) error {
	userID := middleware.GetUserID(c)

	user, err := h.userService.Get(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to get user")
		return NewInternalError(c, "Failed to get user")
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateMe handles PUT /api/v1/users/me
func (h *UserHandler) UpdateMe(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var errs []ValidationError
	if req.Email != nil && !strings.Contains(*req.Email, "@") {
		errs = append(errs, ValidationError{Field: "email", Message: "Must be a valid email address"})
	}
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		errs = append(errs, ValidationError{Field: "username", Message: "Username cannot be empty"})
	}
	if req.Password != nil && len(*req.Password) < minPasswordLength {
		errs = append(errs, ValidationError{Field: "password", Message: "Password must be at least 8 characters"})
	}
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), userID, service.UpdateProfileInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return NewConflictError(c, "Email is already registered")
		}
		if errors.Is(err, domain.ErrUsernameTaken) {
			return NewConflictError(c, "Username is already taken")
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to update user")
		return NewInternalError(c, "Failed to update user")
	}

	log.Info().Stringer("user_id", userID).Msg("User profile updated")

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// DeleteMe handles DELETE /api/v1/users/me
func (h *UserHandler) DeleteMe(c echo.Context) error {
	userID := middleware.GetUserID(c)

	if err := h.userService.Delete(c.Request().Context(), userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to delete user")
		return NewInternalError(c, "Failed to delete user")
	}

	log.Info().Stringer("user_id", userID).Msg("User deleted")

	return c.NoContent(http.StatusNoContent)
}
