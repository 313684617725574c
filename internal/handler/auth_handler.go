package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/kassa-app/kassa-backend/internal/domain"
	"github.com/kassa-app/kassa-backend/internal/service"
)

const minPasswordLength = 8

// AuthHandler handles registration and login
type AuthHandler struct {
	userService  *service.UserService
	tokenService *service.TokenService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService *service.UserService, tokenService *service.TokenService) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		tokenService: tokenService,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse represents a successful authentication response
type TokenResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	User        UserResponse `json:"user"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

func validateRegistration(req RegisterRequest) []ValidationError {
	var errs []ValidationError
	if !strings.Contains(req.Email, "@") {
		errs = append(errs, ValidationError{Field: "email", Message: "Must be a valid email address"})
	}
	if strings.TrimSpace(req.Username) == "" {
		errs = append(errs, ValidationError{Field: "username", Message: "Username is required"})
	}
	if len(req.Password) < minPasswordLength {
		errs = append(errs, ValidationError{Field: "password", Message: "Password must be at least 8 characters"})
	}
	return errs
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if errs := validateRegistration(req); len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	user, err := h.userService.Register(c.Request().Context(), service.RegisterInput{
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
		log.Error().Err(err).Msg("Failed to register user")
		return NewInternalError(c, "Failed to register user")
	}

	token, err := h.tokenService.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", user.ID).Msg("Failed to issue token")
		return NewInternalError(c, "Failed to issue token")
	}

	log.Info().Stringer("user_id", user.ID).Str("username", user.Username).Msg("User registered")

	return c.JSON(http.StatusCreated, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        toUserResponse(user),
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.userService.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return NewUnauthorizedError(c, "Invalid email or password")
		}
		log.Error().Err(err).Msg("Failed to authenticate user")
		return NewInternalError(c, "Failed to authenticate user")
	}

	token, err := h.tokenService.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", user.ID).Msg("Failed to issue token")
		return NewInternalError(c, "Failed to issue token")
	}

	log.Info().Stringer("user_id", user.ID).Msg("User logged in")

	return c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        toUserResponse(user),
	})
}
