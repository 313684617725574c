package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kassa-app/kassa-backend/internal/domain"
)

// UserService handles registration, authentication and profile management
type UserService struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo domain.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// RegisterInput holds the input for registering a user
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Register creates a user with a bcrypt password hash. Email and username
// must be unique; violations surface as ErrEmailTaken / ErrUsernameTaken.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	username := strings.TrimSpace(input.Username)

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.userRepo.Create(ctx, &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	})
}

// Authenticate verifies credentials and returns the user. Both an unknown
// email and a wrong password yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Get retrieves a user by id
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfileInput holds the optional fields of a profile update
type UpdateProfileInput struct {
	Email    *string
	Username *string
	Password *string
}

// UpdateProfile applies a partial profile update, re-checking uniqueness for
// email/username against other users and rehashing the password if supplied.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	update := &domain.UserUpdate{}

	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing.ID != id {
			return nil, domain.ErrEmailTaken
		} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		update.Email = &email
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if existing, err := s.userRepo.GetByUsername(ctx, username); err == nil && existing.ID != id {
			return nil, domain.ErrUsernameTaken
		} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		update.Username = &username
	}

	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashed := string(hash)
		update.PasswordHash = &hashed
	}

	return s.userRepo.Update(ctx, id, update)
}

// Delete removes the user; the store cascades to accounts, categories and
// operations in one transaction.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, id)
}
