package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService manages the user records the identity gateway maps onto.
// Identity itself lives at the gateway; rows here carry role and area data.
type UserService struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo *repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// Register creates a user record
func (s *UserService) Register(ctx context.Context, email, displayName string, role domain.UserRole, areas []string) (*domain.User, error) {
	if !role.IsValid() {
		return nil, ErrInvalidInput
	}
	user := &domain.User{
		Email:       email,
		DisplayName: displayName,
		Role:        role,
		Areas:       areas,
		IsActive:    true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("user registered",
		zap.String("userId", user.ID.String()),
		zap.String("role", string(role)))
	return user, nil
}

// Get retrieves a user by id
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListByRole returns active users holding a role
func (s *UserService) ListByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	if !role.IsValid() {
		return nil, ErrInvalidInput
	}
	return s.userRepo.ListByRole(ctx, role)
}
