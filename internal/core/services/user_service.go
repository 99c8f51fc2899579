package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/dto"
)

type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to get user by ID in service: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("Validation failed", map[string]string{"name": "must not be empty"})
		}
		user.Name = name
		changed = true
	}
	if req.UserName != nil {
		name := strings.TrimSpace(*req.UserName)
		if name != user.GetUsername() {
			if other, err := s.userRepo.FindUserByUsername(ctx, name); err == nil && other.UserID != user.UserID {
				return nil, apperrors.NewConflictError("This username is already taken")
			} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("failed to check username: %w", err)
			}
			user.UserName = &name
			changed = true
		}
	}
	if req.Image != nil {
		user.Image = strings.TrimSpace(*req.Image)
		changed = true
	}
	if !changed {
		return user, nil
	}

	user.Touch(s.Now())
	if err := s.userRepo.UpdateProfile(ctx, *user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflictError("This username is already taken")
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.LogInfo(ctx, "Profile updated")
	return user, nil
}
