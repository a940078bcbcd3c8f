package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/flicky/e-games-api/internal/apperror"
	"github.com/flicky/e-games-api/internal/dto"
	"github.com/flicky/e-games-api/internal/identity"
	"github.com/flicky/e-games-api/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return &dto.UserProfileResponse{
		Email:           user.Email,
		UserName:        user.UserName,
		PhoneNumber:     user.PhoneNumber,
		AddressDelivery: user.AddressDelivery,
		Age:             user.Age,
	}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateUserRequest) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := ensureUserNameFree(ctx, s.userRepo, req.UserName, userID); err != nil {
		return nil, err
	}

	user.UserName = req.UserName
	user.PhoneNumber = &req.PhoneNumber
	user.AddressDelivery = &req.AddressDelivery

	ok, err := s.userRepo.UpdateProfile(ctx, user)
	if errors.Is(err, repository.ErrUserNameTaken) {
		return nil, userNameTaken(req.UserName)
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	return &dto.UserProfileResponse{
		Email:           user.Email,
		UserName:        user.UserName,
		PhoneNumber:     user.PhoneNumber,
		AddressDelivery: user.AddressDelivery,
		Age:             user.Age,
	}, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, req dto.UpdatePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !identity.CheckPassword(req.CurrentPassword, user.Password) {
		return ErrWrongPassword
	}
	if violations := identity.ValidatePassword(req.NewPassword); len(violations) > 0 {
		return apperror.BadRequest(violations...)
	}

	hashed, err := identity.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	ok, err := s.userRepo.UpdatePassword(ctx, userID, hashed)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

// ensureUserNameFree fails when another account already uses name. The unique
// constraint still covers concurrent writers.
func ensureUserNameFree(ctx context.Context, repo repository.UserRepository, name string, self uuid.UUID) error {
	owner, err := repo.GetByUserName(ctx, name)
	if err != nil {
		return fmt.Errorf("check user name: %w", err)
	}
	if owner != nil && owner.ID != self {
		return userNameTaken(name)
	}
	return nil
}

func userNameTaken(name string) *apperror.Error {
	return apperror.BadRequest(fmt.Sprintf("Username '%s' is already taken.", name))
}
