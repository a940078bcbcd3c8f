package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"

	"github.com/google/uuid"

	"github.com/flicky/e-games-api/internal/apperror"
	"github.com/flicky/e-games-api/internal/dto"
	"github.com/flicky/e-games-api/internal/identity"
	"github.com/flicky/e-games-api/internal/mailer"
	"github.com/flicky/e-games-api/internal/model"
	"github.com/flicky/e-games-api/internal/repository"
)

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *identity.TokenManager
	mailer   mailer.Mailer
	log      *slog.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *identity.TokenManager, m mailer.Mailer, log *slog.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, mailer: m, log: log}
}

// Register creates a customer account. The user name defaults to the email.
func (s *AuthService) Register(ctx context.Context, req dto.SignUpRequest) (*dto.AuthResponse, error) {
	if violations := identity.ValidatePassword(req.Password); len(violations) > 0 {
		return nil, apperror.BadRequest(violations...)
	}
	userName := req.UserName
	if userName == "" {
		userName = req.Email
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if existing != nil {
		return nil, emailTaken(req.Email)
	}
	if err := ensureUserNameFree(ctx, s.userRepo, userName, uuid.Nil); err != nil {
		return nil, err
	}

	hashed, err := identity.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email: req.Email, UserName: userName, Password: hashed, Age: req.Age, Role: model.RoleCustomer,
	}
	switch err := s.userRepo.Create(ctx, user); {
	case errors.Is(err, repository.ErrEmailTaken):
		return nil, emailTaken(req.Email)
	case errors.Is(err, repository.ErrUserNameTaken):
		return nil, userNameTaken(userName)
	case err != nil:
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.sendWelcome(ctx, user)
	return s.authResponse(user)
}

func (s *AuthService) Login(ctx context.Context, req dto.SignInRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil || !identity.CheckPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.authResponse(user)
}

// EnsureAdmin creates the administrator account or promotes an existing user.
// The password must satisfy the same policy as sign-up.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" {
		return apperror.BadRequest("Admin email is required.")
	}
	if violations := identity.ValidatePassword(password); len(violations) > 0 {
		return apperror.BadRequest(violations...)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("get admin: %w", err)
	}
	if user != nil {
		if user.Role == model.RoleAdmin {
			return nil
		}
		return s.userRepo.UpdateRole(ctx, user.ID, model.RoleAdmin)
	}

	hashed, err := identity.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &model.User{Email: email, UserName: email, Password: hashed, Role: model.RoleAdmin}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.log.InfoContext(ctx, "admin account created", "email", email)
	return nil
}

func (s *AuthService) authResponse(user *model.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &dto.AuthResponse{
		Token: token,
		User:  dto.UserResponse{ID: user.ID, Email: user.Email, UserName: user.UserName, Role: user.Role},
	}, nil
}

func (s *AuthService) sendWelcome(ctx context.Context, user *model.User) {
	if s.mailer == nil {
		return
	}
	err := s.mailer.Send(ctx, mailer.Message{
		To:       user.Email,
		Subject:  "Welcome to E-Games",
		HTMLBody: fmt.Sprintf("<p>Hello %s, your account has been created.</p>", html.EscapeString(user.UserName)),
	})
	if err != nil {
		s.log.WarnContext(ctx, "send welcome email", "user_id", user.ID, "error", err)
	}
}

func emailTaken(email string) *apperror.Error {
	return apperror.BadRequest(fmt.Sprintf("Email '%s' is already taken.", email))
}
