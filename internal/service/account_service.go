package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"agriconnect/internal/auth"
	"agriconnect/internal/model"
	"agriconnect/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// accountService implements AccountService.
type accountService struct {
	userRepo repository.UserRepository
	tokens   *auth.Tokens
	logger   zerolog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(userRepo repository.UserRepository, tokens *auth.Tokens, logger zerolog.Logger) AccountService {
	return &accountService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger.With().Str("service", "account").Logger(),
	}
}

// Register validates and creates a new user account.
func (s *accountService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if err := validateRegisterRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		s.logger.Debug().Str("username", req.Username).Msg("username already taken")
		return nil, model.ErrUsernameTaken
	}

	existing, err = s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		s.logger.Debug().Str("email", req.Email).Msg("email already registered")
		return nil, model.ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         req.Role,
		Address:      req.Address,
		CreatedAt:    time.Now(),
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("username", req.Username).Msg("failed to create user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("role", user.Role).
		Msg("user registered")

	return user, nil
}

// Login verifies credentials and returns the user with a signed token.
func (s *accountService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	if username == "" || password == "" {
		return nil, "", model.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !user.IsActive || !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.Debug().Str("username", username).Msg("login rejected")
		return nil, "", model.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to generate token")
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("role", user.Role).
		Msg("user logged in")

	return user, token, nil
}

// Profile retrieves a user's public profile.
func (s *accountService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// validateRegisterRequest enforces the registration form rules.
func validateRegisterRequest(req *model.RegisterRequest) error {
	if req == nil {
		return model.NewValidationError("Registration data is required")
	}

	if len(req.Username) < 3 || len(req.Username) > 20 {
		return model.NewValidationError("Username must be between 3 and 20 characters")
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		return model.NewValidationError("Please enter a valid email address")
	}

	if len(req.FullName) < 2 || len(req.FullName) > 100 {
		return model.NewValidationError("Full name must be between 2 and 100 characters")
	}

	if len(req.Phone) > 20 {
		return model.NewValidationError("Phone number cannot exceed 20 characters")
	}

	if req.Role != model.RoleFarmer && req.Role != model.RoleConsumer {
		return model.NewValidationError("Role must be farmer or consumer")
	}

	if len(req.Address) > 500 {
		return model.NewValidationError("Address cannot exceed 500 characters")
	}

	if len(req.Password) < 6 {
		return model.NewValidationError("Password must be at least 6 characters long")
	}

	if req.Password != req.ConfirmPassword {
		return model.NewValidationError("Passwords must match")
	}

	return nil
}
