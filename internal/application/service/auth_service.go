package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/auth"
	"github.com/kdninv/nota-api/internal/domain/entity"
)

// bcryptCost mirrors the cost used when accounts were first provisioned.
const bcryptCost = 12

// minPasswordLen is the account password policy.
const minPasswordLen = 6

// AuthService handles login, sessions and the self-service account surface.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*entity.User, string, error)
	Me(ctx context.Context, userID int64) (*entity.User, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
	UpdateProfile(ctx context.Context, userID int64, fullName string) error
}

type authServiceImpl struct {
	userRepo port.UserRepository
	tokens   *auth.TokenManager
	logger   Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo port.UserRepository, tokens *auth.TokenManager, logger Logger) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login validates credentials and issues a session token.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*entity.User, string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil, "", fmt.Errorf("%w: username dan password wajib diisi", entity.ErrValidation)
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		s.logger.Error("Failed to look up user", "error", err, "username", username)
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, "", fmt.Errorf("%w: username tidak ditemukan", entity.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("%w: password salah", entity.ErrUnauthorized)
	}

	token, err := s.tokens.Sign(entity.Session{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		s.logger.Error("Failed to sign session token", "error", err, "username", username)
		return nil, "", err
	}

	s.logger.Info("User logged in", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return user, token, nil
}

// Me returns the account behind a session.
func (s *authServiceImpl) Me(ctx context.Context, userID int64) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user", entity.ErrNotFound)
	}
	return user, nil
}

// ChangePassword verifies the old password before setting a new one.
func (s *authServiceImpl) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: data tidak lengkap", entity.ErrValidation)
	}
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password minimal %d karakter", entity.ErrValidation, minPasswordLen)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("%w: user", entity.ErrNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return fmt.Errorf("%w: password lama salah", entity.ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		s.logger.Error("Failed to update password", "error", err, "user_id", userID)
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("Password changed", "user_id", userID)
	return nil
}

// UpdateProfile sets the display name shown on printed notas.
func (s *authServiceImpl) UpdateProfile(ctx context.Context, userID int64, fullName string) error {
	if err := s.userRepo.UpdateFullName(ctx, userID, strings.TrimSpace(fullName)); err != nil {
		s.logger.Error("Failed to update profile", "error", err, "user_id", userID)
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
