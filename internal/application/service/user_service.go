package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/domain/entity"
)

// UserService manages accounts under the role hierarchy: managers
// administer admins, admins administer users.
type UserService interface {
	List(ctx context.Context, actor entity.Session) ([]*entity.User, error)
	Create(ctx context.Context, actor entity.Session, username, password, role string) (*entity.User, error)
	Delete(ctx context.Context, actor entity.Session, targetID int64) error
	ResetPassword(ctx context.Context, actor entity.Session, targetID int64, newPassword string) error
}

type userServiceImpl struct {
	userRepo port.UserRepository
	logger   Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo port.UserRepository, logger Logger) UserService {
	return &userServiceImpl{userRepo: userRepo, logger: logger}
}

// List returns every account except the actor's own. Staff only.
func (s *userServiceImpl) List(ctx context.Context, actor entity.Session) ([]*entity.User, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("%w: khusus admin dan manager", entity.ErrForbidden)
	}
	return s.userRepo.List(ctx, actor.UserID)
}

// Create provisions an account one level below the actor in the hierarchy.
func (s *userServiceImpl) Create(ctx context.Context, actor entity.Session, username, password, role string) (*entity.User, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("%w: khusus admin dan manager", entity.ErrForbidden)
	}

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, fmt.Errorf("%w: username wajib diisi", entity.ErrValidation)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password minimal %d karakter", entity.ErrValidation, minPasswordLen)
	}

	allowed, ok := entity.CreatableRole(actor.Role)
	if !ok || role != allowed {
		if actor.Role == entity.RoleManager {
			return nil, fmt.Errorf("%w: manager hanya bisa membuat role admin", entity.ErrForbidden)
		}
		return nil, fmt.Errorf("%w: admin hanya bisa membuat role user", entity.ErrForbidden)
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username sudah digunakan", entity.ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		Username:  username,
		Password:  string(hashed),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", "error", err, "username", username)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User created", "id", user.ID, "username", username, "role", role, "by", actor.Username)
	return user, nil
}

// Delete removes an account the actor outranks. Self-deletion is refused.
func (s *userServiceImpl) Delete(ctx context.Context, actor entity.Session, targetID int64) error {
	if !actor.IsStaff() {
		return fmt.Errorf("%w: khusus admin dan manager", entity.ErrForbidden)
	}
	if targetID == actor.UserID {
		return fmt.Errorf("%w: tidak dapat menghapus akun sendiri", entity.ErrValidation)
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if target == nil {
		return fmt.Errorf("%w: user", entity.ErrNotFound)
	}
	if !entity.CanActOn(actor.Role, target.Role) {
		return fmt.Errorf("%w: tidak memiliki izin menghapus user ini", entity.ErrForbidden)
	}

	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		s.logger.Error("Failed to delete user", "error", err, "id", targetID)
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("User deleted", "id", targetID, "by", actor.Username)
	return nil
}

// ResetPassword sets a new password for an account the actor outranks.
func (s *userServiceImpl) ResetPassword(ctx context.Context, actor entity.Session, targetID int64, newPassword string) error {
	if !actor.IsStaff() {
		return fmt.Errorf("%w: khusus admin dan manager", entity.ErrForbidden)
	}
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password minimal %d karakter", entity.ErrValidation, minPasswordLen)
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if target == nil {
		return fmt.Errorf("%w: user", entity.ErrNotFound)
	}
	if !entity.CanActOn(actor.Role, target.Role) {
		return fmt.Errorf("%w: tidak memiliki izin mereset password user ini", entity.ErrForbidden)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, targetID, string(hashed)); err != nil {
		s.logger.Error("Failed to reset password", "error", err, "id", targetID)
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("Password reset", "id", targetID, "by", actor.Username)
	return nil
}
