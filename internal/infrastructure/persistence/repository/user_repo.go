package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/domain/entity"
	"github.com/kdninv/nota-api/internal/infrastructure/persistence/sqlite"
)

// UserRepository implements port.UserRepository on SQLite.
type UserRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlite.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, username, password, full_name, role, created_at, updated_at`

// GetByID retrieves a user by ID, returning (nil, nil) when absent.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanOne(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
}

// GetByUsername retrieves a user by username, returning (nil, nil) when absent.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return r.scanOne(r.db.Executor(ctx).QueryRowContext(ctx, query, username))
}

// Create inserts a new user and fills in the generated ID.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (username, password, full_name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		u.Username, u.Password, u.FullName, u.Role, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create user", zap.String("username", u.Username), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	u.ID = id
	return nil
}

// List returns every user except excludeID, managers first.
func (r *UserRepository) List(ctx context.Context, excludeID int64) ([]*entity.User, error) {
	query := `
		SELECT ` + userColumns + ` FROM users
		WHERE id != ?
		ORDER BY CASE role
			WHEN 'manager' THEN 0
			WHEN 'admin' THEN 1
			ELSE 2
		END, username
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, excludeID)
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Executor(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete user", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// UpdatePassword sets a new password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hashed string) error {
	query := `UPDATE users SET password = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.Executor(ctx).ExecContext(ctx, query, hashed, id)
	if err != nil {
		r.logger.Error("Failed to update password", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// UpdateFullName sets the display name.
func (r *UserRepository) UpdateFullName(ctx context.Context, id int64, fullName string) error {
	query := `UPDATE users SET full_name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.Executor(ctx).ExecContext(ctx, query, fullName, id)
	if err != nil {
		r.logger.Error("Failed to update full name", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update full name: %w", err)
	}
	return nil
}

func (r *UserRepository) scanOne(row *sql.Row) (*entity.User, error) {
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	var fullName sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Password, &fullName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.FullName = fullName.String
	return &u, nil
}

// Verify interface compliance
var _ port.UserRepository = (*UserRepository)(nil)
