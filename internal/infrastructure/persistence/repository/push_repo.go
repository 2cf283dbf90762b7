package repository

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/domain/entity"
	"github.com/kdninv/nota-api/internal/infrastructure/persistence/sqlite"
)

// PushSubscriptionRepository implements port.PushSubscriptionRepository on
// SQLite. The endpoint is globally unique: a browser re-registering under a
// different account takes its subscription with it.
type PushSubscriptionRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewPushSubscriptionRepository creates a new push subscription repository
func NewPushSubscriptionRepository(db *sqlite.DB, logger *zap.Logger) port.PushSubscriptionRepository {
	return &PushSubscriptionRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts or, on an endpoint conflict, reassigns the subscription.
func (r *PushSubscriptionRepository) Upsert(ctx context.Context, s *entity.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(endpoint) DO UPDATE SET
			user_id = excluded.user_id,
			p256dh = excluded.p256dh,
			auth = excluded.auth,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		s.UserID, s.Endpoint, s.P256dh, s.Auth, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert push subscription", zap.Int64("user_id", s.UserID), zap.Error(err))
		return fmt.Errorf("failed to upsert push subscription: %w", err)
	}
	return nil
}

// ListByUser returns the user's subscriptions.
func (r *PushSubscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]*entity.PushSubscription, error) {
	query := `
		SELECT id, user_id, endpoint, p256dh, auth, created_at, updated_at
		FROM push_subscriptions
		WHERE user_id = ?
	`
	return r.list(ctx, query, userID)
}

// ListByRoles returns every subscription whose owner holds one of the roles.
func (r *PushSubscriptionRepository) ListByRoles(ctx context.Context, roles []string) ([]*entity.PushSubscription, error) {
	if len(roles) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(roles)-1) + "?"
	query := `
		SELECT s.id, s.user_id, s.endpoint, s.p256dh, s.auth, s.created_at, s.updated_at
		FROM push_subscriptions s
		JOIN users u ON u.id = s.user_id
		WHERE u.role IN (` + placeholders + `)
	`

	args := make([]interface{}, len(roles))
	for i, role := range roles {
		args[i] = role
	}
	return r.list(ctx, query, args...)
}

// DeleteByEndpoint removes one of the user's subscriptions.
func (r *PushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, userID int64, endpoint string) error {
	query := `DELETE FROM push_subscriptions WHERE user_id = ? AND endpoint = ?`
	_, err := r.db.Executor(ctx).ExecContext(ctx, query, userID, endpoint)
	if err != nil {
		r.logger.Error("Failed to delete push subscription", zap.Int64("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}

// DeleteByUser removes every subscription the user has.
func (r *PushSubscriptionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	query := `DELETE FROM push_subscriptions WHERE user_id = ?`
	_, err := r.db.Executor(ctx).ExecContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to delete push subscriptions", zap.Int64("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to delete push subscriptions: %w", err)
	}
	return nil
}

// DeleteEndpoints prunes subscriptions the push service reported gone.
func (r *PushSubscriptionRepository) DeleteEndpoints(ctx context.Context, endpoints []string) error {
	if len(endpoints) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(endpoints)-1) + "?"
	query := `DELETE FROM push_subscriptions WHERE endpoint IN (` + placeholders + `)`

	args := make([]interface{}, len(endpoints))
	for i, ep := range endpoints {
		args[i] = ep
	}
	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to prune push subscriptions", zap.Int("count", len(endpoints)), zap.Error(err))
		return fmt.Errorf("failed to prune push subscriptions: %w", err)
	}

	r.logger.Info("Pruned stale push subscriptions", zap.Int("count", len(endpoints)))
	return nil
}

func (r *PushSubscriptionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.PushSubscription, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list push subscriptions", zap.Error(err))
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*entity.PushSubscription
	for rows.Next() {
		var s entity.PushSubscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan push subscription: %w", err)
		}
		subs = append(subs, &s)
	}

	return subs, rows.Err()
}

// Verify interface compliance
var _ port.PushSubscriptionRepository = (*PushSubscriptionRepository)(nil)
