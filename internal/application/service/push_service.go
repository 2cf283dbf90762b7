package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/domain/entity"
)

// PushService manages per-browser Web Push registrations.
type PushService interface {
	Status(ctx context.Context, userID int64) (bool, error)
	Subscribe(ctx context.Context, userID int64, endpoint, p256dh, auth string) error
	// Unsubscribe removes one endpoint, or every subscription the user has
	// when endpoint is empty.
	Unsubscribe(ctx context.Context, userID int64, endpoint string) error
}

type pushServiceImpl struct {
	repo   port.PushSubscriptionRepository
	logger Logger
}

// NewPushService creates a new PushService
func NewPushService(repo port.PushSubscriptionRepository, logger Logger) PushService {
	return &pushServiceImpl{repo: repo, logger: logger}
}

func (s *pushServiceImpl) Status(ctx context.Context, userID int64) (bool, error) {
	subs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("list subscriptions: %w", err)
	}
	return len(subs) > 0, nil
}

func (s *pushServiceImpl) Subscribe(ctx context.Context, userID int64, endpoint, p256dh, auth string) error {
	if endpoint == "" || p256dh == "" || auth == "" {
		return fmt.Errorf("%w: data subscription tidak valid", entity.ErrValidation)
	}

	now := time.Now()
	err := s.repo.Upsert(ctx, &entity.PushSubscription{
		UserID:    userID,
		Endpoint:  endpoint,
		P256dh:    p256dh,
		Auth:      auth,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.logger.Error("Failed to save push subscription", "error", err, "user_id", userID)
		return fmt.Errorf("save subscription: %w", err)
	}

	s.logger.Info("Push subscription saved", "user_id", userID)
	return nil
}

func (s *pushServiceImpl) Unsubscribe(ctx context.Context, userID int64, endpoint string) error {
	var err error
	if endpoint != "" {
		err = s.repo.DeleteByEndpoint(ctx, userID, endpoint)
	} else {
		err = s.repo.DeleteByUser(ctx, userID)
	}
	if err != nil {
		s.logger.Error("Failed to delete push subscription", "error", err, "user_id", userID)
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}
