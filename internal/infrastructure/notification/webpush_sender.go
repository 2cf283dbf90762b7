package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/domain/entity"
)

// WebPushSender delivers payloads over the Web Push protocol using VAPID
// keys. A 404 or 410 from the push service marks the subscription gone.
type WebPushSender struct {
	vapidPublicKey  string
	vapidPrivateKey string
	subscriber      string
	logger          *zap.Logger
}

// NewWebPushSender creates a new web push sender
func NewWebPushSender(vapidPublicKey, vapidPrivateKey, subscriber string, logger *zap.Logger) *WebPushSender {
	return &WebPushSender{
		vapidPublicKey:  vapidPublicKey,
		vapidPrivateKey: vapidPrivateKey,
		subscriber:      subscriber,
		logger:          logger,
	}
}

// Send pushes one payload to one subscription.
func (s *WebPushSender) Send(ctx context.Context, sub *entity.PushSubscription, payload entity.PushPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.vapidPublicKey,
		VAPIDPrivateKey: s.vapidPrivateKey,
		TTL:             60,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return fmt.Errorf("%w: endpoint answered %d", port.ErrSubscriptionGone, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service answered %d", resp.StatusCode)
	}

	return nil
}

// Verify interface compliance
var _ port.PushSender = (*WebPushSender)(nil)
