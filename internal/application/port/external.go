package port

import (
	"context"
	"errors"

	"github.com/kdninv/nota-api/internal/domain/entity"
	"github.com/kdninv/nota-api/internal/domain/event"
)

// ErrSubscriptionGone signals a push endpoint that answered 410 Gone and
// should be removed.
var ErrSubscriptionGone = errors.New("push subscription gone")

// Notifier accepts transition events for asynchronous delivery. Publish
// must never block the calling transition; events may be dropped under
// pressure and failures are logged, not returned.
type Notifier interface {
	Publish(e *event.Event)
}

// PushSender delivers one payload to one subscription. Implementations
// return ErrSubscriptionGone (wrapped) when the endpoint reports 410 so the
// dispatcher can prune it.
type PushSender interface {
	Send(ctx context.Context, sub *entity.PushSubscription, payload entity.PushPayload) error
}

// AttachmentStore uploads a proof file to the object store and returns its
// public handle.
type AttachmentStore interface {
	Upload(ctx context.Context, data []byte, filename, folder string) (*entity.FileAttachment, error)
}
