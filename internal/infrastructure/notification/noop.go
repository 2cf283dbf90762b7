package notification

import (
	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/domain/event"
)

// NoopNotifier discards every event. Used when push delivery is not
// configured.
type NoopNotifier struct{}

// NewNoopNotifier creates a notifier that drops everything.
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

// Publish implements port.Notifier.
func (NoopNotifier) Publish(e *event.Event) {}

var _ port.Notifier = (*NoopNotifier)(nil)
