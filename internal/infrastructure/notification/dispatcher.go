package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/domain/entity"
	"github.com/kdninv/nota-api/internal/domain/event"
)

const (
	defaultQueueSize = 256
	sendTimeout      = 10 * time.Second
)

// Dispatcher fans lifecycle events out to the push subscriptions of their
// recipients. Publish never blocks a transition: events queue onto a
// buffered channel and are dropped with a warning when it is full.
//
// It implements both port.Notifier and worker.Worker.
type Dispatcher struct {
	queue    chan *event.Event
	subsRepo port.PushSubscriptionRepository
	sender   port.PushSender
	logger   *zap.Logger

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(subsRepo port.PushSubscriptionRepository, sender port.PushSender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		queue:    make(chan *event.Event, defaultQueueSize),
		subsRepo: subsRepo,
		sender:   sender,
		logger:   logger,
	}
}

// Publish queues an event for delivery. Never blocks.
func (d *Dispatcher) Publish(e *event.Event) {
	select {
	case d.queue <- e:
	default:
		d.logger.Warn("Notification queue full, dropping event",
			zap.String("event_id", e.ID),
			zap.String("type", string(e.Type)))
	}
}

// Name implements worker.Worker.
func (d *Dispatcher) Name() string {
	return "notification-dispatcher"
}

// Start begins draining the queue.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.isRunning {
		d.mu.Unlock()
		return fmt.Errorf("dispatcher already running")
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.isRunning = true
	d.done = make(chan struct{})
	d.mu.Unlock()

	d.logger.Info("Notification dispatcher started", zap.Int("queue_size", defaultQueueSize))

	go d.loop()
	return nil
}

// Stop drains nothing further and waits for the in-flight event to finish.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}
	<-d.done
	return nil
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for {
		select {
		case <-d.ctx.Done():
			return
		case e := <-d.queue:
			d.deliver(e)
		}
	}
}

// deliver resolves the recipients' subscriptions and sends the payload to
// each one. Endpoints that report themselves gone are pruned.
func (d *Dispatcher) deliver(e *event.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	subs, err := d.resolve(ctx, e)
	if err != nil {
		d.logger.Error("Failed to resolve notification recipients",
			zap.String("event_id", e.ID), zap.Error(err))
		return
	}
	if len(subs) == 0 {
		return
	}

	var gone []string
	sent := 0
	for _, sub := range subs {
		if err := d.sender.Send(ctx, sub, e.Payload); err != nil {
			if isGone(err) {
				gone = append(gone, sub.Endpoint)
				continue
			}
			d.logger.Warn("Failed to send push notification",
				zap.Int64("user_id", sub.UserID), zap.Error(err))
			continue
		}
		sent++
	}

	if len(gone) > 0 {
		if err := d.subsRepo.DeleteEndpoints(ctx, gone); err != nil {
			d.logger.Error("Failed to prune gone subscriptions", zap.Error(err))
		}
	}

	d.logger.Info("Notification delivered",
		zap.String("type", string(e.Type)),
		zap.String("no_nota", e.NoNota),
		zap.Int("sent", sent),
		zap.Int("pruned", len(gone)))
}

func (d *Dispatcher) resolve(ctx context.Context, e *event.Event) ([]*entity.PushSubscription, error) {
	if e.TargetUserID != 0 {
		return d.subsRepo.ListByUser(ctx, e.TargetUserID)
	}
	return d.subsRepo.ListByRoles(ctx, e.TargetRoles)
}

func isGone(err error) bool {
	return errors.Is(err, port.ErrSubscriptionGone)
}

// Verify interface compliance
var _ port.Notifier = (*Dispatcher)(nil)
