package notification

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/domain/entity"
	"github.com/kdninv/nota-api/internal/domain/event"
)

func errGoneForTest() error {
	return fmt.Errorf("%w: endpoint answered 410", port.ErrSubscriptionGone)
}

type mockSubsRepo struct {
	mu      sync.Mutex
	byUser  map[int64][]*entity.PushSubscription
	byRole  map[string][]*entity.PushSubscription
	deleted []string
}

func (m *mockSubsRepo) Upsert(ctx context.Context, s *entity.PushSubscription) error { return nil }

func (m *mockSubsRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.PushSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byUser[userID], nil
}

func (m *mockSubsRepo) ListByRoles(ctx context.Context, roles []string) ([]*entity.PushSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.PushSubscription
	for _, role := range roles {
		out = append(out, m.byRole[role]...)
	}
	return out, nil
}

func (m *mockSubsRepo) DeleteByEndpoint(ctx context.Context, userID int64, endpoint string) error {
	return nil
}

func (m *mockSubsRepo) DeleteByUser(ctx context.Context, userID int64) error { return nil }

func (m *mockSubsRepo) DeleteEndpoints(ctx context.Context, endpoints []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, endpoints...)
	return nil
}

type mockSender struct {
	mu      sync.Mutex
	sent    []string
	failure map[string]error
	sentCh  chan struct{}
}

func (m *mockSender) Send(ctx context.Context, sub *entity.PushSubscription, payload entity.PushPayload) error {
	m.mu.Lock()
	err := m.failure[sub.Endpoint]
	if err == nil {
		m.sent = append(m.sent, sub.Endpoint)
	}
	m.mu.Unlock()
	if m.sentCh != nil {
		m.sentCh <- struct{}{}
	}
	return err
}

func TestDispatcherDeliversToTargetUser(t *testing.T) {
	repo := &mockSubsRepo{byUser: map[int64][]*entity.PushSubscription{
		7: {{UserID: 7, Endpoint: "https://push/aaa"}},
	}}
	sender := &mockSender{sentCh: make(chan struct{}, 1)}
	d := NewDispatcher(repo, sender, zap.NewNop())

	require.NoError(t, d.Start(context.Background()))
	defer d.Stop()

	d.Publish(event.ForUser(event.TypeNotaApproved, "nota-1", "001/KDNINV/2026", 7,
		entity.PushPayload{Title: "✅ Pengajuan Disetujui"}))

	select {
	case <-sender.sentCh:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}
	assert.Equal(t, []string{"https://push/aaa"}, sender.sent)
}

func TestDispatcherPrunesGoneEndpoints(t *testing.T) {
	repo := &mockSubsRepo{byRole: map[string][]*entity.PushSubscription{
		entity.RoleManager: {
			{UserID: 1, Endpoint: "https://push/ok"},
			{UserID: 2, Endpoint: "https://push/gone"},
		},
	}}
	sender := &mockSender{
		sentCh:  make(chan struct{}, 2),
		failure: map[string]error{"https://push/gone": errGoneForTest()},
	}
	d := NewDispatcher(repo, sender, zap.NewNop())

	require.NoError(t, d.Start(context.Background()))
	defer d.Stop()

	d.Publish(event.ForRoles(event.TypeNotaSubmitted, "nota-1", "001/KDNINV/2026",
		[]string{entity.RoleManager}, entity.PushPayload{Title: "📋 Pengajuan Nota Baru"}))

	for i := 0; i < 2; i++ {
		select {
		case <-sender.sentCh:
		case <-time.After(2 * time.Second):
			t.Fatal("delivery did not complete")
		}
	}

	// pruning happens after the send loop; give it a beat
	assert.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return len(repo.deleted) == 1 && repo.deleted[0] == "https://push/gone"
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"https://push/ok"}, sender.sent)
}

func TestDispatcherPublishNeverBlocksWhenStopped(t *testing.T) {
	repo := &mockSubsRepo{}
	d := NewDispatcher(repo, &mockSender{}, zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < defaultQueueSize+10; i++ {
			d.Publish(event.ForUser(event.TypeNotaApproved, "n", "x", 1, entity.PushPayload{}))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
}
