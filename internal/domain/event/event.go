package event

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/kdninv/nota-api/internal/domain/entity"
)

// Event is a notification emitted by a successful lifecycle transition.
// Exactly one of TargetUserID / TargetRoles addresses the recipients.
// Delivery is best-effort; the transition never waits on it.
type Event struct {
	ID           string             `json:"id"`
	Type         Type               `json:"type"`
	NotaID       string             `json:"nota_id"`
	NoNota       string             `json:"no_nota"`
	TargetUserID int64              `json:"target_user_id,omitempty"`
	TargetRoles  []string           `json:"target_roles,omitempty"`
	Payload      entity.PushPayload `json:"payload"`
	Timestamp    time.Time          `json:"timestamp"`
}

// ForUser creates an event addressed to a single user.
func ForUser(eventType Type, notaID, noNota string, userID int64, payload entity.PushPayload) *Event {
	return &Event{
		ID:           generateID(),
		Type:         eventType,
		NotaID:       notaID,
		NoNota:       noNota,
		TargetUserID: userID,
		Payload:      payload,
		Timestamp:    time.Now(),
	}
}

// ForRoles creates an event addressed to every subscriber holding one of
// the given roles.
func ForRoles(eventType Type, notaID, noNota string, roles []string, payload entity.PushPayload) *Event {
	return &Event{
		ID:          generateID(),
		Type:        eventType,
		NotaID:      notaID,
		NoNota:      noNota,
		TargetRoles: roles,
		Payload:     payload,
		Timestamp:   time.Now(),
	}
}

// generateID creates a unique ID using timestamp and random bytes
func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), hex.EncodeToString(b))
}
