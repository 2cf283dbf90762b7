package event

import (
	"testing"

	"github.com/kdninv/nota-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestForUser(t *testing.T) {
	e := ForUser(TypeNotaApproved, "abc", "001/KDNINV/2026", 7, entity.PushPayload{Title: "ok"})

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, TypeNotaApproved, e.Type)
	assert.Equal(t, int64(7), e.TargetUserID)
	assert.Empty(t, e.TargetRoles)
	assert.False(t, e.Timestamp.IsZero())
}

func TestForRoles(t *testing.T) {
	e := ForRoles(TypeNotaSubmitted, "abc", "001/KDNINV/2026", []string{entity.RoleManager}, entity.PushPayload{Title: "baru"})

	assert.Equal(t, []string{entity.RoleManager}, e.TargetRoles)
	assert.Zero(t, e.TargetUserID)
}

func TestEventIDsAreUnique(t *testing.T) {
	a := ForUser(TypeNotaFinished, "x", "002/KDNINV/2026", 1, entity.PushPayload{})
	b := ForUser(TypeNotaFinished, "x", "002/KDNINV/2026", 1, entity.PushPayload{})
	assert.NotEqual(t, a.ID, b.ID)
}

func TestTypeIsValid(t *testing.T) {
	assert.True(t, TypeNotaRejected.IsValid())
	assert.True(t, TypeNotaResubmitted.IsValid())
	assert.False(t, Type("nota.deleted").IsValid())
}
