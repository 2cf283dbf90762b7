package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdninv/nota-api/internal/domain/entity"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret")

	token, err := m.Sign(entity.Session{UserID: 42, Username: "budi", Role: entity.RoleManager})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, "budi", got.Username)
	assert.Equal(t, entity.RoleManager, got.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a").Sign(entity.Session{UserID: 1, Username: "a", Role: entity.RoleUser})
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b").Verify(token)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("s").Verify("not-a-token")
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}
