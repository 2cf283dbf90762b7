// Package auth issues and verifies the signed session tokens carried in the
// kdninv_session cookie.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kdninv/nota-api/internal/domain/entity"
)

// CookieName is the HTTP-only session cookie.
const CookieName = "kdninv_session"

// TokenTTL matches the cookie max-age: sessions last seven days.
const TokenTTL = 7 * 24 * time.Hour

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager with the shared HMAC secret.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: TokenTTL}
}

// Sign issues a token for the session.
func (m *TokenManager) Sign(s entity.Session) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      s.UserID,
		"username": s.Username,
		"role":     s.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(m.ttl).Unix(),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the session it encodes.
func (m *TokenManager) Verify(tokenString string) (entity.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return entity.Session{}, fmt.Errorf("%w: sesi tidak valid", entity.ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return entity.Session{}, fmt.Errorf("%w: sesi tidak valid", entity.ErrUnauthorized)
	}

	sub, _ := claims["sub"].(float64)
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	if sub == 0 || username == "" || role == "" {
		return entity.Session{}, fmt.Errorf("%w: sesi tidak lengkap", entity.ErrUnauthorized)
	}

	return entity.Session{
		UserID:   int64(sub),
		Username: username,
		Role:     role,
	}, nil
}
