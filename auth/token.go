package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenTypeMobile marks tokens issued to truck owners after OTP login.
const TokenTypeMobile = "mobile"

var ErrSecretNotConfigured = errors.New("JWT secret not configured")

// MobileClaims are carried by a truck owner's session token.
type MobileClaims struct {
	Phone   string `json:"phone"`
	OwnerID string `json:"owner_id,omitempty"`
	Type    string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 mobile tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(strings.TrimSpace(secret)),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for phone. ownerID is empty for numbers that have not
// registered yet.
func (m *TokenManager) Issue(phone, ownerID string) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, ErrSecretNotConfigured
	}
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := MobileClaims{
		Phone:   phone,
		OwnerID: ownerID,
		Type:    TokenTypeMobile,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   phone,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse validates tokenStr and returns its claims. The typ claim must equal
// expectedType when that is non-empty.
func (m *TokenManager) Parse(tokenStr, expectedType string) (*MobileClaims, error) {
	if len(m.secret) == 0 {
		return nil, ErrSecretNotConfigured
	}

	claims := &MobileClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}
	if expectedType != "" && claims.Type != expectedType {
		return nil, fmt.Errorf("invalid token type")
	}
	return claims, nil
}
