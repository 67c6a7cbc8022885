// Package auth issues and verifies session tokens and tracks revoked sessions.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dms/internal/model"
	"dms/internal/policy"
)

// SessionTTL is the fixed lifetime of a session token.
const SessionTTL = 14 * 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrNoSecret     = errors.New("token secret is required")
)

// Claims is the token payload: registered claims plus the non-secret user profile.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64      `json:"userId"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Firstname string     `json:"firstname,omitempty"`
	Lastname  string     `json:"lastname,omitempty"`
	Role      model.Role `json:"role"`
}

// Principal returns the identity asserted by the claims.
func (c *Claims) Principal() policy.Principal {
	return policy.Principal{ID: c.UserID, Role: c.Role}
}

// TokenManager signs tokens with the current secret and accepts tokens signed with any
// of the previous secrets, so a secret can be rotated without logging everyone out.
type TokenManager struct {
	secrets [][]byte
	ttl     time.Duration
	now     func() time.Time
}

// NewTokenManager builds a TokenManager. secret signs new tokens; previous secrets only verify.
func NewTokenManager(secret string, previous ...string) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	secrets := [][]byte{[]byte(secret)}
	for _, p := range previous {
		if p != "" {
			secrets = append(secrets, []byte(p))
		}
	}
	return &TokenManager{secrets: secrets, ttl: SessionTTL, now: time.Now}, nil
}

// Issue signs a session token for u.
func (m *TokenManager) Issue(u model.User) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Role:      u.Role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secrets[0])
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

// Parse verifies the signature and expiry of a token and returns its claims.
func (m *TokenManager) Parse(token string) (*Claims, error) {
	var lastErr error
	for _, secret := range m.secrets {
		claims := &Claims{}
		_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
		if err == nil {
			if !claims.Role.Valid() {
				return nil, ErrInvalidToken
			}
			return claims, nil
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidToken, lastErr)
}
