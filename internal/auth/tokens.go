package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CapManageOptions is the capability required by every write endpoint.
	CapManageOptions = "manage_options"

	// RoleAdministrator holds every capability.
	RoleAdministrator = "administrator"
)

var ErrSecretMissing = errors.New("jwt secret not configured")

// Claims identifies the caller of an authenticated request.
type Claims struct {
	Subject      string
	Role         string
	Capabilities []string
	ExpiresAt    time.Time
}

// Can reports whether the caller holds capability.
func (c Claims) Can(capability string) bool {
	if c.Role == RoleAdministrator {
		return true
	}
	for _, have := range c.Capabilities {
		if have == capability {
			return true
		}
	}
	return false
}

type tokenClaims struct {
	Role         string   `json:"role,omitempty"`
	Capabilities []string `json:"cap,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue signs a token for subject.
func (m *TokenManager) Issue(subject, role string, capabilities []string) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, ErrSecretMissing
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := tokenClaims{
		Role:         role,
		Capabilities: capabilities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies token and returns its claims.
func (m *TokenManager) Parse(token string) (Claims, error) {
	if len(m.secret) == 0 {
		return Claims{}, ErrSecretMissing
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("invalid token: %w", err)
	}

	claims := Claims{
		Subject:      parsed.Subject,
		Role:         parsed.Role,
		Capabilities: parsed.Capabilities,
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}
	return claims, nil
}
