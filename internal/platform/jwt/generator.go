package jwtmw

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// EnvKeyAdminSecret is the environment variable holding the HMAC secret for admin tokens.
	EnvKeyAdminSecret = "ADMIN_JWT_SECRET"
	// ScopeAdmin is the scope claim required on the admin routes.
	ScopeAdmin = "admin"
)

// Generator defines the interface for admin token generation.
type Generator interface {
	// GenerateToken creates a signed admin token for the given operator.
	GenerateToken(subject string) (string, error)
}

// HS256Generator signs admin tokens with a shared HMAC secret.
type HS256Generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

var _ Generator = (*HS256Generator)(nil)

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *HS256Generator {
	return &HS256Generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken creates an HS256 token carrying scope=admin.
func (g *HS256Generator) GenerateToken(subject string) (string, error) {
	if len(g.secret) == 0 {
		return "", fmt.Errorf("empty signing secret")
	}
	now := g.now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"scope": ScopeAdmin,
		"iat":   now.Unix(),
		"exp":   now.Add(g.expiration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
