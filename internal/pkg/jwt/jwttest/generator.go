// internal/pkg/jwt/jwttest/generator.go

// Package jwttest signs tokens the way the identity service does, for tests of
// code that verifies them.
package jwttest

import (
	"crypto/rsa"
	"fmt"
	"time"

	"coldlist-service/internal/pkg/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Generator signs tokens with a private key.
type Generator struct {
	priv     *rsa.PrivateKey
	issuer   string
	audience string
	Ttl      time.Duration
}

func NewGenerator(priv *rsa.PrivateKey, issuer, audience string, ttl time.Duration) *Generator {
	return &Generator{
		priv:     priv,
		issuer:   issuer,
		audience: audience,
		Ttl:      ttl,
	}
}

// Generate creates a signed token and returns it with its jti.
func (g *Generator) Generate(identityID int64, roles []string, purpose string, isTemp bool) (string, string, error) {
	if g.priv == nil {
		return "", "", fmt.Errorf("jwt generator has nil private key")
	}

	now := time.Now()
	jti := ulid.Make().String()

	claims := &jwt.Claims{
		IdentityID:     identityID,
		Roles:          roles,
		IsTemp:         isTemp,
		SessionPurpose: purpose,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   fmt.Sprintf("%d", identityID),
			Audience:  []string{g.audience},
			ExpiresAt: gojwt.NewNumericDate(now.Add(g.Ttl)),
			IssuedAt:  gojwt.NewNumericDate(now),
			NotBefore: gojwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := gojwt.NewWithClaims(gojwt.SigningMethodRS256, claims)
	signed, err := tok.SignedString(g.priv)
	return signed, jti, err
}

// GenerateAccessToken generates a standard access token
func (g *Generator) GenerateAccessToken(identityID int64, roles []string) (string, string, error) {
	return g.Generate(identityID, roles, "access", false)
}
