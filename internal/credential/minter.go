// Package credential mints the short-lived session credentials returned to
// the mobile client. A Firebase custom token is an RS256 JWT signed with
// the project service-account key; the client SDK exchanges it for an ID
// token to establish its session.
package credential

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenAudience is the fixed audience Firebase expects on custom tokens.
const tokenAudience = "https://identitytoolkit.googleapis.com/google.identity.identitytoolkit.v1.IdentityToolkit"

// tokenTTL is the maximum lifetime Firebase accepts for a custom token.
const tokenTTL = time.Hour

// Minter issues a session credential scoped to one uid.
type Minter interface {
	Mint(ctx context.Context, uid string) (string, error)
}

// customTokenClaims is the JWT payload of a Firebase custom token.
type customTokenClaims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// ServiceAccountMinter signs custom tokens with a service-account key
// loaded once at startup.
type ServiceAccountMinter struct {
	clientEmail string
	key         *rsa.PrivateKey
	now         func() time.Time
}

var _ Minter = (*ServiceAccountMinter)(nil)

// NewServiceAccountMinter parses service-account credentials JSON and
// prepares the signing key.
func NewServiceAccountMinter(credentialsJSON []byte) (*ServiceAccountMinter, error) {
	var sa struct {
		ClientEmail string `json:"client_email"`
		PrivateKey  string `json:"private_key"`
	}
	if err := json.Unmarshal(credentialsJSON, &sa); err != nil {
		return nil, fmt.Errorf("parsing service account credentials: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, fmt.Errorf("service account credentials missing client_email or private_key")
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parsing service account private key: %w", err)
	}

	return &ServiceAccountMinter{
		clientEmail: sa.ClientEmail,
		key:         key,
		now:         time.Now,
	}, nil
}

// Mint issues a fresh custom token for uid. Signing is local; the context
// parameter keeps the interface uniform with the network-backed fakes and
// any future remote signer.
func (m *ServiceAccountMinter) Mint(_ context.Context, uid string) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("uid is required")
	}

	now := m.now()
	claims := customTokenClaims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.clientEmail,
			Subject:   m.clientEmail,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("signing custom token: %w", err)
	}
	return signed, nil
}
