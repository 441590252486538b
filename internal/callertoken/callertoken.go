// Package callertoken mints and verifies the bearer tokens that identify the
// wallet invoking a registry mutation.
package callertoken

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"microauth/pkg/domain"
	dErrors "microauth/pkg/domain-errors"
)

// Audience is the fixed audience claim of caller tokens.
const Audience = "microauth-registry"

// Claims identify the caller by wallet address in the subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// Wallet returns the caller wallet carried in the subject.
func (c *Claims) Wallet() string {
	return c.Subject
}

type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

func NewService(signingKey, issuer string, ttl time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Issue signs an HS256 token for wallet.
func (s *Service) Issue(wallet string) (string, *Claims, error) {
	if !domain.IsValidWalletAddress(wallet) {
		return "", nil, dErrors.New(dErrors.CodeInvalidInput, "caller wallet is malformed")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", nil, err
	}
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   wallet,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        hex.EncodeToString(b),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Validate verifies signature, algorithm, issuer, audience and expiry, and
// returns the caller wallet. All failures carry CodeUnauthorized.
func (s *Service) Validate(tokenString string) (string, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) {
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !domain.IsValidWalletAddress(claims.Wallet()) {
		return "", dErrors.New(dErrors.CodeUnauthorized, "token subject is not a wallet address")
	}
	return claims.Wallet(), nil
}
