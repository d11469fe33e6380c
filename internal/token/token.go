// Package token issues and verifies signed approval tokens.
//
// An approval token is a time-limited HS256 JWT carrying the email and name
// of a pending user registration. It authorizes the admin approve/deny
// action linked from the approval email. Verification is stateless: there
// is no revocation list and no replay protection, so a token stays valid
// for its full TTL even after it has been used once.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType is the value of the "type" claim every approval token carries.
// Tokens with any other type are rejected even when signature and expiry
// are valid.
const TokenType = "approval"

// ErrInvalidToken is the only error Verify returns. Parsing, signature,
// expiry, and claim-shape failures all collapse into it so callers cannot
// distinguish (or leak) the reason.
var ErrInvalidToken = errors.New("invalid or expired approval token")

// Claims is the claim set embedded in an approval token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies approval tokens with a server-held symmetric key.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates an Issuer with the given signing secret and token TTL.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue builds and signs an approval token for the given user.
//
// The subject mirrors the email claim, matching how downstream systems
// identify pending registrations.
func (i *Issuer) Issue(email, name string) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		Email: email,
		Name:  name,
		Type:  TokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tk.SignedString(i.secret)
}

// Verify checks signature and expiry and returns the embedded claims.
//
// It fails closed: any parse, signature, expiry, or type-claim problem
// yields ErrInvalidToken and nothing else.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	tk, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tk.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != TokenType {
		return nil, ErrInvalidToken
	}
	if claims.Email == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// IsExpired reports whether the token is past its expiry. Tokens that fail
// verification for any reason count as expired.
func (i *Issuer) IsExpired(tokenString string) bool {
	claims, err := i.Verify(tokenString)
	if err != nil {
		return true
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now())
}
