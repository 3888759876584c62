// Package session issues and verifies stateless bearer tokens binding a request to an account.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/goph-notes/internal/errs"
	"github.com/and161185/goph-notes/internal/model"
)

// DefaultTTL is the validity window of an issued token.
const DefaultTTL = 600 * time.Hour

// DefaultLeeway tolerates small clock skew on exp/iat checks.
const DefaultLeeway = 30 * time.Second

// Authority signs and verifies HS256 JWTs with a process-wide key.
// It holds no per-token state; rotating the key invalidates every outstanding token.
type Authority struct {
	signKey []byte
	ttl     time.Duration
	leeway  time.Duration
	now     func() time.Time
}

// Option customizes an Authority.
type Option func(*Authority)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option { return func(a *Authority) { a.now = now } }

// WithLeeway overrides the clock-skew tolerance.
func WithLeeway(d time.Duration) Option { return func(a *Authority) { a.leeway = d } }

// New constructs an Authority. A non-positive ttl falls back to DefaultTTL.
func New(signKey []byte, ttl time.Duration, opts ...Option) *Authority {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	a := &Authority{
		signKey: append([]byte(nil), signKey...),
		ttl:     ttl,
		leeway:  DefaultLeeway,
		now:     time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// TTL returns the validity window applied to new tokens.
func (a *Authority) TTL() time.Duration { return a.ttl }

// Issue creates a signed token for the account.
func (a *Authority) Issue(ownerID uuid.UUID) (model.Tokens, error) {
	if ownerID == uuid.Nil {
		return model.Tokens{}, errors.New("issue: empty owner id")
	}
	now := a.now()
	exp := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   ownerID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.signKey)
	if err != nil {
		return model.Tokens{}, fmt.Errorf("sign token: %w", err)
	}
	return model.Tokens{AccessToken: signed, ExpiresAt: exp}, nil
}

// Verify checks signature, algorithm and expiry and returns the embedded account id.
// Every failure wraps errs.ErrUnauthorized.
func (a *Authority) Verify(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, fmt.Errorf("%w: empty token", errs.ErrUnauthorized)
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.signKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(a.leeway),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return uuid.Nil, fmt.Errorf("%w: invalid token", errs.ErrUnauthorized)
	}

	id, err := uuid.FromString(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", errs.ErrUnauthorized)
	}
	return id, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	v := strings.TrimSpace(header)
	if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
		if t := strings.TrimSpace(v[7:]); t != "" {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: no bearer token", errs.ErrUnauthorized)
}
