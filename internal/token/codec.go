// Package token signs and verifies the compact bearer tokens used by the
// auth service. Tokens are HS256 JWTs carrying a subject, an expiry, and a
// kind claim separating access tokens from refresh tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind labels what a token may be used for. Verification always checks the
// kind, so a refresh token can never pass as an access token or vice versa.
type Kind string

const (
	// KindAccess marks short-lived tokens presented on protected requests.
	KindAccess Kind = "access"
	// KindRefresh marks longer-lived tokens exchanged for a new pair.
	KindRefresh Kind = "refresh"
)

var (
	// ErrMalformed is returned when a token cannot be parsed at all.
	ErrMalformed = errors.New("malformed token")
	// ErrInvalidSignature is returned when the signature does not verify.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired is returned when the token expiry has passed. A token whose
	// expiry equals the current instant is already expired.
	ErrExpired = errors.New("token expired")
	// ErrWrongKind is returned when a structurally valid token carries the
	// wrong kind claim for the requested operation.
	ErrWrongKind = errors.New("wrong token kind")
)

const (
	// DefaultAccessTTL is applied when no access TTL is configured.
	DefaultAccessTTL = 15 * time.Minute
	// DefaultRefreshTTL is applied when no refresh TTL is configured.
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims is the decoded payload of a token.
type Claims struct {
	Kind Kind `json:"kind"`
	jwt.RegisteredClaims
}

// Config holds the signing material and lifetimes. It is loaded once at
// startup and treated as immutable; rotating the secret invalidates every
// outstanding token.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec issues and verifies signed tokens. It holds no mutable state and is
// safe for concurrent use.
type Codec struct {
	config Config
}

// NewCodec validates the configuration and returns a ready codec. A signing
// secret is required; lifetimes fall back to the defaults when zero.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token signing secret is required")
	}
	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 {
		return nil, errors.New("token lifetimes must not be negative")
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}

	return &Codec{config: cfg}, nil
}

// IssueAccess signs a new access token for the given subject.
func (c *Codec) IssueAccess(subject string) (string, error) {
	return c.issue(subject, KindAccess, c.config.AccessTTL)
}

// IssueRefresh signs a new refresh token for the given subject. Each call
// produces a distinct token string: the payload carries a random jti.
func (c *Codec) IssueRefresh(subject string) (string, error) {
	return c.issue(subject, KindRefresh, c.config.RefreshTTL)
}

func (c *Codec) issue(subject string, kind Kind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.config.Secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify parses the token, checks the signature and expiry, and returns the
// decoded claims. There is no mode that skips the expiry check.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.config.Secret, nil
	})
	if err != nil {
		return nil, translateParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}

	return claims, nil
}

// VerifyAccess verifies the token and additionally requires kind "access".
func (c *Codec) VerifyAccess(tokenStr string) (*Claims, error) {
	return c.verifyKind(tokenStr, KindAccess)
}

// VerifyRefresh verifies the token and additionally requires kind "refresh".
func (c *Codec) VerifyRefresh(tokenStr string) (*Claims, error) {
	return c.verifyKind(tokenStr, KindRefresh)
}

func (c *Codec) verifyKind(tokenStr string, kind Kind) (*Claims, error) {
	claims, err := c.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, ErrWrongKind
	}
	return claims, nil
}

// AccessTTL returns the configured access-token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.config.AccessTTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.config.RefreshTTL }

func translateParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
