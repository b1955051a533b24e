package auth

import "errors"

// Stable service-level error taxonomy. Codec and store failures are always
// translated into these before reaching a caller, so transports depend on a
// fixed vocabulary independent of the signing and storage technology.
var (
	// ErrInvalidCredentials is returned by Login for an unknown email and
	// for a wrong password alike; the two are indistinguishable by design.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEmail is returned by Register when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrWeakPassword is returned by Register when the password fails the
	// hasher's minimum-length policy. A validation failure, not an
	// internal one, so non-HTTP frontends can map it the same way.
	ErrWeakPassword = errors.New("password too weak")
	// ErrTokenInvalid covers malformed, forged, codec-expired, and unknown
	// refresh tokens.
	ErrTokenInvalid = errors.New("invalid refresh token")
	// ErrTokenRevoked is returned when the presented refresh token's record
	// has been revoked, typically after rotation or logout.
	ErrTokenRevoked = errors.New("refresh token revoked")
	// ErrTokenExpired is returned when the store-level expiry has passed.
	ErrTokenExpired = errors.New("refresh token expired")
	// ErrUnauthenticated is returned by Authenticate for any access token
	// that does not resolve to a live identity.
	ErrUnauthenticated = errors.New("unauthenticated")
)
