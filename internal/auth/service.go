// Package auth orchestrates registration, login, refresh-token rotation, and
// logout over the identity store, the session store, the token codec, and the
// password hasher.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stillmind/stillmind/internal/identity"
	"github.com/stillmind/stillmind/internal/metrics"
	pwd "github.com/stillmind/stillmind/internal/password"
	"github.com/stillmind/stillmind/internal/session"
	"github.com/stillmind/stillmind/internal/token"
)

// Hasher is the credential primitive the service needs. Verify reports a
// mismatch as (false, nil); an error means the stored hash is unusable.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// TokenPair is one issued access+refresh pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service is the authentication engine. All fields are set at construction
// and never mutated; the service is safe for concurrent use.
type Service struct {
	identities identity.Store
	sessions   session.Store
	codec      *token.Codec
	hasher     Hasher
	metrics    *metrics.Auth
	logger     zerolog.Logger

	// dummyHash is verified against on login with an unknown email so the
	// unknown-email and wrong-password paths cost about the same.
	dummyHash string
}

// NewService wires the engine. It fails only when the hasher cannot produce
// the decoy hash used to flatten login timing.
func NewService(
	identities identity.Store,
	sessions session.Store,
	codec *token.Codec,
	hasher Hasher,
	m *metrics.Auth,
	logger zerolog.Logger,
) (*Service, error) {
	dummyHash, err := hasher.Hash("stillmind-login-decoy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare decoy hash: %w", err)
	}

	return &Service{
		identities: identities,
		sessions:   sessions,
		codec:      codec,
		hasher:     hasher,
		metrics:    m,
		logger:     logger.With().Str("component", "auth").Logger(),
		dummyHash:  dummyHash,
	}, nil
}

// Register creates a new identity and logs it in, returning the identity and
// its first token pair.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*identity.Identity, *TokenPair, error) {
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, pwd.ErrPasswordTooShort) {
		return nil, nil, ErrWeakPassword
	}
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	ident, err := s.identities.Insert(ctx, email, hash, displayName)
	if errors.Is(err, identity.ErrDuplicateEmail) {
		s.metrics.RegisterDuplicate.Inc()
		s.logger.Info().Str("email", identity.NormalizeEmail(email)).Msg("registration rejected: duplicate email")
		return nil, nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, nil, fmt.Errorf("insert identity: %w", err)
	}

	pair, err := s.issuePair(ctx, ident.ID)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.RegisterSuccess.Inc()
	s.logger.Info().Str("identity_id", ident.ID.String()).Msg("identity registered")
	return ident, pair, nil
}

// Login verifies the credentials and issues a fresh token pair. An unknown
// email and a wrong password both return ErrInvalidCredentials; nothing in
// the behavior distinguishes the two cases.
func (s *Service) Login(ctx context.Context, email, password string) (*identity.Identity, *TokenPair, error) {
	ident, err := s.identities.FindByEmail(ctx, email)
	if errors.Is(err, identity.ErrNotFound) {
		_, _ = s.hasher.Verify(password, s.dummyHash)
		s.metrics.LoginFailure.Inc()
		s.logger.Info().Msg("login rejected: unknown email")
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find identity: %w", err)
	}

	ok, err := s.hasher.Verify(password, ident.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.metrics.LoginFailure.Inc()
		s.logger.Info().Str("identity_id", ident.ID.String()).Msg("login rejected: wrong password")
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, ident.ID)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.LoginSuccess.Inc()
	s.logger.Info().Str("identity_id", ident.ID.String()).Msg("login succeeded")
	return ident, pair, nil
}

// Refresh rotates the presented refresh token: it issues a new pair,
// persists the new record, and revokes the presented one. After a
// successful rotation the old token can only ever produce ErrTokenRevoked.
//
// Reuse of a revoked token is a possible theft signal; revoking the whole
// lineage descending from it would be a hardening extension, deliberately
// not implemented here.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		s.metrics.RefreshFailure.Inc()
		s.logger.Info().Str("reason", err.Error()).Msg("refresh rejected: codec")
		return nil, ErrTokenInvalid
	}

	rec, err := s.sessions.Find(ctx, refreshToken)
	if errors.Is(err, session.ErrNotFound) {
		s.metrics.RefreshFailure.Inc()
		s.logger.Info().Msg("refresh rejected: no session record")
		return nil, ErrTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("find session record: %w", err)
	}

	if rec.Revoked {
		s.metrics.RefreshReuse.Inc()
		s.logger.Warn().Str("identity_id", rec.IdentityID.String()).Msg("refresh rejected: revoked token presented")
		return nil, ErrTokenRevoked
	}
	if rec.Expired(time.Now()) {
		s.metrics.RefreshFailure.Inc()
		s.logger.Info().Str("identity_id", rec.IdentityID.String()).Msg("refresh rejected: session expired")
		return nil, ErrTokenExpired
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil || subject != rec.IdentityID {
		s.metrics.RefreshFailure.Inc()
		s.logger.Warn().Str("identity_id", rec.IdentityID.String()).Msg("refresh rejected: subject mismatch")
		return nil, ErrTokenInvalid
	}

	pair, err := s.issuePair(ctx, rec.IdentityID)
	if err != nil {
		return nil, err
	}

	// Revoking the presented record must not be skipped: a captured old
	// token would otherwise stay replayable after a legitimate rotation.
	if err := s.sessions.Revoke(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("revoke rotated session: %w", err)
	}

	s.metrics.RefreshSuccess.Inc()
	s.logger.Info().Str("identity_id", rec.IdentityID.String()).Msg("refresh token rotated")
	return pair, nil
}

// Logout revokes the presented refresh token's record. An invalid, unknown,
// or already-revoked token is not an error; only infrastructure failures
// propagate.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.metrics.Logout.Inc()
	s.logger.Info().Msg("logout")
	return nil
}

// Authenticate resolves an access token into a live identity. Every failure
// mode collapses to ErrUnauthenticated except store infrastructure errors.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*identity.Identity, error) {
	claims, err := s.codec.VerifyAccess(accessToken)
	if err != nil {
		s.metrics.GateRejected.Inc()
		s.logger.Debug().Str("reason", err.Error()).Msg("gate rejected token")
		return nil, ErrUnauthenticated
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		s.metrics.GateRejected.Inc()
		return nil, ErrUnauthenticated
	}

	ident, err := s.identities.FindByID(ctx, subject)
	if errors.Is(err, identity.ErrNotFound) {
		// An access token for a deleted identity is invalid, not an
		// internal error.
		s.metrics.GateRejected.Inc()
		s.logger.Debug().Str("identity_id", subject.String()).Msg("gate rejected token: identity gone")
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	return ident, nil
}

func (s *Service) issuePair(ctx context.Context, identityID uuid.UUID) (*TokenPair, error) {
	access, err := s.codec.IssueAccess(identityID.String())
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := s.codec.IssueRefresh(identityID.String())
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	expiresAt := time.Now().Add(s.codec.RefreshTTL())
	if err := s.sessions.Put(ctx, identityID, refresh, expiresAt); err != nil {
		return nil, fmt.Errorf("persist session record: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshTTL exposes the refresh lifetime for cookie max-age computation.
func (s *Service) RefreshTTL() time.Duration { return s.codec.RefreshTTL() }
