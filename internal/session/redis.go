package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRetention is how long a record outlives its own expiry before Redis
// drops it. The window must be generous: an expired record that has been
// evicted reads back as "never existed", which loses the precise error.
const DefaultRetention = 30 * 24 * time.Hour

// revokeLua flips a record to revoked in one atomic step. It never touches a
// record that is already revoked, so the first revocation always wins and
// its timestamp is preserved. The key TTL is carried over unchanged.
var revokeLua = redis.NewScript(`
local blob = redis.call("GET", KEYS[1])
if not blob then
	return 0
end
local rec = cjson.decode(blob)
if rec.revoked then
	return 1
end
rec.revoked = true
rec.revoked_at = tonumber(ARGV[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl > 0 then
	redis.call("SET", KEYS[1], cjson.encode(rec), "PX", ttl)
else
	redis.call("SET", KEYS[1], cjson.encode(rec))
end
return 2
`)

type redisRecord struct {
	IdentityID string `json:"identity_id"`
	CreatedAt  int64  `json:"created_at"`
	ExpiresAt  int64  `json:"expires_at"`
	Revoked    bool   `json:"revoked"`
	RevokedAt  int64  `json:"revoked_at,omitempty"`
}

// RedisStore implements Store on Redis. Records are JSON blobs under a
// hashed-token key with a retention TTL well past their own expiry, so a
// store-expired record still reads back as expired rather than missing.
type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

// NewRedisStore creates a RedisStore. prefix namespaces the keys; a
// non-positive retention falls back to DefaultRetention.
func NewRedisStore(client redis.UniversalClient, prefix string, retention time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "stillmind"
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &RedisStore{client: client, prefix: prefix, retention: retention}
}

func (s *RedisStore) key(token string) string {
	return s.prefix + ":refresh:" + HashToken(token)
}

// Put inserts a new active record for the token.
func (s *RedisStore) Put(ctx context.Context, identityID uuid.UUID, token string, expiresAt time.Time) error {
	now := time.Now()
	blob, err := json.Marshal(redisRecord{
		IdentityID: identityID.String(),
		CreatedAt:  now.Unix(),
		ExpiresAt:  expiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}

	ttl := time.Until(expiresAt) + s.retention
	if ttl < s.retention {
		ttl = s.retention
	}

	if err := s.client.Set(ctx, s.key(token), blob, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Find returns the record for the token regardless of its state.
func (s *RedisStore) Find(ctx context.Context, token string) (*Record, error) {
	blob, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var raw redisRecord
	if err := json.Unmarshal(blob, &raw); err != nil {
		return nil, fmt.Errorf("decode session record: %w", err)
	}

	identityID, err := uuid.Parse(raw.IdentityID)
	if err != nil {
		return nil, fmt.Errorf("decode session record: %w", err)
	}

	rec := &Record{
		TokenHash:  HashToken(token),
		IdentityID: identityID,
		CreatedAt:  time.Unix(raw.CreatedAt, 0),
		ExpiresAt:  time.Unix(raw.ExpiresAt, 0),
		Revoked:    raw.Revoked,
	}
	if raw.RevokedAt != 0 {
		at := time.Unix(raw.RevokedAt, 0)
		rec.RevokedAt = &at
	}
	return rec, nil
}

// Revoke marks the record revoked via an atomic compare-and-set script.
func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	err := revokeLua.Run(ctx, s.client, []string{s.key(token)}, time.Now().Unix()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
