//go:build integration
// +build integration

package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Runs against a real database: TEST_DATABASE_URL must point at a schema
// with the identities and refresh_sessions tables migrated.
func newIntegrationStore(t *testing.T) (*PostgresStore, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("pgxpool.New error: %v", err)
	}
	t.Cleanup(pool.Close)

	return NewPostgresStore(pool), pool
}

// insertIntegrationIdentity creates the owning identities row the session
// foreign key requires, and removes it (cascading its sessions) afterwards.
func insertIntegrationIdentity(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := pool.QueryRow(context.Background(), `
		INSERT INTO identities (email, password_hash, display_name)
		VALUES ($1, 'it-unusable-hash', 'Session IT')
		RETURNING id
	`, "it-"+uuid.NewString()+"@example.com").Scan(&id)
	if err != nil {
		t.Fatalf("insert identity error: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM identities WHERE id = $1`, id)
	})

	return id
}

func TestPostgresPutFindRevoke(t *testing.T) {
	store, pool := newIntegrationStore(t)
	ctx := context.Background()

	token := "it-" + uuid.NewString()
	identityID := insertIntegrationIdentity(t, pool)

	if err := store.Put(ctx, identityID, token, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	rec, err := store.Find(ctx, token)
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if rec.IdentityID != identityID {
		t.Fatalf("IdentityID = %v, want %v", rec.IdentityID, identityID)
	}
	if rec.Revoked {
		t.Fatal("fresh record must not be revoked")
	}

	if err := store.Revoke(ctx, token); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	first, err := store.Find(ctx, token)
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if !first.Revoked || first.RevokedAt == nil {
		t.Fatal("record must be revoked with a timestamp")
	}

	// Second revoke is a no-op that keeps the original timestamp.
	if err := store.Revoke(ctx, token); err != nil {
		t.Fatalf("second Revoke error: %v", err)
	}
	second, err := store.Find(ctx, token)
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if !second.RevokedAt.Equal(*first.RevokedAt) {
		t.Fatalf("revocation timestamp changed: %v -> %v", first.RevokedAt, second.RevokedAt)
	}
}

func TestPostgresFindUnknown(t *testing.T) {
	store, _ := newIntegrationStore(t)

	if _, err := store.Find(context.Background(), "it-"+uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Find = %v, want ErrNotFound", err)
	}
}
