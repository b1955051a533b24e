package password

import (
	"errors"
	"strings"
	"testing"
)

// testConfig keeps costs low so the suite stays fast.
func testConfig() Config {
	return Config{
		Memory:      8192,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashAndVerify(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	hash, err := hasher.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}

	ok, err := hasher.Verify("secret123", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected password verification to succeed")
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := hasher.Verify("wrong-password", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestHashesAreSalted(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	first, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	second, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	if _, err := hasher.Hash("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("Hash = %v, want ErrPasswordTooShort", err)
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	cases := []string{
		"",
		"not-a-phc-string",
		"$argon2id$v=19$m=8192,t=1,p=1$salt",
		"$bcrypt$v=19$m=8192,t=1,p=1$AAAA$BBBB",
		"$argon2id$v=19$m=0,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA==$BBBB",
	}
	for _, encoded := range cases {
		if _, err := hasher.Verify("whatever-password", encoded); !errors.Is(err, ErrHashMalformed) {
			t.Fatalf("Verify(%q): expected ErrHashMalformed, got %v", encoded, err)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	weak, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2(weak) error: %v", err)
	}

	hash, err := weak.Hash("test-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	strong, err := NewArgon2(DefaultConfig())
	if err != nil {
		t.Fatalf("NewArgon2(strong) error: %v", err)
	}

	upgrade, err := strong.NeedsRehash(hash)
	if err != nil {
		t.Fatalf("NeedsRehash error: %v", err)
	}
	if !upgrade {
		t.Fatal("expected rehash to be required for weaker parameters")
	}

	same, err := weak.NeedsRehash(hash)
	if err != nil {
		t.Fatalf("NeedsRehash error: %v", err)
	}
	if same {
		t.Fatal("expected no rehash for identical parameters")
	}
}

func TestConfigValidation(t *testing.T) {
	bad := testConfig()
	bad.SaltLength = 8
	if _, err := NewArgon2(bad); err == nil {
		t.Fatal("expected salt length below minimum to be rejected")
	}
}
