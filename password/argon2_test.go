package password

import (
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashAndVerify(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	hash, err := hasher.Hash("admin", "P@ssw0rd-Ascii")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}

	ok, err := hasher.Verify("admin", "P@ssw0rd-Ascii", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected password verification to succeed")
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	hash, err := hasher.Hash("admin", "correct-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := hasher.Verify("admin", "wrong-password", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestDigestBoundToUsername(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	hash, err := hasher.Hash("alice", "shared-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := hasher.Verify("bob", "shared-password", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected digest to be bound to the username it was created for")
	}
}

func TestEmptyCredentialsRoundTrip(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	hash, err := hasher.Hash("", "")
	if err != nil {
		t.Fatalf("Hash error for empty credentials: %v", err)
	}

	ok, err := hasher.Verify("", "", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected empty credentials to verify like any other pair")
	}

	ok, err = hasher.Verify("", "nonempty", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected non-matching password to fail for empty-credential digest")
	}
}

func TestMinPasswordBytesEnforced(t *testing.T) {
	cfg := testConfig()
	cfg.MinPasswordBytes = 10

	hasher, err := NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	if _, err := hasher.Hash("admin", "short"); err == nil {
		t.Fatal("expected short password to be rejected")
	}
	if _, err := hasher.Hash("admin", "long-enough-password"); err != nil {
		t.Fatalf("Hash error for valid password: %v", err)
	}
}

func TestDummyVerifyAlwaysFalse(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	if hasher.DummyVerify("ghost", "anything") {
		t.Fatal("expected DummyVerify to return false")
	}
	if hasher.DummyVerify("", "") {
		t.Fatal("expected DummyVerify to return false for empty credentials")
	}
}

// Coarse timing-safety check: the decoy path must carry the same argon2
// cost as a real verification. Bounds are deliberately loose to stay
// stable on shared CI machines.
func TestDummyVerifyCostParity(t *testing.T) {
	if testing.Short() {
		t.Skip("timing comparison skipped in short mode")
	}

	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	hash, err := hasher.Hash("admin", "correct-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	const rounds = 8
	realDuration := time.Duration(0)
	dummyDuration := time.Duration(0)

	for i := 0; i < rounds; i++ {
		start := time.Now()
		if _, err := hasher.Verify("admin", "wrong-password", hash); err != nil {
			t.Fatalf("Verify error: %v", err)
		}
		realDuration += time.Since(start)

		start = time.Now()
		hasher.DummyVerify("no-such-user", "wrong-password")
		dummyDuration += time.Since(start)
	}

	ratio := float64(dummyDuration) / float64(realDuration)
	if ratio < 0.2 || ratio > 5.0 {
		t.Fatalf("decoy verification cost diverges from real verification: ratio %.2f", ratio)
	}
}

func TestNeedsUpgrade(t *testing.T) {
	oldHasher, err := NewHasher(Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewHasher(old) error: %v", err)
	}

	hash, err := oldHasher.Hash("admin", "test-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	newHasher, err := NewHasher(Config{
		Memory:      16 * 1024,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewHasher(new) error: %v", err)
	}

	needsUpgrade, err := newHasher.NeedsUpgrade(hash)
	if err != nil {
		t.Fatalf("NeedsUpgrade error: %v", err)
	}
	if !needsUpgrade {
		t.Fatal("expected NeedsUpgrade to return true for weaker hash parameters")
	}

	needsUpgrade, err = oldHasher.NeedsUpgrade(hash)
	if err != nil {
		t.Fatalf("NeedsUpgrade error: %v", err)
	}
	if needsUpgrade {
		t.Fatal("expected NeedsUpgrade to return false for current parameters")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	cases := []string{
		"not-a-phc-hash",
		"$argon2i$v=19$m=8192,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAA",
		"$argon2id$v=18$m=8192,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAA",
		"$argon2id$v=19$m=1,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$AAAA",
		"$argon2id$v=19$m=8192,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA$",
	}
	for _, encoded := range cases {
		if _, err := hasher.Verify("admin", "password", encoded); err == nil {
			t.Fatalf("expected malformed hash %q to fail verification", encoded)
		}
	}
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"low memory", Config{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}},
		{"zero time", Config{Memory: 8192, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 32}},
		{"zero parallelism", Config{Memory: 8192, Time: 1, Parallelism: 0, SaltLength: 16, KeyLength: 32}},
		{"short salt", Config{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 32}},
		{"short key", Config{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8}},
		{"negative minimum", Config{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32, MinPasswordBytes: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewHasher(tc.cfg); err == nil {
				t.Fatalf("expected config validation to fail")
			}
		})
	}
}
