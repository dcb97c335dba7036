package auth

import (
	"strings"
	"testing"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(4) // minimum cost keeps the test fast

	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash should be a bcrypt string, got %q", hash)
	}

	if !h.Verify("s3cret", hash) {
		t.Error("Verify() should accept the original password")
	}
	if h.Verify("wrong", hash) {
		t.Error("Verify() should reject a wrong password")
	}
}

func TestPasswordHasher_SaltedOutput(t *testing.T) {
	h := NewPasswordHasher(4)

	hash1, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	hash2, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if hash1 == hash2 {
		t.Error("two hashes of the same password should differ (per-call salt)")
	}
	if !h.Verify("same-password", hash1) || !h.Verify("same-password", hash2) {
		t.Error("both hashes should verify against the original password")
	}
}

func TestPasswordHasher_MalformedHashFailsClosed(t *testing.T) {
	h := NewPasswordHasher(4)

	for _, malformed := range []string{"", "not-a-hash", "$2b$broken"} {
		if h.Verify("anything", malformed) {
			t.Errorf("Verify() should return false for malformed hash %q", malformed)
		}
	}
}

func TestNewPasswordHasher_CostOutOfRange(t *testing.T) {
	h := NewPasswordHasher(99)

	hash, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash() with clamped cost should work, got %v", err)
	}
	if !h.Verify("pw", hash) {
		t.Error("Verify() failed after cost fallback")
	}
}
