// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	if !VerifyPassword("correct horse battery staple", hash) {
		t.Fatalf("expected password to verify against its own hash")
	}
	if VerifyPassword("wrong password", hash) {
		t.Fatalf("expected mismatched password to fail")
	}
}

func TestHashPassword_RejectsOverlongInput(t *testing.T) {
	t.Parallel()

	if _, err := HashPassword(strings.Repeat("a", 73)); err == nil {
		t.Fatalf("expected error for password over 72 bytes")
	}

	if _, err := HashPassword(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("HashPassword at limit: %v", err)
	}
}

func TestVerifyPasswordTimingSafe_NilHash(t *testing.T) {
	t.Parallel()

	if VerifyPasswordTimingSafe("anything", nil) {
		t.Fatalf("nil hash must never verify")
	}

	empty := ""
	if VerifyPasswordTimingSafe("anything", &empty) {
		t.Fatalf("empty hash must never verify")
	}
}

func TestVerifyPasswordTimingSafe_RealHash(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	if !VerifyPasswordTimingSafe("s3cret-pass", &hash) {
		t.Fatalf("expected match for correct password")
	}
	if VerifyPasswordTimingSafe("other-pass", &hash) {
		t.Fatalf("expected mismatch for wrong password")
	}
}

func TestGenerateSecureToken_Unique(t *testing.T) {
	t.Parallel()

	a, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken error: %v", err)
	}
	b, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken error: %v", err)
	}

	if a == b {
		t.Fatalf("two generated tokens should not collide")
	}
	if a == "" || b == "" {
		t.Fatalf("tokens should not be empty")
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	t.Parallel()

	if HashToken("abc") != HashToken("abc") {
		t.Fatalf("same input must produce same hash")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatalf("different inputs must produce different hashes")
	}

	if !CompareTokenHash("abc", HashToken("abc")) {
		t.Fatalf("CompareTokenHash should match token against its hash")
	}
	if CompareTokenHash("abc", HashToken("xyz")) {
		t.Fatalf("CompareTokenHash should reject a foreign hash")
	}
}
