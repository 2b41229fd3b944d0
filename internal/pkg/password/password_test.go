package password

import (
	"strings"
	"testing"
)

func TestHashFormat(t *testing.T) {
	hash, err := Hash("secret123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	parts := strings.Split(hash, ":")
	if len(parts) != 2 {
		t.Fatalf("Hash should be salt:key, got %q", hash)
	}
	// 16-byte salt and 32-byte key, hex encoded
	if len(parts[0]) != SaltLength*2 {
		t.Errorf("Salt length = %d hex chars, want %d", len(parts[0]), SaltLength*2)
	}
	if len(parts[1]) != KeyLength*2 {
		t.Errorf("Key length = %d hex chars, want %d", len(parts[1]), KeyLength*2)
	}
}

func TestHashUniqueSalts(t *testing.T) {
	h1, err := Hash("secret123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := Hash("secret123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if h1 == h2 {
		t.Error("Same password should hash differently with fresh salts")
	}
}

func TestVerify(t *testing.T) {
	hash, err := Hash("secret123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !Verify("secret123", hash) {
		t.Error("Verify should accept the correct password")
	}
	if Verify("secret124", hash) {
		t.Error("Verify should reject a wrong password")
	}
	if Verify("", hash) {
		t.Error("Verify should reject an empty password")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	// Malformed stored values must fail verification, never panic or error
	malformed := []string{
		"",
		"nocolon",
		"only:one:too:many",
		"zz:zz",
		"deadbeef:",
		":deadbeef",
	}
	for _, h := range malformed {
		if Verify("secret123", h) {
			t.Errorf("Verify(%q) should be false", h)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if ValidatePassword("12345") {
		t.Error("Passwords under 6 characters should be rejected")
	}
	if !ValidatePassword("123456") {
		t.Error("6-character password should be accepted")
	}
}
