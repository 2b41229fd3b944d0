package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltLength is the per-password random salt size in bytes
	SaltLength = 16
	// Iterations is the PBKDF2 iteration count
	Iterations = 100_000
	// KeyLength is the derived key size in bytes
	KeyLength = 32
)

// Hash derives a key from the password with a fresh random salt.
// The stored representation is hex(salt) + ":" + hex(key).
func Hash(password string) (string, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := pbkdf2.Key([]byte(password), salt, Iterations, KeyLength, sha256.New)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

// Verify re-derives the key using the stored salt and compares in constant
// time. Returns false for any malformed stored value, it never panics or
// returns an error.
func Verify(password, stored string) bool {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return false
	}

	salt, err := hex.DecodeString(parts[0])
	if err != nil || len(salt) == 0 {
		return false
	}
	want, err := hex.DecodeString(parts[1])
	if err != nil || len(want) == 0 {
		return false
	}

	got := pbkdf2.Key([]byte(password), salt, Iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// ValidatePassword checks if a password meets the minimum requirements
func ValidatePassword(password string) bool {
	// Minimum 6 characters
	return len(password) >= 6
}
