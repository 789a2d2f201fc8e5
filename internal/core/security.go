// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is fixed at 12. bcrypt embeds the cost in the hash, so stored
// hashes from older costs still verify; any write of a new password uses
// the current cost.
const bcryptCost = 12

// bcrypt truncates silently past 72 bytes, so longer inputs are rejected.
const maxPasswordBytes = 72

func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", fmt.Errorf("password exceeds %d bytes", maxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
// A mismatch is a false return, never an error.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword(
		[]byte(hash),
		[]byte(password),
	) == nil
}

var dummyHash string

func init() {
	hash, err := HashPassword("dummy_password_for_timing_attack_prevention")
	if err != nil {
		panic(fmt.Sprintf("security: failed to generate dummy hash: %v", err))
	}
	dummyHash = hash
}

// VerifyPasswordTimingSafe behaves like VerifyPassword but burns the same
// bcrypt cost when no hash exists for the account, so login timing does not
// reveal whether an email is registered.
func VerifyPasswordTimingSafe(password string, hash *string) bool {
	hashToVerify := dummyHash
	if hash != nil && *hash != "" {
		hashToVerify = *hash
	}

	valid := VerifyPassword(password, hashToVerify)

	if hash == nil || *hash == "" {
		return false
	}

	return valid
}

// GenerateSecureToken returns length random bytes, URL-safe base64 encoded.
// Used for email-verification tokens and password-reset secrets.
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func CompareTokenHash(token, hash string) bool {
	tokenHash := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(tokenHash), []byte(hash)) == 1
}
