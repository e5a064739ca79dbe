package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBcryptCost = 12

	keyByteLength   = 24
	keyPrefixLength = 8
	keyScheme       = "bw"
)

// GenerateAPIKey returns a new plaintext workspace key, its lookup prefix,
// and the bcrypt hash to store. The plaintext is shown once and never
// persisted.
func GenerateAPIKey() (plaintext, prefix, hash string, err error) {
	raw := make([]byte, keyByteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", "", "", fmt.Errorf("generate key material: %w", err)
	}

	plaintext = keyScheme + "_" + hex.EncodeToString(raw)
	prefix = KeyPrefix(plaintext)

	hash, err = HashAPIKey(plaintext)
	if err != nil {
		return "", "", "", err
	}
	return plaintext, prefix, hash, nil
}

// KeyPrefix returns the indexed lookup prefix for a plaintext key.
func KeyPrefix(plaintext string) string {
	trimmed := strings.TrimSpace(plaintext)
	if len(trimmed) <= keyPrefixLength {
		return trimmed
	}
	return trimmed[:keyPrefixLength]
}

func HashAPIKey(plaintext string) (string, error) {
	trimmed := strings.TrimSpace(plaintext)
	if trimmed == "" {
		return "", fmt.Errorf("api key is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(trimmed), DefaultBcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash api key: %w", err)
	}
	return string(hash), nil
}

func VerifyAPIKey(plaintext, hash string) bool {
	trimmedKey := strings.TrimSpace(plaintext)
	trimmedHash := strings.TrimSpace(hash)
	if trimmedKey == "" || trimmedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(trimmedHash), []byte(trimmedKey)) == nil
}
