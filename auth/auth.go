// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidOwnerKey = errors.New("invalid owner key")
)

// GenerateID creates a random hex ID of the specified byte length.
// Tokens are drawn from crypto/rand, so collisions are negligible for the
// expected corpus size, but callers inserting into a UNIQUE column must
// still retry with a fresh token on a constraint violation.
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateOwnerKey creates an HMAC-based owner key for an account
// This is deterministic and verifiable
func GenerateOwnerKey(accountID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(accountID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateOwnerKey checks if the provided owner key is valid for the account
func ValidateOwnerKey(accountID, ownerKey, salt string) error {
	expected := GenerateOwnerKey(accountID, salt)
	if !hmac.Equal([]byte(ownerKey), []byte(expected)) {
		return ErrInvalidOwnerKey
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
