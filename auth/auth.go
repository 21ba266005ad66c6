// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidKey = errors.New("invalid capability key")
)

// keyBytes is the entropy of a capability key. 32 bytes = 256 bits.
const keyBytes = 32

// GenerateKey creates a random capability key (director or voter).
// Possession of the key grants role-scoped access to a session.
func GenerateKey() (string, error) {
	b := make([]byte, keyBytes)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate capability key: %w", err)
	}
	// URL-safe base64 without padding, so keys can live in URLs
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// ValidateKey checks a caller-provided key against the stored one in
// constant time. Returns ErrInvalidKey on mismatch or empty input.
func ValidateKey(provided, stored string) error {
	if provided == "" || stored == "" {
		return ErrInvalidKey
	}
	if !hmac.Equal([]byte(provided), []byte(stored)) {
		return ErrInvalidKey
	}
	return nil
}
