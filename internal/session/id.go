package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"
)

const idBytes = 32 // 256 bits

// GenerateID generates a cryptographically secure session ID.
func GenerateID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Fingerprint returns the SHA-256 of an access token, hex encoded.
func Fingerprint(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return hex.EncodeToString(sum[:])
}

// New builds a session for the given identity expiring after ttl.
func New(userID, email, role string, ttl time.Duration) (Session, error) {
	id, err := GenerateID()
	if err != nil {
		return Session{}, err
	}

	now := time.Now()
	return Session{
		SessionID: id,
		UserID:    userID,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}
