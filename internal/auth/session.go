package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// SessionDuration is how long a session stays valid.
const SessionDuration = 30 * 24 * time.Hour

// GenerateSessionToken creates a random 64-hex-char session token.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// CalculateExpiry returns the expiry time for a session created now.
func CalculateExpiry() time.Time {
	return time.Now().UTC().Add(SessionDuration)
}
