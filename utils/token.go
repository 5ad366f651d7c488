package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateShareToken returns 32 random bytes, URL-safe encoded.
func GenerateShareToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
