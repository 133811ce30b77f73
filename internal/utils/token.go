package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateToken generates a hex-encoded random token of byteLen random bytes
func GenerateToken(byteLen int) (string, error) {
	if byteLen <= 0 {
		return "", fmt.Errorf("invalid token length: %d", byteLen)
	}
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
