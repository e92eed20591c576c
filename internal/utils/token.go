package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// GenerateRandomToken returns size random bytes as an unpadded URL-safe
// base64 string, suitable for use inside a link.
func GenerateRandomToken(size int) (string, error) {
	buffer := make([]byte, size)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// HashToken derives the stored lookup key for a raw secret. Only the hash is
// persisted, so a leaked token table does not leak redeemable secrets.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

const codeDigits = "0123456789"

// GenerateNumericCode returns a short human-enterable code of the given
// length, drawn uniformly from decimal digits.
func GenerateNumericCode(length int) (string, error) {
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, v := range buffer {
		b.WriteByte(codeDigits[int(v)%len(codeDigits)])
	}
	return b.String(), nil
}

func NormalizeSubject(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}
