package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
)

// RandomToken returns a URL-safe random token built from n random bytes.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

var nonDigits = regexp.MustCompile(`\D`)

// DigitsOnly strips every non-digit character, e.g. "+1 (555) 123-4567" becomes "15551234567".
func DigitsOnly(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}
