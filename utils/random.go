package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// GenerateCode returns an uppercase hex string built from n random bytes.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)

	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// RandomChoice picks one of the given options uniformly at random. It falls
// back to the first option if the randomness source fails.
func RandomChoice(options []string) string {
	if len(options) == 0 {
		return ""
	}

	b := make([]byte, 1)
	if _, err := rand.Read(b); err != nil {
		return options[0]
	}

	return options[int(b[0])%len(options)]
}
