package util

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomToken returns n cryptographically random bytes hex-encoded. The
// default 32 bytes carry 256 bits of entropy, so concurrent generations
// cannot realistically collide.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
