package sdjwt

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// randomSalt returns the base64url-unpadded encoding of n cryptographically
// random bytes, read from crypto/rand.
func randomSalt(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sdjwt: generating random salt: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// randomAlphanumeric returns a random string of length n drawn from
// crypto/rand, used for decoy claim names and values.
func randomAlphanumeric(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphanumeric)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("sdjwt: generating random string: %w", err)
		}
		out[i] = alphanumeric[idx.Int64()]
	}
	return string(out), nil
}

// randomIntRange returns a cryptographically random integer in [lo, hi].
func randomIntRange(lo, hi int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(hi-lo+1)))
	if err != nil {
		return 0, fmt.Errorf("sdjwt: generating random range: %w", err)
	}
	return lo + int(n.Int64()), nil
}
