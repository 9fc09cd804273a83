package password

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// Probe exercises h once with a random secret. A hasher that cannot hash,
// or that accepts the wrong password, must not serve traffic.
func Probe(h Hasher) error {
	raw, err := generateRandomBytes(16)
	if err != nil {
		return fmt.Errorf("password: probe: %w", err)
	}
	secret := hex.EncodeToString(raw)

	hash, err := h.Hash(secret)
	if err != nil {
		return fmt.Errorf("password: probe hash: %w", err)
	}
	if !h.Verify(secret, hash) {
		return errors.New("password: probe: hasher rejected its own output")
	}
	if h.Verify(secret+"x", hash) {
		return errors.New("password: probe: hasher accepted a wrong password")
	}
	return nil
}

// generateRandomBytes returns cryptographically secure random bytes.
func generateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}
