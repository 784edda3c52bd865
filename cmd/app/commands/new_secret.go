package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RunNewSecret generates size random bytes and writes their full hex
// encoding (2*size characters) to the output. The secret is not tied to
// any node; pair it with add-secret to register one in a file.
func RunNewSecret(io IOTuple, size int) error {
	if size <= 0 {
		return fmt.Errorf("size must be a positive number, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("failed to generate secret: %w", err)
	}

	if _, err := fmt.Fprintln(io.Writer, hex.EncodeToString(buf)); err != nil {
		return fmt.Errorf("failed to write secret: %w", err)
	}
	return nil
}
