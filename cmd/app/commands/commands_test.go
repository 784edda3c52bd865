package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/nodesecrets/internal/secrets/store"
)

func testIO(out *bytes.Buffer) IOTuple {
	return IOTuple{Reader: strings.NewReader(""), Writer: out}
}

func TestRunNewSecret(t *testing.T) {
	t.Run("prints-full-hex-of-n-bytes", func(t *testing.T) {
		var out bytes.Buffer
		err := RunNewSecret(testIO(&out), 32)

		require.NoError(t, err)
		secret := strings.TrimSpace(out.String())
		assert.Len(t, secret, 64)
		assert.Regexp(t, "^[0-9a-f]+$", secret)
	})

	t.Run("invalid-size", func(t *testing.T) {
		err := RunNewSecret(testIO(&bytes.Buffer{}), 0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "size must be a positive number")
	})
}

func TestRunDeriveSecret(t *testing.T) {
	t.Run("matches-derived-backend", func(t *testing.T) {
		var out bytes.Buffer
		err := RunDeriveSecret(testIO(&out), "abcdef", "phx23")

		require.NoError(t, err)
		derived := strings.TrimSpace(out.String())
		assert.Equal(t, store.NewDerivedStore([]string{"abcdef"}).Get("phx23")[0], derived)
		assert.Len(t, derived, len("abcdef"))
	})

	t.Run("empty-master", func(t *testing.T) {
		err := RunDeriveSecret(testIO(&bytes.Buffer{}), "", "phx23")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid master secret")
	})

	t.Run("invalid-node", func(t *testing.T) {
		err := RunDeriveSecret(testIO(&bytes.Buffer{}), "abcdef", "phx 23")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid node identifier")
	})
}

func TestRunAddSecret(t *testing.T) {
	t.Run("creates-file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "secrets.csv")

		var out bytes.Buffer
		err := RunAddSecret(testIO(&out), file, "phx23", 24)

		require.NoError(t, err)
		assert.Contains(t, out.String(), "phx23")
		assert.Contains(t, out.String(), "(1 total)")

		fileStore, err := store.NewFileStore(file)
		require.NoError(t, err)
		secrets := fileStore.Get("phx23")
		require.Len(t, secrets, 1)
		assert.Len(t, secrets[0], 24)
	})

	t.Run("preserves-existing-nodes", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "secrets.csv")
		require.NoError(t, os.WriteFile(file, []byte("phx42,1577836800:aaaa\n"), 0o600))

		var out bytes.Buffer
		err := RunAddSecret(testIO(&out), file, "phx23", 24)

		require.NoError(t, err)

		fileStore, err := store.NewFileStore(file)
		require.NoError(t, err)
		assert.Equal(t, []string{"phx23", "phx42"}, fileStore.Keys())
		assert.Equal(t, []string{"aaaa"}, fileStore.Get("phx42"))
	})

	t.Run("invalid-node", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "secrets.csv")

		err := RunAddSecret(testIO(&bytes.Buffer{}), file, "phx/23", 24)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid node identifier")
	})
}

func TestRunListNodes(t *testing.T) {
	t.Run("sorted-output", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "secrets.csv")
		content := "phx42,1577836800:aaaa\nphx23,1577836800:bbbb\n"
		require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

		var out bytes.Buffer
		err := RunListNodes(testIO(&out), []string{file})

		require.NoError(t, err)
		assert.Equal(t, "phx23\nphx42\n", out.String())
	})

	t.Run("no-files", func(t *testing.T) {
		err := RunListNodes(testIO(&bytes.Buffer{}), nil)

		require.Error(t, err)
	})

	t.Run("missing-file", func(t *testing.T) {
		err := RunListNodes(testIO(&bytes.Buffer{}), []string{"/nonexistent/secrets.csv"})

		require.Error(t, err)
	})
}
