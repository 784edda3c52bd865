package commands

import (
	"fmt"
	"os"

	"github.com/jellydator/validation"

	"github.com/allisson/nodesecrets/internal/secrets/store"
	customValidation "github.com/allisson/nodesecrets/internal/validation"
)

// RunAddSecret appends a freshly generated secret for node to the given
// secrets file, creating the file if it does not exist yet. The whole file
// is rewritten on success, so existing nodes and secrets are preserved.
func RunAddSecret(io IOTuple, file, node string, size int) error {
	if err := validation.Validate(node, validation.Required, customValidation.NodeID{}); err != nil {
		return fmt.Errorf("invalid node identifier: %w", err)
	}

	paths := []string{}
	if _, err := os.Stat(file); err == nil {
		paths = append(paths, file)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat secrets file: %w", err)
	}

	fileStore, err := store.NewFileStore(paths...)
	if err != nil {
		return err
	}

	if err := fileStore.Add(node, size); err != nil {
		return err
	}

	if err := fileStore.Save(file); err != nil {
		return err
	}

	secretCount := len(fileStore.Get(node))
	if _, err := fmt.Fprintf(io.Writer, "added secret for node %s to %s (%d total)\n", node, file, secretCount); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
