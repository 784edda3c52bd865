package commands

import (
	"fmt"

	"github.com/allisson/nodesecrets/internal/secrets/store"
)

// RunListNodes loads the given secrets files and writes the known node
// identifiers to the output, one per line in sorted order.
func RunListNodes(io IOTuple, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("at least one secrets file is required")
	}

	fileStore, err := store.NewFileStore(files...)
	if err != nil {
		return err
	}

	for _, node := range fileStore.Keys() {
		if _, err := fmt.Fprintln(io.Writer, node); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
