package commands

import (
	"fmt"

	"github.com/jellydator/validation"

	"github.com/allisson/nodesecrets/internal/secrets/store"
	customValidation "github.com/allisson/nodesecrets/internal/validation"
)

// RunDeriveSecret derives the per-node secret for the given master secret
// and node identifier and writes it to the output. The derivation matches
// what a server running the derived backend with the same master secret
// would hand out, so it is useful for debugging node credentials offline.
func RunDeriveSecret(io IOTuple, master, node string) error {
	if err := validation.Validate(master, validation.Required, customValidation.SecretToken{}); err != nil {
		return fmt.Errorf("invalid master secret: %w", err)
	}
	if err := validation.Validate(node, validation.Required, customValidation.NodeID{}); err != nil {
		return fmt.Errorf("invalid node identifier: %w", err)
	}

	derived := store.NewDerivedStore([]string{master}).Get(node)

	if _, err := fmt.Fprintln(io.Writer, derived[0]); err != nil {
		return fmt.Errorf("failed to write secret: %w", err)
	}
	return nil
}
