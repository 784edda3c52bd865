package domain

import (
	"github.com/allisson/nodesecrets/internal/errors"
)

// Secret store error definitions.
var (
	// ErrDuplicateNode indicates the same node appeared in more than one row
	// across the loaded secrets files. Each node must own exactly one row.
	ErrDuplicateNode = errors.Wrap(errors.ErrInvalidInput, "duplicate node")

	// ErrMalformedSecret indicates a secret field did not split into exactly
	// two colon-delimited parts ("timestamp:secret"), or the timestamp part
	// is not a decimal integer.
	ErrMalformedSecret = errors.Wrap(errors.ErrInvalidInput, "malformed secret field")

	// ErrRotationRate indicates a second secret was added for a node within
	// the same one-second timestamp window. Secrets are ordered by Unix
	// second, so at most one secret per node per second can be appended.
	ErrRotationRate = errors.Wrap(errors.ErrConflict, "only one secret per node per second")
)
