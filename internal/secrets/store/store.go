// Package store implements the node secret stores.
//
// Three interchangeable strategies satisfy the same Store contract:
//
//   - FileStore: per-node secret lists loaded from CSV files, with
//     append-only rotation and serialization back to a file
//   - FixedStore: one static secret list shared by all nodes
//   - DerivedStore: per-node secrets derived from master secrets via
//     HKDF-SHA256, with no persisted per-node state
//
// A deployment constructs exactly one implementation at startup and injects
// it wherever token signing or verification needs secret material.
package store

// Store resolves ordered auth-token signing secrets for named nodes.
type Store interface {
	// Get returns the hex-encoded secrets for node, oldest first. Tokens
	// signed with any returned secret remain verifiable during rotation;
	// new tokens should be signed with the newest (last) secret. Unknown
	// nodes yield an empty slice, never an error.
	Get(node string) []string

	// Keys enumerates the node identifiers with configured secrets. Stores
	// that track no per-node identity (fixed, derived) return an empty set.
	Keys() []string
}
