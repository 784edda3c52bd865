package store

import "slices"

// FixedStore serves one static ordered secret list to every node. No
// per-node state is tracked and no file I/O is performed; the list is
// immutable after construction, so Get and Keys are safe for concurrent
// callers.
type FixedStore struct {
	secrets []string
}

// NewFixedStore creates a FixedStore from an already-normalized secret
// list. Splitting a whitespace-delimited configuration string into a list
// happens at the configuration layer, not here.
func NewFixedStore(secrets []string) *FixedStore {
	return &FixedStore{secrets: slices.Clone(secrets)}
}

// Get returns a copy of the configured secret list. The node argument is
// ignored: every node shares the same secrets.
func (s *FixedStore) Get(node string) []string {
	return slices.Clone(s.secrets)
}

// Keys returns an empty set; the store tracks no per-node identity.
func (s *FixedStore) Keys() []string {
	return []string{}
}
