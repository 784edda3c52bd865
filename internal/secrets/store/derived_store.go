package store

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"slices"

	"golang.org/x/crypto/hkdf"
)

// nodeSecretInfo is the namespace prefix for the HKDF info parameter. The
// node identifier is appended to it so that derivations for different
// nodes are domain-separated.
const nodeSecretInfo = "nodesecrets/v1/node_secret/"

// DerivedStore derives node-specific secrets from one or more hex-encoded
// master secrets using HKDF-SHA256. No per-node state is ever persisted:
// any node's secrets can be recomputed on demand from the master list.
// Derivation is deterministic, so the same node and master secrets always
// yield the same result, and distinct nodes yield disjoint secrets with
// overwhelming probability.
//
// The master list is immutable after construction; Get and Keys are safe
// for concurrent callers.
type DerivedStore struct {
	masterSecrets []string
}

// NewDerivedStore creates a DerivedStore from an already-normalized master
// secret list, preserving order. Splitting a whitespace-delimited
// configuration string happens at the configuration layer.
func NewDerivedStore(masterSecrets []string) *DerivedStore {
	return &DerivedStore{masterSecrets: slices.Clone(masterSecrets)}
}

// Get derives one secret per master secret for node, in master-secret
// order. Each derived secret is hex-encoded to the same character length
// as its (hex-encoded) master secret, so it can substitute for the master
// secret wherever a fixed-width key is expected.
func (s *DerivedStore) Get(node string) []string {
	info := []byte(nodeSecretInfo + node)

	out := make([]string, 0, len(s.masterSecrets))
	for _, master := range s.masterSecrets {
		out = append(out, deriveNodeSecret(master, info))
	}
	return out
}

// Keys returns an empty set; derived secrets require no node registry.
func (s *DerivedStore) Keys() []string {
	return []string{}
}

// deriveNodeSecret expands master through HKDF-SHA256 with no salt and the
// given info, producing len(master)/2 bytes so the hex encoding matches
// the master secret's length.
func deriveNodeSecret(master string, info []byte) string {
	size := len(master) / 2

	derived := make([]byte, size)
	reader := hkdf.New(sha256.New, []byte(master), nil, info)
	// ReadFull can only fail past the HKDF expand limit (255*32 bytes),
	// far beyond any configured master secret length.
	_, _ = io.ReadFull(reader, derived)

	return hex.EncodeToString(derived)
}
