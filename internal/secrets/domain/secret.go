// Package domain defines the core domain models for node signing secrets.
//
// A node is a named service front-end that signs or verifies auth tokens
// (e.g., via HMAC) using secret material resolved by this module. Secrets
// are opaque hex-encoded tokens and must never be written to logs.
package domain

// TimestampedSecret pairs a hex-encoded secret with its creation time.
// The timestamp has one-second resolution and is the ordering key within
// a node's secret list.
type TimestampedSecret struct {
	// Timestamp is the creation time in Unix seconds.
	Timestamp int64
	// Secret is the hex-encoded secret token. It contains no comma or colon
	// so it can round-trip through the secrets file format.
	Secret string
}
