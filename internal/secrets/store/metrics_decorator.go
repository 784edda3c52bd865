package store

import (
	"context"
	"time"

	"github.com/allisson/nodesecrets/internal/metrics"
)

// storeWithMetrics decorates a Store with metrics instrumentation.
type storeWithMetrics struct {
	next    Store
	metrics metrics.BusinessMetrics
}

// NewStoreWithMetrics wraps a Store with operation count and duration
// recording. Get and Keys carry no request context, so metrics are
// recorded against the background context.
func NewStoreWithMetrics(next Store, m metrics.BusinessMetrics) Store {
	return &storeWithMetrics{
		next:    next,
		metrics: m,
	}
}

// Get records metrics for secret resolution.
func (s *storeWithMetrics) Get(node string) []string {
	start := time.Now()
	secrets := s.next.Get(node)

	ctx := context.Background()
	s.metrics.RecordOperation(ctx, "secrets", "node_get", "success")
	s.metrics.RecordDuration(ctx, "secrets", "node_get", time.Since(start), "success")

	return secrets
}

// Keys records metrics for node enumeration.
func (s *storeWithMetrics) Keys() []string {
	start := time.Now()
	keys := s.next.Keys()

	ctx := context.Background()
	s.metrics.RecordOperation(ctx, "secrets", "node_keys", "success")
	s.metrics.RecordDuration(ctx, "secrets", "node_keys", time.Since(start), "success")

	return keys
}
