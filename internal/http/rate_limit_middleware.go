package http

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/allisson/nodesecrets/internal/httputil"
)

// staleLimiterAge is how long an idle client limiter survives before cleanup.
const staleLimiterAge = 10 * time.Minute

// rateLimiterStore holds per-client-IP rate limiters with periodic cleanup.
type rateLimiterStore struct {
	limiters sync.Map // map[string]*rateLimiterEntry
	rps      float64
	burst    int
}

// rateLimiterEntry holds a rate limiter and last access time for cleanup.
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	mu         sync.Mutex
	lastAccess time.Time
}

// getLimiter returns the limiter for a client IP, creating it on first use.
func (s *rateLimiterStore) getLimiter(clientIP string) *rate.Limiter {
	if entry, ok := s.limiters.Load(clientIP); ok {
		e := entry.(*rateLimiterEntry)
		e.mu.Lock()
		e.lastAccess = time.Now()
		e.mu.Unlock()
		return e.limiter
	}

	entry := &rateLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: time.Now(),
	}
	actual, _ := s.limiters.LoadOrStore(clientIP, entry)
	return actual.(*rateLimiterEntry).limiter
}

// cleanupStale drops limiters idle longer than staleLimiterAge. It runs
// until done is closed.
func (s *rateLimiterStore) cleanupStale(done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-staleLimiterAge)
			s.limiters.Range(func(key, value any) bool {
				entry := value.(*rateLimiterEntry)
				entry.mu.Lock()
				stale := entry.lastAccess.Before(cutoff)
				entry.mu.Unlock()
				if stale {
					s.limiters.Delete(key)
				}
				return true
			})
		}
	}
}

// RateLimitMiddleware enforces per-client-IP rate limiting using a token
// bucket (golang.org/x/time/rate). Each client IP gets an independent
// limiter. The returned stop function terminates the cleanup goroutine and
// must be called on server shutdown.
//
// Returns 429 Too Many Requests with a Retry-After header when the limit
// is exceeded.
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) (gin.HandlerFunc, func()) {
	store := &rateLimiterStore{
		rps:   rps,
		burst: burst,
	}

	done := make(chan struct{})
	go store.cleanupStale(done, 5*time.Minute)

	var stopOnce sync.Once
	stop := func() {
		stopOnce.Do(func() {
			close(done)
		})
	}

	middleware := func(c *gin.Context) {
		limiter := store.getLimiter(c.ClientIP())
		if !limiter.Allow() {
			logger.Warn("rate limit exceeded",
				slog.String("client_ip", c.ClientIP()),
				slog.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, httputil.ErrorResponse{
				Error:   "rate_limited",
				Message: "Too many requests, slow down",
			})
			c.Abort()
			return
		}

		c.Next()
	}

	return middleware, stop
}
