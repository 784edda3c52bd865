package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/nodesecrets/internal/httputil"
)

// RelayHandler forwards incoming requests to a fixed upstream base URL,
// preserving method, path, query, body and headers. Upstream transport
// failures surface as 502/504 per httputil.GetURL semantics.
func RelayHandler(upstream string, timeout time.Duration, logger *slog.Logger) (gin.HandlerFunc, error) {
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: timeout}

	return func(c *gin.Context) {
		result, err := httputil.ProxyRequest(c.Request, target.Scheme, target.Host, client)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			return
		}

		if result.StatusCode >= http.StatusInternalServerError {
			logger.Warn("relay upstream failure",
				slog.String("upstream", target.Host),
				slog.Int("status", result.StatusCode),
			)
		}

		for key, values := range result.Header {
			for _, value := range values {
				c.Writer.Header().Add(key, value)
			}
		}
		c.Status(result.StatusCode)
		_, _ = c.Writer.Write(result.Body)
	}, nil
}
