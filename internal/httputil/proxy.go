package httputil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// hopByHopHeaders are connection-level headers that must not be forwarded
// to an upstream (RFC 9110 section 7.6.1).
var hopByHopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

// RelayResult holds the outcome of an outbound relay call. Upstream
// failures are folded into the status code rather than surfaced as errors:
// unreachable upstreams yield 502 and timeouts yield 504, with the reason
// in the body.
type RelayResult struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// GetURL performs one outbound HTTP request and collects the response.
// Transport-level failures are mapped to gateway status codes (502 for
// connection errors, 504 for timeouts) instead of returning an error, so
// callers can pass the result straight back to their own client. An error
// is returned only when the request cannot be constructed.
func GetURL(
	ctx context.Context,
	client *http.Client,
	method, url string,
	body []byte,
	header http.Header,
) (*RelayResult, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build relay request: %w", err)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return &RelayResult{
			StatusCode: gatewayStatus(err),
			Header:     http.Header{},
			Body:       []byte(err.Error()),
		}, nil
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RelayResult{
			StatusCode: http.StatusBadGateway,
			Header:     http.Header{},
			Body:       []byte(err.Error()),
		}, nil
	}

	return &RelayResult{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       respBody,
	}, nil
}

// ProxyRequest re-issues an incoming request against another scheme and
// host, preserving method, path, query, body and headers. Hop-by-hop
// headers are dropped and the client address is appended to
// X-Forwarded-For.
func ProxyRequest(r *http.Request, scheme, host string, client *http.Client) (*RelayResult, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	url := fmt.Sprintf("%s://%s%s", scheme, host, r.URL.RequestURI())

	header := http.Header{}
	for key, values := range r.Header {
		if _, skip := hopByHopHeaders[http.CanonicalHeaderKey(key)]; skip {
			continue
		}
		for _, value := range values {
			header.Add(key, value)
		}
	}

	if clientIP, _, splitErr := net.SplitHostPort(r.RemoteAddr); splitErr == nil {
		prior := header.Get("X-Forwarded-For")
		if prior != "" {
			header.Set("X-Forwarded-For", prior+", "+clientIP)
		} else {
			header.Set("X-Forwarded-For", clientIP)
		}
	}

	return GetURL(r.Context(), client, r.Method, url, body, header)
}

// gatewayStatus maps a transport error to 502 or 504.
func gatewayStatus(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return http.StatusGatewayTimeout
	}

	if strings.Contains(err.Error(), "Client.Timeout") {
		return http.StatusGatewayTimeout
	}

	return http.StatusBadGateway
}
