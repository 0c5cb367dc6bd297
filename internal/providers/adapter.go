// Package providers implements the adapters that translate data source
// configurations into outbound provider requests and raw responses into
// normalized value maps. One adapter exists per provider type; the
// Dispatcher routes between them.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default per-request HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the default request rate limit (requests per second).
	DefaultRateLimit = 10
)

// Options configures the provider adapters.
type Options struct {
	Timeout    time.Duration
	RateLimit  int
	Logger     arbor.ILogger
	HTTPClient *http.Client // optional override, used by tests
}

// client carries the HTTP plumbing shared by all adapters.
type client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     arbor.ILogger
	name       string
}

func newClient(name string, opts Options) client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rateLimit := opts.RateLimit
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		logger:     opts.Logger,
		name:       name,
	}
}

// do executes an HTTP request and parses the body as JSON when possible.
// Returns the status code, the parsed body (nil when not JSON), and the raw
// body. A returned error is always transport-level.
func (c client) do(ctx context.Context, method, rawURL string, query url.Values, headers map[string]string, body io.Reader) (int, interface{}, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	reqURL := rawURL
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		reqURL = rawURL + sep + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("adapter", c.name).
			Str("method", method).
			Str("url", rawURL).
			Msg("Provider request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			parsed = nil // not JSON, adapters fall back to the raw body
		}
	}

	return resp.StatusCode, parsed, raw, nil
}

// metadata builds the diagnostic metadata attached to every fetch result.
func (c client) metadata(statusCode int) map[string]interface{} {
	return map[string]interface{}{
		"status_code": statusCode,
		"fetched_at":  time.Now().UTC(),
		"adapter":     c.name,
	}
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// dig walks nested maps by key, returning nil when any segment is missing.
func dig(body map[string]interface{}, keys ...string) interface{} {
	var cur interface{} = body
	for _, key := range keys {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur, ok = m[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// digList returns element i of a list value under key, or nil.
func digList(body map[string]interface{}, key string, i int) map[string]interface{} {
	list, ok := body[key].([]interface{})
	if !ok || i >= len(list) {
		return nil
	}
	elem, _ := list[i].(map[string]interface{})
	return elem
}

// toFloat converts the numeric shapes providers return (JSON numbers or
// numeric strings) into a float64. Returns nil when not numeric.
func toFloat(raw interface{}) interface{} {
	switch v := raw.(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return nil
}

// toInt is toFloat for integral values.
func toInt(raw interface{}) interface{} {
	switch v := raw.(type) {
	case float64:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return nil
}

// formatUnixTime converts a unix timestamp into "HH:MM", or nil.
func formatUnixTime(raw interface{}) interface{} {
	f, ok := toFloat(raw).(float64)
	if !ok {
		return nil
	}
	return time.Unix(int64(f), 0).UTC().Format("15:04")
}

// providerMessage extracts the provider's own error message from a response
// body, falling back to the given default.
func providerMessage(body map[string]interface{}, key, fallback string) string {
	if body != nil {
		if msg, ok := body[key].(string); ok && msg != "" {
			return msg
		}
	}
	return fallback
}
