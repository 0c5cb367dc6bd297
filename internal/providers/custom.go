package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ternarybob/folio/internal/models"
)

// CustomAdapter calls an arbitrary REST endpoint, fully driven by the
// source's configuration: HTTP method, custom headers, an optional
// credential header, and query-vs-body parameter placement.
type CustomAdapter struct {
	client
}

// NewCustomAdapter creates a custom-REST adapter.
func NewCustomAdapter(opts Options) *CustomAdapter {
	return &CustomAdapter{client: newClient("custom", opts)}
}

// Name identifies the adapter in result metadata.
func (a *CustomAdapter) Name() string { return "custom" }

// Fetch executes the configured request. Any 2xx status is a success; the
// body is parsed as JSON when possible and wrapped raw otherwise.
func (a *CustomAdapter) Fetch(ctx context.Context, source *models.DataSource, params map[string]string) (*models.FetchResult, error) {
	method := strings.ToUpper(firstNonEmpty(source.ConfigString("method"), http.MethodGet))
	headers := a.buildHeaders(source)

	var query url.Values
	var body io.Reader

	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		if len(params) > 0 {
			encoded, err := json.Marshal(params)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}
			body = bytes.NewReader(encoded)
			if _, ok := headers["Content-Type"]; !ok {
				headers["Content-Type"] = "application/json"
			}
		}
	default:
		if len(params) > 0 {
			query = url.Values{}
			for k, v := range params {
				query.Set(k, v)
			}
		}
	}

	status, parsed, raw, err := a.do(ctx, method, source.Endpoint, query, headers, body)
	if err != nil {
		return nil, err
	}

	meta := a.metadata(status)

	if status < 200 || status > 299 {
		msg := fmt.Sprintf("request failed with status %d", status)
		if m, ok := parsed.(map[string]interface{}); ok {
			msg = providerMessage(m, "message", msg)
		}
		return models.FailureResult(msg, meta), nil
	}

	switch v := parsed.(type) {
	case map[string]interface{}:
		return models.SuccessResult(v, meta), nil
	case []interface{}:
		return models.SuccessResult(map[string]interface{}{"items": v, "count": len(v)}, meta), nil
	default:
		return models.SuccessResult(map[string]interface{}{"raw_response": string(raw)}, meta), nil
	}
}

func (a *CustomAdapter) buildHeaders(source *models.DataSource) map[string]string {
	headers := make(map[string]string)

	// Credential header, when configured
	if keyHeader := source.ConfigString("api_key_header"); keyHeader != "" && source.APIKey != "" {
		headers[keyHeader] = source.APIKey
	}

	// Arbitrary custom headers
	if raw, ok := source.Config["headers"].(map[string]interface{}); ok {
		for k, v := range raw {
			if s, ok := v.(string); ok {
				headers[k] = s
			}
		}
	}

	return headers
}
