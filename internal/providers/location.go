package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/folio/internal/models"
)

// LocationAdapter resolves IP geolocation from an ipapi.co-style endpoint.
// With no explicit ip parameter the provider resolves the caller's own IP.
type LocationAdapter struct {
	client
}

// NewLocationAdapter creates a location adapter.
func NewLocationAdapter(opts Options) *LocationAdapter {
	return &LocationAdapter{client: newClient("location", opts)}
}

// Name identifies the adapter in result metadata.
func (a *LocationAdapter) Name() string { return "location" }

// Fetch resolves a location. The provider flags errors with an "error"
// field in the body, surfaced here with its own "reason" when present.
func (a *LocationAdapter) Fetch(ctx context.Context, source *models.DataSource, params map[string]string) (*models.FetchResult, error) {
	// "json" resolves the caller's own IP
	ip := firstNonEmpty(params["ip"], "json")

	reqURL := strings.TrimSuffix(source.Endpoint, "/") + "/" + ip + "/"
	headers := map[string]string{"User-Agent": "Folio/1.0"}

	status, parsed, _, err := a.do(ctx, http.MethodGet, reqURL, nil, headers, nil)
	if err != nil {
		return nil, err
	}

	meta := a.metadata(status)
	body, _ := parsed.(map[string]interface{})

	if status != http.StatusOK || body == nil || body["error"] == true {
		return models.FailureResult(
			providerMessage(body, "reason", fmt.Sprintf("request failed with status %d", status)),
			meta,
		), nil
	}

	data := map[string]interface{}{
		"ip":                 body["ip"],
		"city":               body["city"],
		"region":             body["region"],
		"region_code":        body["region_code"],
		"country":            body["country_name"],
		"country_code":       body["country_code"],
		"country_capital":    body["country_capital"],
		"country_area":       body["country_area"],
		"country_population": body["country_population"],
		"continent":          body["continent_code"],
		"latitude":           body["latitude"],
		"longitude":          body["longitude"],
		"timezone":           body["timezone"],
		"utc_offset":         body["utc_offset"],
		"currency":           body["currency"],
		"currency_name":      body["currency_name"],
		"languages":          body["languages"],
		"asn":                body["asn"],
		"org":                body["org"],
		"postal":             body["postal"],
		"calling_code":       body["country_calling_code"],
	}

	return models.SuccessResult(data, meta), nil
}
