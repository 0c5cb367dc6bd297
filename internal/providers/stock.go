package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ternarybob/folio/internal/models"
)

// StockAdapter fetches quote data from an Alpha Vantage-style endpoint.
// The provider reports rate limits and errors inside an HTTP 200 body, so
// those fields are inspected before any numeric parsing is attempted.
type StockAdapter struct {
	client
}

// NewStockAdapter creates a stock adapter.
func NewStockAdapter(opts Options) *StockAdapter {
	return &StockAdapter{client: newClient("stock", opts)}
}

// Name identifies the adapter in result metadata.
func (a *StockAdapter) Name() string { return "stock" }

// Fetch requests a quote for a symbol. The symbol comes from the
// parameters, else the source's default_symbol config, else AAPL.
func (a *StockAdapter) Fetch(ctx context.Context, source *models.DataSource, params map[string]string) (*models.FetchResult, error) {
	symbol := firstNonEmpty(params["symbol"], source.ConfigString("default_symbol"), "AAPL")
	function := firstNonEmpty(params["function"], "GLOBAL_QUOTE")

	query := url.Values{}
	query.Set("function", function)
	query.Set("symbol", symbol)
	query.Set("apikey", source.APIKey)

	status, parsed, _, err := a.do(ctx, http.MethodGet, source.Endpoint, query, nil, nil)
	if err != nil {
		return nil, err
	}

	meta := a.metadata(status)
	body, _ := parsed.(map[string]interface{})

	if status != http.StatusOK {
		return models.FailureResult(fmt.Sprintf("request failed with status %d", status), meta), nil
	}

	// Provider-semantic failures arrive with HTTP 200.
	if msg, ok := body["Error Message"].(string); ok && msg != "" {
		return models.FailureResult(msg, meta), nil
	}
	if note, ok := body["Note"].(string); ok && note != "" {
		meta["note"] = note
		return models.FailureResult("API rate limit reached", meta), nil
	}

	quote, ok := body["Global Quote"].(map[string]interface{})
	if !ok || len(quote) == 0 {
		return models.FailureResult("No Global Quote data found", meta), nil
	}

	changePercent := quote["10. change percent"]
	if s, ok := changePercent.(string); ok {
		changePercent = strings.TrimSuffix(strings.TrimSpace(s), "%")
	}

	data := map[string]interface{}{
		"symbol":             quote["01. symbol"],
		"price":              toFloat(quote["05. price"]),
		"open":               toFloat(quote["02. open"]),
		"high":               toFloat(quote["03. high"]),
		"low":                toFloat(quote["04. low"]),
		"volume":             toInt(quote["06. volume"]),
		"latest_trading_day": quote["07. latest trading day"],
		"previous_close":     toFloat(quote["08. previous close"]),
		"change":             toFloat(quote["09. change"]),
		"change_percent":     toFloat(changePercent),
	}

	return models.SuccessResult(data, meta), nil
}
