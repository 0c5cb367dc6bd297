package interfaces

import (
	"context"

	"github.com/ternarybob/folio/internal/models"
)

// Adapter translates a parameter set into an outbound provider request and
// the raw response into a normalized value map. Adapters classify
// provider-semantic failures (rate limits, error payloads on HTTP 200)
// themselves; transport errors are returned as plain errors and recovered
// into Failure results by the dispatcher.
type Adapter interface {
	// Name identifies the adapter in result metadata.
	Name() string

	// Fetch executes the provider request. A returned error indicates a
	// transport-level problem (timeout, DNS, connection); provider-semantic
	// outcomes are expressed through the FetchResult.
	Fetch(ctx context.Context, source *models.DataSource, params map[string]string) (*models.FetchResult, error)
}

// FetchDispatcher routes a fetch to the adapter matching the source's
// provider type. Every outcome of adapter execution is normalized into a
// FetchResult; the returned error is reserved for the unknown-provider-type
// programming error, which source validation should have caught.
type FetchDispatcher interface {
	Fetch(ctx context.Context, source *models.DataSource, params map[string]string) (*models.FetchResult, error)
}
