package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// Dispatcher routes a fetch to the adapter matching the source's provider
// type. It is the single seam where every provider error - transport
// failures, panics, provider-semantic rejections - is normalized into a
// FetchResult. The set of provider types is closed; an unknown type is a
// programming error returned as a plain error, which source validation
// should have made impossible.
type Dispatcher struct {
	weather  interfaces.Adapter
	stock    interfaces.Adapter
	news     interfaces.Adapter
	location interfaces.Adapter
	custom   interfaces.Adapter
	logger   arbor.ILogger
}

// NewDispatcher creates a dispatcher with one adapter per provider type.
func NewDispatcher(opts Options) *Dispatcher {
	return &Dispatcher{
		weather:  NewWeatherAdapter(opts),
		stock:    NewStockAdapter(opts),
		news:     NewNewsAdapter(opts),
		location: NewLocationAdapter(opts),
		custom:   NewCustomAdapter(opts),
		logger:   opts.Logger,
	}
}

// adapterFor selects the adapter for a provider type.
func (d *Dispatcher) adapterFor(sourceType string) (interfaces.Adapter, error) {
	switch sourceType {
	case models.SourceTypeWeather:
		return d.weather, nil
	case models.SourceTypeStock:
		return d.stock, nil
	case models.SourceTypeNews:
		return d.news, nil
	case models.SourceTypeLocation:
		return d.location, nil
	case models.SourceTypeCustom:
		return d.custom, nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", sourceType)
	}
}

// Fetch executes the fetch through the matching adapter. Transport errors
// and adapter panics are converted into Failure results carrying the error
// class in metadata; they never propagate to the caller.
func (d *Dispatcher) Fetch(ctx context.Context, source *models.DataSource, params map[string]string) (result *models.FetchResult, err error) {
	adapter, err := d.adapterFor(source.Type)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			if d.logger != nil {
				d.logger.Error().
					Str("source_id", source.ID).
					Str("adapter", adapter.Name()).
					Str("panic", fmt.Sprintf("%v", r)).
					Msg("Recovered from panic during fetch")
			}
			result = models.FailureResult(fmt.Sprintf("fetch panicked: %v", r), map[string]interface{}{
				"error_class": "panic",
				"adapter":     adapter.Name(),
				"fetched_at":  time.Now().UTC(),
			})
			err = nil
		}
	}()

	res, fetchErr := adapter.Fetch(ctx, source, params)
	if fetchErr != nil {
		class := classifyTransportError(fetchErr)
		if d.logger != nil {
			d.logger.Warn().
				Str("source_id", source.ID).
				Str("adapter", adapter.Name()).
				Str("error_class", class).
				Err(fetchErr).
				Msg("Fetch failed with transport error")
		}
		return models.FailureResult(fetchErr.Error(), map[string]interface{}{
			"error_class": class,
			"adapter":     adapter.Name(),
			"fetched_at":  time.Now().UTC(),
		}), nil
	}

	return res, nil
}

// classifyTransportError maps a transport failure to a diagnostic class.
func classifyTransportError(err error) string {
	var dnsErr *net.DNSError
	var netErr net.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &dnsErr):
		return "dns"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "connection_refused"
	case errors.Is(err, syscall.ECONNRESET):
		return "connection_reset"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "transport"
	}
}

// Ensure Dispatcher implements FetchDispatcher interface
var _ interfaces.FetchDispatcher = (*Dispatcher)(nil)
