package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ternarybob/folio/internal/models"
)

// WeatherAdapter fetches current conditions from an OpenWeatherMap-style
// endpoint and normalizes the response into a flat map.
type WeatherAdapter struct {
	client
}

// NewWeatherAdapter creates a weather adapter.
func NewWeatherAdapter(opts Options) *WeatherAdapter {
	return &WeatherAdapter{client: newClient("weather", opts)}
}

// Name identifies the adapter in result metadata.
func (a *WeatherAdapter) Name() string { return "weather" }

// Fetch requests current weather for a city. The city comes from the
// parameters, else the source's default_city config, else London.
func (a *WeatherAdapter) Fetch(ctx context.Context, source *models.DataSource, params map[string]string) (*models.FetchResult, error) {
	city := firstNonEmpty(params["city"], source.ConfigString("default_city"), "London")
	units := firstNonEmpty(params["units"], source.ConfigString("units"), "metric")

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", source.APIKey)
	query.Set("units", units)

	status, parsed, _, err := a.do(ctx, http.MethodGet, source.Endpoint, query, nil, nil)
	if err != nil {
		return nil, err
	}

	meta := a.metadata(status)
	body, _ := parsed.(map[string]interface{})

	if status != http.StatusOK {
		return models.FailureResult(
			providerMessage(body, "message", fmt.Sprintf("request failed with status %d", status)),
			meta,
		), nil
	}

	data := map[string]interface{}{
		"city":        dig(body, "name"),
		"country":     dig(body, "sys", "country"),
		"temp":        dig(body, "main", "temp"),
		"feels_like":  dig(body, "main", "feels_like"),
		"temp_min":    dig(body, "main", "temp_min"),
		"temp_max":    dig(body, "main", "temp_max"),
		"pressure":    dig(body, "main", "pressure"),
		"humidity":    dig(body, "main", "humidity"),
		"condition":   dig(digList(body, "weather", 0), "main"),
		"description": dig(digList(body, "weather", 0), "description"),
		"icon":        dig(digList(body, "weather", 0), "icon"),
		"wind_speed":  dig(body, "wind", "speed"),
		"wind_deg":    dig(body, "wind", "deg"),
		"clouds":      dig(body, "clouds", "all"),
		"sunrise":     formatUnixTime(dig(body, "sys", "sunrise")),
		"sunset":      formatUnixTime(dig(body, "sys", "sunset")),
		"timezone":    dig(body, "timezone"),
	}

	return models.SuccessResult(data, meta), nil
}
