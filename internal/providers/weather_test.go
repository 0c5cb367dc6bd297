package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/folio/internal/models"
)

const weatherBody = `{
	"name": "Lisbon",
	"sys": {"country": "PT", "sunrise": 1755150000, "sunset": 1755200000},
	"main": {"temp": 24.3, "feels_like": 25.0, "temp_min": 22.0, "temp_max": 26.1, "pressure": 1015, "humidity": 55},
	"weather": [{"main": "Clear", "description": "clear sky", "icon": "01d"}],
	"wind": {"speed": 3.6, "deg": 310},
	"clouds": {"all": 0},
	"timezone": 3600
}`

func TestWeatherFetch_Success(t *testing.T) {
	server, captured := jsonServer(t, 200, weatherBody)
	adapter := NewWeatherAdapter(testOptions())
	source := testSource(models.SourceTypeWeather, server.URL)
	source.Config = map[string]interface{}{"default_city": "Lisbon"}

	result, err := adapter.Fetch(context.Background(), source, nil)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, "Lisbon", result.Data["city"])
	assert.Equal(t, "PT", result.Data["country"])
	assert.Equal(t, 24.3, result.Data["temp"])
	assert.Equal(t, "Clear", result.Data["condition"])
	assert.Equal(t, "clear sky", result.Data["description"])
	assert.Equal(t, 3.6, result.Data["wind_speed"])
	assert.NotNil(t, result.Data["sunrise"])

	assert.Equal(t, "weather", result.Metadata["adapter"])
	assert.Equal(t, 200, result.Metadata["status_code"])

	query := captured.URL.Query()
	assert.Equal(t, "Lisbon", query.Get("q"))
	assert.Equal(t, "test-key", query.Get("appid"))
	assert.Equal(t, "metric", query.Get("units"))
}

func TestWeatherFetch_CityParamWins(t *testing.T) {
	server, captured := jsonServer(t, 200, weatherBody)
	adapter := NewWeatherAdapter(testOptions())
	source := testSource(models.SourceTypeWeather, server.URL)
	source.Config = map[string]interface{}{"default_city": "Lisbon"}

	_, err := adapter.Fetch(context.Background(), source, map[string]string{"city": "Porto", "units": "imperial"})
	require.NoError(t, err)

	query := captured.URL.Query()
	assert.Equal(t, "Porto", query.Get("q"))
	assert.Equal(t, "imperial", query.Get("units"))
}

func TestWeatherFetch_DefaultCity(t *testing.T) {
	server, captured := jsonServer(t, 200, weatherBody)
	adapter := NewWeatherAdapter(testOptions())
	source := testSource(models.SourceTypeWeather, server.URL)

	_, err := adapter.Fetch(context.Background(), source, nil)
	require.NoError(t, err)

	assert.Equal(t, "London", captured.URL.Query().Get("q"))
}

func TestWeatherFetch_ProviderError(t *testing.T) {
	server, _ := jsonServer(t, 404, `{"cod": "404", "message": "city not found"}`)
	adapter := NewWeatherAdapter(testOptions())
	source := testSource(models.SourceTypeWeather, server.URL)

	result, err := adapter.Fetch(context.Background(), source, map[string]string{"city": "Atlantis"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "city not found", result.Error)
	assert.Equal(t, 404, result.Metadata["status_code"])
}

func TestWeatherFetch_NonJSONErrorBody(t *testing.T) {
	server, _ := jsonServer(t, 500, "internal error")
	adapter := NewWeatherAdapter(testOptions())
	source := testSource(models.SourceTypeWeather, server.URL)

	result, err := adapter.Fetch(context.Background(), source, nil)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "request failed with status 500", result.Error)
}
