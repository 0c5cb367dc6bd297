package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/models"
)

// testOptions returns adapter options suitable for hitting a local test
// server: short timeout, no effective rate limiting.
func testOptions() Options {
	return Options{
		Timeout:   2 * time.Second,
		RateLimit: 1000,
		Logger:    arbor.NewLogger(),
	}
}

// testSource builds a source pointing at a test server.
func testSource(sourceType, endpoint string) *models.DataSource {
	return &models.DataSource{
		ID:       "src_test",
		UserID:   "user-1",
		Name:     sourceType,
		Type:     sourceType,
		Endpoint: endpoint,
		APIKey:   "test-key",
		Active:   true,
	}
}

// jsonServer serves a fixed status and body for every request, recording
// the last request for assertions.
func jsonServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var captured http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &captured
}

// slowServer answers after the given delay, for timeout tests.
func slowServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("", "a", "b"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}

func TestDig(t *testing.T) {
	body := map[string]interface{}{
		"main": map[string]interface{}{"temp": 18.5},
	}

	assert.Equal(t, 18.5, dig(body, "main", "temp"))
	assert.Nil(t, dig(body, "main", "missing"))
	assert.Nil(t, dig(body, "missing", "temp"))
	assert.Nil(t, dig(nil, "main"))
}

func TestToFloatAndToInt(t *testing.T) {
	assert.Equal(t, 1.5, toFloat(1.5))
	assert.Equal(t, 1.5, toFloat("1.5"))
	assert.Equal(t, 1.5, toFloat(" 1.5 "))
	assert.Nil(t, toFloat("abc"))
	assert.Nil(t, toFloat(nil))

	assert.Equal(t, int64(42), toInt(float64(42)))
	assert.Equal(t, int64(42), toInt("42"))
	assert.Nil(t, toInt("4.2"))
}

func TestFormatUnixTime(t *testing.T) {
	ts := time.Date(2026, 8, 14, 6, 30, 0, 0, time.UTC).Unix()
	assert.Equal(t, "06:30", formatUnixTime(float64(ts)))
	assert.Nil(t, formatUnixTime("not-a-time"))
	assert.Nil(t, formatUnixTime(nil))
}

func TestProviderMessage(t *testing.T) {
	body := map[string]interface{}{"message": "city not found"}
	assert.Equal(t, "city not found", providerMessage(body, "message", "fallback"))
	assert.Equal(t, "fallback", providerMessage(body, "reason", "fallback"))
	assert.Equal(t, "fallback", providerMessage(nil, "message", "fallback"))
}
