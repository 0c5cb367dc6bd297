package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// SourceType constants (closed set)
const (
	SourceTypeWeather  = "weather"
	SourceTypeStock    = "stock"
	SourceTypeNews     = "news"
	SourceTypeLocation = "location"
	SourceTypeCustom   = "custom"
)

// DefaultCacheDuration is used when a source's configuration does not
// specify cache_duration.
const DefaultCacheDuration = time.Hour

var validate = validator.New()

// DataSource represents a configured external data provider owned by a user.
// The API key is encrypted at rest by the storage layer and is never emitted
// by JSON marshaling.
type DataSource struct {
	ID       string                 `json:"id" badgerhold:"key"`
	UserID   string                 `json:"user_id" validate:"required"`
	Name     string                 `json:"name" validate:"required"`
	Type     string                 `json:"type" validate:"required,oneof=weather stock news location custom"`
	Endpoint string                 `json:"endpoint" validate:"required,url"`
	APIKey   string                 `json:"-"`
	Config   map[string]interface{} `json:"config"`
	Active   bool                   `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the source configuration. An unknown provider type or a
// non-positive cache duration is a configuration error caught here, before
// the source is ever used for a fetch.
func (s *DataSource) Validate() error {
	if err := validate.Struct(s); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			switch e.Tag() {
			case "oneof":
				return fmt.Errorf("invalid source type: %s", s.Type)
			case "url":
				return fmt.Errorf("endpoint must be a valid URL")
			default:
				return fmt.Errorf("%s is required", e.Field())
			}
		}
		return err
	}

	if raw, ok := s.Config["cache_duration"]; ok {
		if minutes := toMinutes(raw); minutes <= 0 {
			return fmt.Errorf("cache_duration must be a positive number of minutes")
		}
	}

	return nil
}

// CacheDuration returns how long fetched values remain fresh.
// Read from config key "cache_duration" (minutes), default one hour.
func (s *DataSource) CacheDuration() time.Duration {
	if raw, ok := s.Config["cache_duration"]; ok {
		if minutes := toMinutes(raw); minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
	}
	return DefaultCacheDuration
}

// ConfigString returns a string configuration value, or empty string if
// absent or not a string.
func (s *DataSource) ConfigString(key string) string {
	if v, ok := s.Config[key].(string); ok {
		return v
	}
	return ""
}

// toMinutes handles the numeric types a decoded config map may carry.
func toMinutes(raw interface{}) int {
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// MarshalJSON emits the source with the API key redacted. Only whether a key
// is configured is visible to callers.
func (s *DataSource) MarshalJSON() ([]byte, error) {
	type alias DataSource
	return json.Marshal(&struct {
		*alias
		HasAPIKey bool `json:"has_api_key"`
	}{
		alias:     (*alias)(s),
		HasAPIKey: s.APIKey != "",
	})
}
