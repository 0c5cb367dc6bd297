package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDataPoint() *DataPoint {
	now := time.Now()
	expires := now.Add(time.Hour)
	return &DataPoint{
		ID:        "dp_test",
		SourceID:  "src_test",
		Key:       "default",
		Value:     map[string]interface{}{"temp": 18.5},
		FetchedAt: now,
		ExpiresAt: &expires,
	}
}

func TestDataPointValidate_Valid(t *testing.T) {
	require.NoError(t, validDataPoint().Validate())
}

func TestDataPointValidate_EmptyValue(t *testing.T) {
	point := validDataPoint()
	point.Value = nil
	require.Error(t, point.Validate())

	point.Value = map[string]interface{}{}
	require.Error(t, point.Validate())
}

func TestDataPointValidate_ExpiresBeforeFetch(t *testing.T) {
	point := validDataPoint()
	expired := point.FetchedAt.Add(-time.Minute)
	point.ExpiresAt = &expired

	err := point.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expires_at")
}

func TestDataPointValidate_NilExpirationAllowed(t *testing.T) {
	point := validDataPoint()
	point.ExpiresAt = nil
	require.NoError(t, point.Validate())
}

func TestDataPointExpired(t *testing.T) {
	point := validDataPoint()
	assert.False(t, point.Expired())

	past := time.Now().Add(-time.Minute)
	point.ExpiresAt = &past
	assert.True(t, point.Expired())

	// nil expiration never expires
	point.ExpiresAt = nil
	assert.False(t, point.Expired())
}
