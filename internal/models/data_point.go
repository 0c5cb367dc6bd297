package models

import (
	"encoding/gob"
	"fmt"
	"time"
)

func init() {
	// Register types for gob encoding (required for BadgerHold storage of interface{} fields)
	gob.Register(map[string]interface{}{})
	gob.Register([]interface{}{})
	gob.Register(time.Time{})
}

// DataPoint is one fetched snapshot of a data source's value, cached under a
// key. Datapoints are append-only: a refresh writes a new record rather than
// mutating the old one, and the storage layer prunes superseded revisions.
type DataPoint struct {
	ID       string                 `json:"id" badgerhold:"key"`
	SourceID string                 `json:"source_id" badgerhold:"index"`
	Key      string                 `json:"key"`
	Value    map[string]interface{} `json:"value"`

	FetchedAt time.Time              `json:"fetched_at"`
	ExpiresAt *time.Time             `json:"expires_at,omitempty"` // nil = never expires
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Validate enforces the datapoint invariants: a non-empty value, a fetch
// timestamp, and an expiration not earlier than the fetch time.
func (d *DataPoint) Validate() error {
	if d.SourceID == "" {
		return fmt.Errorf("source_id is required")
	}
	if d.Key == "" {
		return fmt.Errorf("key is required")
	}
	if len(d.Value) == 0 {
		return fmt.Errorf("value cannot be empty")
	}
	if d.FetchedAt.IsZero() {
		return fmt.Errorf("fetched_at is required")
	}
	if d.ExpiresAt != nil && d.ExpiresAt.Before(d.FetchedAt) {
		return fmt.Errorf("expires_at must not be earlier than fetched_at")
	}
	return nil
}

// Expired reports whether the datapoint's expiration has passed.
// A nil expiration means the value never expires.
func (d *DataPoint) Expired() bool {
	return d.ExpiresAt != nil && !d.ExpiresAt.After(time.Now())
}
