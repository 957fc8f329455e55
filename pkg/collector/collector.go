// Package collector pulls energy-price and weather forecast data from
// external APIs and normalizes it into datasets for snapshot assembly.
package collector

import (
	"context"
	"net/http"
	"time"
)

// DefaultHTTPClient returns an HTTP client suitable for the collectors:
// forecast APIs occasionally stall, so a hard timeout bounds each attempt.
func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// Point is one timestamped set of measurements, keyed by variable name.
type Point struct {
	Time   time.Time          `json:"time"`
	Values map[string]float64 `json:"values"`
}

// Dataset is the normalized output of one collector over a time window.
type Dataset struct {
	Source   string            `json:"source"`
	DataType string            `json:"data_type"`
	Units    map[string]string `json:"units,omitempty"`
	Points   []Point           `json:"points"`
}

// Collector abstracts one external data source.
type Collector interface {
	Name() string
	Collect(ctx context.Context, start, end time.Time) (*Dataset, error)
}
