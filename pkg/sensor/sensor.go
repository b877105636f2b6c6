// Package sensor holds the rate-limited sensor adapters. Each adapter owns a
// sampler and its pins, is updated from the foreground loop with the current
// tick, and derives its values from the last raw reading on demand.
package sensor

import "github.com/ericogr/sensorpoll/pkg/clock"

// Reading is a snapshot of a sensor's derived values, ready to be formatted
// by an output.
type Reading struct {
	Sensor string             `json:"sensor"`
	Tick   clock.Tick         `json:"tick"`
	Unit   string             `json:"unit,omitempty"`
	Values map[string]float64 `json:"values"`
	// Text is the human-readable line for line-oriented sinks.
	Text string `json:"-"`
}

type Sensor interface {
	Name() string
	// Update samples the sensor if its interval has elapsed at now.
	Update(now clock.Tick)
	// Sampled reports whether the last Update took a sample.
	Sampled() bool
	Reading() Reading
}
