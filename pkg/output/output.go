package output

import "github.com/ericogr/sensorpoll/pkg/sensor"

// Output is a sink for formatted sensor readings.
type Output interface {
	Publish([]sensor.Reading) error
	Close() error
}

// helper constructors are in subpackages
