package sensor

import (
	"fmt"

	"github.com/ericogr/sensorpoll/pkg/clock"
	"github.com/ericogr/sensorpoll/pkg/pin"
	"github.com/ericogr/sensorpoll/pkg/sampler"
	"periph.io/x/conn/v3/gpio"
)

// LightMaxInput is the code treated as full brightness.
//
// TODO: confirm against the photoresistor divider; 512 is half the 10-bit
// range the other sensors use.
const LightMaxInput = 512

// Light is a photoresistor divider on one analog channel with an optional
// power pin.
type Light struct {
	MaxInput uint16

	in    pin.AnalogIn
	power pin.DigitalOut
	s     sampler.Sampler
	raw   uint16
}

// NewLight returns a light sensor. power may be nil when the divider is
// always powered.
func NewLight(power pin.DigitalOut, in pin.AnalogIn, interval clock.Tick) *Light {
	return &Light{MaxInput: LightMaxInput, in: in, power: power, s: sampler.New(interval)}
}

func (l *Light) Name() string { return "light" }

// SetPower switches the divider supply immediately, independent of the
// sampling interval. It is a no-op without a power pin.
func (l *Light) SetPower(on bool) {
	if l.power != nil {
		l.power.Out(gpio.Level(on))
	}
}

func (l *Light) Update(now clock.Tick) {
	l.s.Update(now, func() {
		l.raw = l.in.Read()
	})
}

func (l *Light) Sampled() bool { return l.s.Sampled() }

func (l *Light) Raw() uint16 { return l.raw }

// Percent returns the last reading as a fraction of MaxInput.
func (l *Light) Percent() float32 {
	return percent(l.raw, l.MaxInput, LightMaxInput)
}

func (l *Light) Reading() Reading {
	return Reading{
		Sensor: l.Name(),
		Tick:   l.s.Last(),
		Unit:   "%",
		Values: map[string]float64{
			"raw":     float64(l.raw),
			"percent": float64(l.Percent()) * 100,
		},
		Text: fmt.Sprintf("Light Level: %d", l.raw),
	}
}

func percent(raw, full, fallback uint16) float32 {
	if full == 0 {
		full = fallback
	}
	return float32(raw) / float32(full)
}
