package sensor

import (
	"fmt"

	"github.com/ericogr/sensorpoll/pkg/clock"
	"github.com/ericogr/sensorpoll/pkg/pin"
	"github.com/ericogr/sensorpoll/pkg/sampler"
	"periph.io/x/conn/v3/gpio"
)

// WaterMaxInput is the code treated as fully submerged.
const WaterMaxInput = 1024

// Water is a resistive water-level probe. The probe is powered only for the
// duration of each conversion to limit electrode corrosion.
type Water struct {
	MaxInput uint16

	in    pin.AnalogIn
	power pin.DigitalOut
	s     sampler.Sampler
	raw   uint16
}

// NewWater returns a water-level sensor. power is required.
func NewWater(power pin.DigitalOut, in pin.AnalogIn, interval clock.Tick) *Water {
	if power == nil {
		panic("sensor: water level probe needs a power pin")
	}
	return &Water{MaxInput: WaterMaxInput, in: in, power: power, s: sampler.New(interval)}
}

func (w *Water) Name() string { return "water" }

func (w *Water) Update(now clock.Tick) {
	w.s.Update(now, func() {
		w.power.Out(gpio.High)
		w.raw = w.in.Read()
		w.power.Out(gpio.Low)
	})
}

func (w *Water) Sampled() bool { return w.s.Sampled() }

func (w *Water) Raw() uint16 { return w.raw }

// Percent returns the last reading as a fraction of MaxInput.
func (w *Water) Percent() float32 {
	return percent(w.raw, w.MaxInput, WaterMaxInput)
}

func (w *Water) Reading() Reading {
	return Reading{
		Sensor: w.Name(),
		Tick:   w.s.Last(),
		Unit:   "%",
		Values: map[string]float64{
			"raw":     float64(w.raw),
			"percent": float64(w.Percent()) * 100,
		},
		Text: fmt.Sprintf("Water Level: %d", w.raw),
	}
}
