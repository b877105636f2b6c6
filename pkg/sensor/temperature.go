package sensor

import (
	"fmt"

	"github.com/ericogr/sensorpoll/pkg/clock"
	"github.com/ericogr/sensorpoll/pkg/pin"
	"github.com/ericogr/sensorpoll/pkg/sampler"
	"periph.io/x/conn/v3/physic"
)

// TemperatureMaxInput is the ADC code mapped to the 5000 mV reference.
const TemperatureMaxInput = 1023

// Temperature is an analog sensor with a 10 mV/°C output, such as an LM35,
// read against a 5.00 V reference. All conversions are integer.
type Temperature struct {
	MaxInput uint16

	in  pin.AnalogIn
	s   sampler.Sampler
	raw uint16
}

func NewTemperature(in pin.AnalogIn, interval clock.Tick) *Temperature {
	return &Temperature{MaxInput: TemperatureMaxInput, in: in, s: sampler.New(interval)}
}

func (t *Temperature) Name() string { return "temperature" }

func (t *Temperature) Update(now clock.Tick) {
	t.s.Update(now, func() {
		t.raw = t.in.Read()
	})
}

func (t *Temperature) Sampled() bool { return t.s.Sampled() }

// Raw returns the last ADC code.
func (t *Temperature) Raw() uint16 { return t.raw }

// Millivolts returns the sensor output voltage, truncated to whole mV.
func (t *Temperature) Millivolts() uint32 {
	full := uint32(t.MaxInput)
	if full == 0 {
		full = TemperatureMaxInput
	}
	return uint32(t.raw) * 5000 / full
}

// Celsius returns the temperature as whole degrees and tenths.
func (t *Temperature) Celsius() (uint32, uint32) {
	mv := t.Millivolts()
	return mv / 10, mv % 10
}

// Fahrenheit returns the temperature as whole degrees and tenths, rounded
// from tenths of a degree Celsius.
func (t *Temperature) Fahrenheit() (uint32, uint32) {
	c, frac := t.Celsius()
	f10 := fahrenheitTenths(c*10 + frac)
	return f10 / 10, f10 % 10
}

// fahrenheitTenths converts tenths of °C to tenths of °F.
func fahrenheitTenths(c10 uint32) uint32 {
	return (c10*9+2)/5 + 320
}

// Voltage returns the sensor output as a typed potential.
func (t *Temperature) Voltage() physic.ElectricPotential {
	return physic.ElectricPotential(t.Millivolts()) * physic.MilliVolt
}

// Temperature returns the reading as a typed temperature, to a tenth of a
// degree.
func (t *Temperature) Temperature() physic.Temperature {
	c, frac := t.Celsius()
	return physic.ZeroCelsius + physic.Temperature(c*10+frac)*100*physic.MilliKelvin
}

func (t *Temperature) Reading() Reading {
	c, cf := t.Celsius()
	f, ff := t.Fahrenheit()
	return Reading{
		Sensor: t.Name(),
		Tick:   t.s.Last(),
		Unit:   "°C",
		Values: map[string]float64{
			"raw":        float64(t.raw),
			"celsius":    float64(c) + float64(cf)/10,
			"fahrenheit": float64(f) + float64(ff)/10,
			"millivolts": float64(t.Voltage() / physic.MilliVolt),
			"kelvin":     float64(t.Temperature()) / float64(physic.Kelvin),
		},
		Text: fmt.Sprintf("Temperature: %d.%dC", c, cf),
	}
}
