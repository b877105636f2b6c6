// Package pin defines the I/O capabilities the sensor adapters are built on
// and provides periph.io-backed and simulated implementations.
package pin

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// AnalogIn is one ADC channel. Read blocks until the conversion completes and
// returns a 10-bit code.
type AnalogIn interface {
	Read() uint16
}

// DigitalIn is a digital input.
type DigitalIn interface {
	Read() gpio.Level
}

// DigitalOut is a digital output. Out takes effect before it returns.
type DigitalOut interface {
	Out(l gpio.Level)
}

// GPIOIn is a pull-up input backed by a periph pin.
type GPIOIn struct {
	p gpio.PinIn
}

// NewGPIOIn configures p as a pull-up input without edge detection.
func NewGPIOIn(p gpio.PinIn) (*GPIOIn, error) {
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure input %s: %w", p, err)
	}
	return &GPIOIn{p: p}, nil
}

func (g *GPIOIn) Read() gpio.Level { return g.p.Read() }

// GPIOOut is an output backed by a periph pin.
type GPIOOut struct {
	p gpio.PinOut
}

// NewGPIOOut configures p as an output driven low.
func NewGPIOOut(p gpio.PinOut) (*GPIOOut, error) {
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("configure output %s: %w", p, err)
	}
	return &GPIOOut{p: p}, nil
}

// Out drives the pin. A driver failure is logged; the sampling loop has no
// way to recover from it.
func (g *GPIOOut) Out(l gpio.Level) {
	if err := g.p.Out(l); err != nil {
		log.Printf("gpio %s out %s: %v", g.p, l, err)
	}
}

// LookupIn finds a registered pin by name and configures it as a pull-up
// input. host.Init must have run.
func LookupIn(name string) (*GPIOIn, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	return NewGPIOIn(p)
}

// LookupOut finds a registered pin by name and configures it as an output.
// host.Init must have run.
func LookupOut(name string) (*GPIOOut, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	return NewGPIOOut(p)
}
