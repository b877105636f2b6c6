package main

import (
	"fmt"
	"io"

	"github.com/ericogr/sensorpoll/pkg/config"
	"github.com/ericogr/sensorpoll/pkg/pin"
	"github.com/ericogr/sensorpoll/pkg/sensor"
	"periph.io/x/host/v3"
)

// board hands out the pins the sensors are wired to.
type board struct {
	analog  func(ch int) pin.AnalogIn
	input   func(name string) (pin.DigitalIn, error)
	output  func(name string) (pin.DigitalOut, error)
	closers []io.Closer
}

func (b *board) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func openBoard(cfg config.Config) (*board, error) {
	if cfg.Board == config.BoardSimulation {
		return simulatedBoard(cfg), nil
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	adc, err := pin.OpenADS1115(cfg.I2C.Bus, uint16(cfg.I2C.Address), cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	return &board{
		analog: adc.Channel,
		input: func(name string) (pin.DigitalIn, error) {
			p, err := pin.LookupIn(name)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		output: func(name string) (pin.DigitalOut, error) {
			p, err := pin.LookupOut(name)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		closers: []io.Closer{adc},
	}, nil
}

// simulatedBoard drives every channel from a random walk bounded by the full
// scale of the sensor on it, and keeps output levels in memory.
func simulatedBoard(cfg config.Config) *board {
	var seed int64
	limits := channelLimits(cfg)
	return &board{
		analog: func(ch int) pin.AnalogIn {
			seed++
			full, ok := limits[ch]
			if !ok {
				full = pin.MaxCode
			}
			return pin.NewSimulated(full/2, full, seed)
		},
		input: func(name string) (pin.DigitalIn, error) {
			seed++
			return pin.NewSimulatedButton(50, seed), nil
		},
		output: func(name string) (pin.DigitalOut, error) {
			return &pin.TracedOut{Name: name}, nil
		},
	}
}

// channelLimits maps each enabled sensor's channel to its full-scale code.
func channelLimits(cfg config.Config) map[int]uint16 {
	limits := map[int]uint16{}
	set := func(ch, maxInput int, def uint16) {
		if ch == config.NoChannel {
			return
		}
		v := def
		if maxInput > 0 {
			v = uint16(maxInput)
		}
		if v > pin.MaxCode {
			v = pin.MaxCode
		}
		limits[ch] = v
	}
	if c := cfg.Temperature; c.Enabled {
		set(c.Channel, c.MaxInput, sensor.TemperatureMaxInput)
	}
	if c := cfg.Light; c.Enabled {
		set(c.Channel, c.MaxInput, sensor.LightMaxInput)
	}
	if c := cfg.Water; c.Enabled {
		set(c.Channel, c.MaxInput, sensor.WaterMaxInput)
	}
	if c := cfg.Joystick; c.Enabled {
		set(c.XChannel, c.MaxInput, sensor.JoystickMaxInput)
		set(c.YChannel, c.MaxInput, sensor.JoystickMaxInput)
	}
	return limits
}
