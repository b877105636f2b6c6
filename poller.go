package main

import (
	"fmt"
	"log"

	"github.com/ericogr/sensorpoll/pkg/clock"
	"github.com/ericogr/sensorpoll/pkg/config"
	"github.com/ericogr/sensorpoll/pkg/pin"
	"github.com/ericogr/sensorpoll/pkg/sensor"
)

// poller is the foreground loop body: it updates every sensor with the same
// tick, applies the light power policy, and hands readings to the outputs
// when their own intervals elapse.
type poller struct {
	sensors []sensor.Sensor
	latest  []sensor.Reading
	seen    []bool

	light          *sensor.Light
	lightThreshold float32
	joystick       *sensor.Joystick

	outputs []outputEntry
}

func newPoller(cfg config.Config, b *board) (*poller, error) {
	p := &poller{}
	period := cfg.Clock.PeriodUs

	if c := cfg.Temperature; c.Enabled {
		t := sensor.NewTemperature(b.analog(c.Channel), msToTicks(c.IntervalMs, period))
		if c.MaxInput > 0 {
			t.MaxInput = uint16(c.MaxInput)
		}
		p.add(t)
	}
	if c := cfg.Light; c.Enabled {
		var power pin.DigitalOut
		if c.PowerPin != "" {
			out, err := b.output(c.PowerPin)
			if err != nil {
				return nil, fmt.Errorf("light power pin: %w", err)
			}
			power = out
		}
		l := sensor.NewLight(power, b.analog(c.Channel), msToTicks(c.IntervalMs, period))
		if c.MaxInput > 0 {
			l.MaxInput = uint16(c.MaxInput)
		}
		l.SetPower(true)
		p.light = l
		p.lightThreshold = float32(c.PowerOffThreshold)
		p.add(l)
	}
	if c := cfg.Water; c.Enabled {
		power, err := b.output(c.PowerPin)
		if err != nil {
			return nil, fmt.Errorf("water power pin: %w", err)
		}
		w := sensor.NewWater(power, b.analog(c.Channel), msToTicks(c.IntervalMs, period))
		if c.MaxInput > 0 {
			w.MaxInput = uint16(c.MaxInput)
		}
		p.add(w)
	}
	if c := cfg.Joystick; c.Enabled {
		var x, y pin.AnalogIn
		if c.XChannel != config.NoChannel {
			x = b.analog(c.XChannel)
		}
		if c.YChannel != config.NoChannel {
			y = b.analog(c.YChannel)
		}
		var button pin.DigitalIn
		if c.ButtonPin != "" {
			in, err := b.input(c.ButtonPin)
			if err != nil {
				return nil, fmt.Errorf("joystick button pin: %w", err)
			}
			button = in
		}
		j := sensor.NewJoystick(x, y, button, msToTicks(c.IntervalMs, period))
		if c.MaxInput > 0 {
			j.MaxInput = uint16(c.MaxInput)
		}
		p.joystick = j
		p.add(j)
	}
	if len(p.sensors) == 0 {
		return nil, fmt.Errorf("no sensors enabled")
	}
	return p, nil
}

func (p *poller) add(s sensor.Sensor) {
	p.sensors = append(p.sensors, s)
	p.latest = append(p.latest, sensor.Reading{})
	p.seen = append(p.seen, false)
}

// Step runs one pass of the foreground loop at now.
func (p *poller) Step(now clock.Tick) {
	for i, s := range p.sensors {
		s.Update(now)
		if s.Sampled() {
			p.latest[i] = s.Reading()
			p.seen[i] = true
		}
	}

	if p.light != nil && p.light.Sampled() && p.lightThreshold > 0 && p.light.Percent() > p.lightThreshold {
		p.light.SetPower(false)
	}

	if p.joystick != nil && p.joystick.ButtonPressed() {
		event := p.joystick.PressEvent(now)
		for i := range p.outputs {
			p.publish(&p.outputs[i], []sensor.Reading{event})
		}
	}

	for i := range p.outputs {
		e := &p.outputs[i]
		e.gate.Update(now, func() {
			if readings := p.snapshot(); len(readings) > 0 {
				p.publish(e, readings)
			}
		})
	}
}

func (p *poller) snapshot() []sensor.Reading {
	out := make([]sensor.Reading, 0, len(p.latest))
	for i, r := range p.latest {
		if p.seen[i] {
			out = append(out, r)
		}
	}
	return out
}

func (p *poller) publish(e *outputEntry, readings []sensor.Reading) {
	if err := e.Out.Publish(readings); err != nil {
		log.Printf("output %s publish error: %v", e.Type, err)
	}
}
