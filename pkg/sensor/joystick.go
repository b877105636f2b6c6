package sensor

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/ericogr/sensorpoll/pkg/clock"
	"github.com/ericogr/sensorpoll/pkg/pin"
	"github.com/ericogr/sensorpoll/pkg/sampler"
	"periph.io/x/conn/v3/gpio"
)

// JoystickMaxInput is the default full-scale axis code. An axis that has not
// been read reports half of MaxInput.
const JoystickMaxInput = 1024

// Joystick is a two-axis analog stick with an active-low push button. Any of
// the three inputs may be absent. The button is debounced only by the
// sampling interval.
type Joystick struct {
	MaxInput uint16

	xIn, yIn pin.AnalogIn
	btnIn    pin.DigitalIn
	s        sampler.Sampler

	x, y     uint16
	xOK, yOK bool
	button   bool
	pressed  bool
}

// NewJoystick returns a joystick; pass nil for any input that is not wired.
func NewJoystick(x, y pin.AnalogIn, button pin.DigitalIn, interval clock.Tick) *Joystick {
	return &Joystick{
		MaxInput: JoystickMaxInput,
		xIn:      x,
		yIn:      y,
		btnIn:    button,
		s:        sampler.New(interval),
	}
}

func (j *Joystick) Name() string { return "joystick" }

func (j *Joystick) Update(now clock.Tick) {
	j.pressed = false
	j.s.Update(now, func() {
		if j.btnIn != nil {
			prev := j.button
			j.button = j.btnIn.Read() == gpio.Low
			j.pressed = !prev && j.button
		}
		if j.xIn != nil {
			j.x, j.xOK = j.xIn.Read(), true
		}
		if j.yIn != nil {
			j.y, j.yOK = j.yIn.Read(), true
		}
	})
}

func (j *Joystick) Sampled() bool { return j.s.Sampled() }

func (j *Joystick) X() uint16 { return j.code(j.x, j.xOK) }
func (j *Joystick) Y() uint16 { return j.code(j.y, j.yOK) }

func (j *Joystick) full() uint16 {
	if j.MaxInput == 0 {
		return JoystickMaxInput
	}
	return j.MaxInput
}

func (j *Joystick) code(v uint16, ok bool) uint16 {
	if !ok {
		return j.full() / 2
	}
	return v
}

// Button reports whether the button was held at the last sample.
func (j *Joystick) Button() bool { return j.button }

// ButtonPressed is true only on the update whose sample saw the button go
// from released to held.
func (j *Joystick) ButtonPressed() bool { return j.pressed }

// Axis returns both axes normalised to [-1, 1] around the centre code.
func (j *Joystick) Axis() (float32, float32) {
	c := float32(j.full() / 2)
	norm := func(v uint16) float32 {
		return math32.Max(-1, math32.Min(1, (float32(v)-c)/c))
	}
	return norm(j.X()), norm(j.Y())
}

func (j *Joystick) Reading() Reading {
	x, y := j.X(), j.Y()
	ax, ay := j.Axis()
	button := 0.0
	if j.button {
		button = 1
	}
	return Reading{
		Sensor: j.Name(),
		Tick:   j.s.Last(),
		Values: map[string]float64{
			"x":      float64(x),
			"y":      float64(y),
			"axis_x": float64(ax),
			"axis_y": float64(ay),
			"button": button,
		},
		Text: fmt.Sprintf("%d, %d, %t", x, y, j.button),
	}
}

// PressEvent is the reading published when ButtonPressed is set. It carries
// the full joystick state plus "pressed" and goes to its own sensor name so
// it never replaces the regular joystick state.
func (j *Joystick) PressEvent(now clock.Tick) Reading {
	r := j.Reading()
	r.Sensor = j.Name() + "/event"
	r.Tick = now
	r.Values["pressed"] = 1
	r.Text = "pressed!!!"
	return r
}
