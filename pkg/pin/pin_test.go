package pin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestGPIOInIsPullUp(t *testing.T) {
	p := &gpiotest.Pin{N: "D7", Num: 7}
	in, err := NewGPIOIn(p)
	require.NoError(t, err)

	assert.Equal(t, gpio.PullUp, p.P)
	assert.Equal(t, gpio.High, in.Read(), "released button reads high")

	p.Lock()
	p.L = gpio.Low
	p.Unlock()
	assert.Equal(t, gpio.Low, in.Read())
}

func TestGPIOOutStartsLow(t *testing.T) {
	p := &gpiotest.Pin{N: "D8", Num: 8, L: gpio.High}
	out, err := NewGPIOOut(p)
	require.NoError(t, err)
	assert.Equal(t, gpio.Low, p.Read())

	out.Out(gpio.High)
	assert.Equal(t, gpio.High, p.Read())
}

func TestLookupUnknownPin(t *testing.T) {
	_, err := LookupIn("NO_SUCH_PIN")
	assert.Error(t, err)
	_, err = LookupOut("NO_SUCH_PIN")
	assert.Error(t, err)
}

func TestScriptRepeatsLastValue(t *testing.T) {
	s := &Script{Values: []uint16{1, 2}}
	assert.Equal(t, []uint16{1, 2, 2}, []uint16{s.Read(), s.Read(), s.Read()})
	assert.Equal(t, 3, s.Reads)
}

func TestSimulatedStaysInRange(t *testing.T) {
	s := NewSimulated(500, 511, 1)
	for i := 0; i < 1000; i++ {
		assert.LessOrEqual(t, s.Read(), uint16(511))
	}
}

func TestTraceOrder(t *testing.T) {
	tr := &Trace{}
	out := &TracedOut{Name: "power", Trace: tr}
	in := &TracedAnalog{Name: "a0", In: &Script{Values: []uint16{9}}, Trace: tr}

	out.Out(gpio.High)
	in.Read()
	out.Out(gpio.Low)

	assert.Equal(t, []string{"power=High", "read a0=9", "power=Low"}, tr.Events)
	tr.Reset()
	assert.Empty(t, tr.Events)
}
