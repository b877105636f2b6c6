package pin

import (
	"fmt"
	"math/rand"
	"sync"

	"periph.io/x/conn/v3/gpio"
)

// Simulated is an analog channel that random-walks within [0, Max]. It stands
// in for hardware when the board kind is "simulation".
type Simulated struct {
	Max  uint16
	Step int

	mu  sync.Mutex
	v   int
	rnd *rand.Rand
}

// NewSimulated returns a channel starting at start.
func NewSimulated(start, max uint16, seed int64) *Simulated {
	return &Simulated{Max: max, Step: 16, v: int(start), rnd: rand.New(rand.NewSource(seed))}
}

func (s *Simulated) Read() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v += s.rnd.Intn(2*s.Step+1) - s.Step
	if s.v < 0 {
		s.v = 0
	}
	if s.v > int(s.Max) {
		s.v = int(s.Max)
	}
	return uint16(s.v)
}

// SimulatedButton is an active-low input that is pressed on roughly one read
// in every Odds.
type SimulatedButton struct {
	Odds int

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSimulatedButton(odds int, seed int64) *SimulatedButton {
	if odds < 1 {
		odds = 1
	}
	return &SimulatedButton{Odds: odds, rnd: rand.New(rand.NewSource(seed))}
}

func (b *SimulatedButton) Read() gpio.Level {
	b.mu.Lock()
	defer b.mu.Unlock()
	return gpio.Level(b.rnd.Intn(b.Odds) != 0)
}

// Script is an analog channel returning Values in order. The last value
// repeats once the script runs out.
type Script struct {
	Values []uint16
	Reads  int
}

func (s *Script) Read() uint16 {
	if len(s.Values) == 0 {
		s.Reads++
		return 0
	}
	i := s.Reads
	if i >= len(s.Values) {
		i = len(s.Values) - 1
	}
	s.Reads++
	return s.Values[i]
}

// LevelScript is a digital input returning Levels in order. The last level
// repeats once the script runs out.
type LevelScript struct {
	Levels []gpio.Level
	Reads  int
}

func (s *LevelScript) Read() gpio.Level {
	if len(s.Levels) == 0 {
		s.Reads++
		return gpio.High
	}
	i := s.Reads
	if i >= len(s.Levels) {
		i = len(s.Levels) - 1
	}
	s.Reads++
	return s.Levels[i]
}

// Trace records I/O events from traced pins in the order they happen.
type Trace struct {
	Events []string
}

func (t *Trace) add(format string, a ...interface{}) {
	t.Events = append(t.Events, fmt.Sprintf(format, a...))
}

// Reset clears the recorded events.
func (t *Trace) Reset() { t.Events = t.Events[:0] }

// TracedOut records every level written to it and remembers the last one.
type TracedOut struct {
	Name  string
	Trace *Trace
	Level gpio.Level
}

func (o *TracedOut) Out(l gpio.Level) {
	o.Level = l
	if o.Trace != nil {
		o.Trace.add("%s=%s", o.Name, l)
	}
}

// TracedAnalog records each conversion of In.
type TracedAnalog struct {
	Name  string
	In    AnalogIn
	Trace *Trace
}

func (a *TracedAnalog) Read() uint16 {
	v := a.In.Read()
	if a.Trace != nil {
		a.Trace.add("read %s=%d", a.Name, v)
	}
	return v
}

var (
	_ AnalogIn   = (*Simulated)(nil)
	_ AnalogIn   = (*Script)(nil)
	_ AnalogIn   = (*TracedAnalog)(nil)
	_ AnalogIn   = (*adsChannel)(nil)
	_ DigitalIn  = (*SimulatedButton)(nil)
	_ DigitalIn  = (*LevelScript)(nil)
	_ DigitalIn  = (*GPIOIn)(nil)
	_ DigitalOut = (*TracedOut)(nil)
	_ DigitalOut = (*GPIOOut)(nil)
)
