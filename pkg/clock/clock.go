// Package clock keeps the board's millisecond time base.
//
// A hardware timer fires a compare-match interrupt once per millisecond and
// the interrupt handler increments a shared 32-bit counter. The foreground
// loop reads the counter with Now. The counter wraps after about 49.7 days;
// consumers compare ticks only through Elapsed, which is correct across the
// wrap.
package clock

import "time"

// Tick counts milliseconds since the clock was initialised.
type Tick uint32

// Elapsed returns now-since modulo 2^32.
func Elapsed(now, since Tick) Tick {
	return now - since
}

// Clock is the shared millisecond counter.
//
// The zero value is not usable; build one with New. Now on a clock whose
// timer has not been initialised returns 0.
type Clock struct {
	sec    Section
	millis Tick
}

// New returns a clock whose counter is guarded by sec.
func New(sec Section) *Clock {
	if sec == nil {
		sec = &MutexSection{}
	}
	return &Clock{sec: sec}
}

// Init programs t for a compare interrupt as close as possible to period and
// attaches the clock's interrupt handler. It returns the compare settings
// that were written to the timer.
func (c *Clock) Init(t Timer, period time.Duration) Compare {
	cmp := ComputeCompare(t.Source(), period)
	t.Configure(cmp, c.onCompare)
	return cmp
}

// Now returns the current tick count.
func (c *Clock) Now() Tick {
	var v Tick
	c.sec.Run(func() {
		v = c.millis
	})
	return v
}

// onCompare is the interrupt handler. It only increments the counter.
func (c *Clock) onCompare() {
	c.sec.Run(func() {
		c.millis++
	})
}
