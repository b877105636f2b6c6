// Package sampler implements the rate-limited sample pattern shared by every
// sensor: a read happens at most once per interval of clock ticks, and the
// elapsed-time test wraps with the clock counter.
package sampler

import "github.com/ericogr/sensorpoll/pkg/clock"

// ShouldSample reports whether at least interval ticks separate last and now.
// The subtraction wraps, so a counter overflow between the two needs no
// special case. An interval of 0 always samples.
func ShouldSample(now, last, interval clock.Tick) bool {
	return clock.Elapsed(now, last) >= interval
}

// Sampler is the per-sensor sampling state. It is owned by one adapter and
// only touched from the foreground loop.
//
// Interval is a caller precondition: a huge interval only lowers the sample
// rate, it never corrupts state.
type Sampler struct {
	last     clock.Tick
	interval clock.Tick
	sampled  bool
}

// New returns a sampler that permits one read per interval. The last sample
// time starts at 0.
func New(interval clock.Tick) Sampler {
	return Sampler{interval: interval}
}

// Record marks now as the time of the latest sample and returns it.
func (s *Sampler) Record(now clock.Tick) clock.Tick {
	s.last = now
	s.sampled = true
	return s.last
}

// Update runs read if the interval has elapsed at now and reports whether it
// did. read runs synchronously; Sampled reflects the result until the next
// Update.
func (s *Sampler) Update(now clock.Tick, read func()) bool {
	if !ShouldSample(now, s.last, s.interval) {
		s.sampled = false
		return false
	}
	read()
	s.Record(now)
	return true
}

// Sampled reports whether the last Update took a sample.
func (s *Sampler) Sampled() bool { return s.sampled }

// Last returns the tick of the latest sample.
func (s *Sampler) Last() clock.Tick { return s.last }
