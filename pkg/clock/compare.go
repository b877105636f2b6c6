package clock

import (
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3/physic"
)

// Prescalers lists the clock dividers supported by the 8-bit timer, smallest
// first.
var Prescalers = []uint16{1, 8, 64, 256, 1024}

const maxTop = 255

// Compare holds the CTC settings of an 8-bit timer: the counter counts source
// clocks divided by Prescaler and matches (interrupts and resets) at Top.
type Compare struct {
	Prescaler uint16
	Top       uint8
}

// Period returns the interrupt period produced by c at the given source clock.
func (c Compare) Period(src physic.Frequency) time.Duration {
	hz := int64(src / physic.Hertz)
	if hz <= 0 || c.Prescaler == 0 {
		return 0
	}
	counts := int64(c.Prescaler) * (int64(c.Top) + 1)
	return time.Duration(counts * int64(time.Second) / hz)
}

func (c Compare) String() string {
	return fmt.Sprintf("prescaler=%d top=%d", c.Prescaler, c.Top)
}

// ComputeCompare picks the smallest prescaler whose top value fits in 8 bits
// for the target period, rounding the count to nearest. Targets too long for
// the largest prescaler saturate at 1024/255; targets shorter than one source
// clock give 1/0.
func ComputeCompare(src physic.Frequency, target time.Duration) Compare {
	hz := int64(src / physic.Hertz)
	ns := int64(target)
	if hz <= 0 || ns <= 0 {
		return Compare{Prescaler: Prescalers[0], Top: 0}
	}
	if ns > (math.MaxInt64-1024*int64(time.Second))/hz {
		return Compare{Prescaler: Prescalers[len(Prescalers)-1], Top: maxTop}
	}
	for _, p := range Prescalers {
		div := int64(p) * int64(time.Second)
		counts := (hz*ns + div/2) / div
		if counts < 1 {
			return Compare{Prescaler: p, Top: 0}
		}
		if counts <= maxTop+1 {
			return Compare{Prescaler: p, Top: uint8(counts - 1)}
		}
	}
	return Compare{Prescaler: Prescalers[len(Prescalers)-1], Top: maxTop}
}
