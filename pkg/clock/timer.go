package clock

import (
	"context"
	"errors"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"
)

// DefaultSource is the 16 MHz system clock of the reference board.
const DefaultSource = 16 * physic.MegaHertz

// Timer is the hardware timer peripheral used as the clock's interrupt source.
//
// Configure programs the compare-match and installs isr as its interrupt
// handler. The handler must be called once per compare match and must not be
// called concurrently with itself.
type Timer interface {
	Source() physic.Frequency
	Configure(c Compare, isr func())
}

// TickerTimer emulates the compare interrupt on a host with a time.Ticker.
type TickerTimer struct {
	src physic.Frequency

	mu  sync.Mutex
	cmp Compare
	isr func()
}

// NewTickerTimer returns a timer whose source clock runs at src.
func NewTickerTimer(src physic.Frequency) *TickerTimer {
	if src <= 0 {
		src = DefaultSource
	}
	return &TickerTimer{src: src}
}

func (t *TickerTimer) Source() physic.Frequency { return t.src }

func (t *TickerTimer) Configure(c Compare, isr func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cmp = c
	t.isr = isr
}

// Start enables the interrupt. The handler runs on its own goroutine until
// ctx is done.
func (t *TickerTimer) Start(ctx context.Context) error {
	t.mu.Lock()
	isr := t.isr
	period := t.cmp.Period(t.src)
	t.mu.Unlock()
	if isr == nil {
		return errors.New("timer not configured")
	}
	if period <= 0 {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				isr()
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// ManualTimer fires its interrupt only when told to. Tests use it to move the
// clock deterministically.
type ManualTimer struct {
	src physic.Frequency
	cmp Compare
	isr func()
}

// NewManualTimer returns a manual timer reporting src as its source clock.
func NewManualTimer(src physic.Frequency) *ManualTimer {
	if src <= 0 {
		src = DefaultSource
	}
	return &ManualTimer{src: src}
}

func (t *ManualTimer) Source() physic.Frequency { return t.src }

func (t *ManualTimer) Configure(c Compare, isr func()) {
	t.cmp = c
	t.isr = isr
}

// Compare returns the settings last written by Configure.
func (t *ManualTimer) Compare() Compare { return t.cmp }

// Fire raises n compare interrupts.
func (t *ManualTimer) Fire(n int) {
	if t.isr == nil {
		return
	}
	for i := 0; i < n; i++ {
		t.isr()
	}
}
