package clock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

func TestNowBeforeInitIsZero(t *testing.T) {
	c := New(nil)
	assert.Equal(t, Tick(0), c.Now())
}

func TestInitCountsInterrupts(t *testing.T) {
	c := New(&MutexSection{})
	tm := NewManualTimer(DefaultSource)

	cmp := c.Init(tm, time.Millisecond)
	assert.Equal(t, Compare{Prescaler: 64, Top: 249}, cmp)
	assert.Equal(t, cmp, tm.Compare())

	tm.Fire(1500)
	assert.Equal(t, Tick(1500), c.Now())
}

func TestCounterWraps(t *testing.T) {
	c := New(nil)
	tm := NewManualTimer(DefaultSource)
	c.Init(tm, time.Millisecond)
	c.millis = 0xFFFFFFFE

	tm.Fire(3)
	assert.Equal(t, Tick(1), c.Now())
}

func TestElapsed(t *testing.T) {
	tests := []struct {
		name       string
		now, since Tick
		want       Tick
	}{
		{"forward", 1500, 1000, 500},
		{"same", 42, 42, 0},
		{"across wrap", 0x00000010, 0xFFFFFFF0, 0x20},
		{"max", 0xFFFFFFFF, 0, 0xFFFFFFFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Elapsed(tt.now, tt.since))
		})
	}
}

func TestComputeCompare(t *testing.T) {
	tests := []struct {
		name   string
		src    physic.Frequency
		target time.Duration
		want   Compare
	}{
		{"1ms at 16MHz", 16 * physic.MegaHertz, time.Millisecond, Compare{Prescaler: 64, Top: 249}},
		{"1ms at 8MHz", 8 * physic.MegaHertz, time.Millisecond, Compare{Prescaler: 64, Top: 124}},
		{"10us at 16MHz", 16 * physic.MegaHertz, 10 * time.Microsecond, Compare{Prescaler: 1, Top: 159}},
		{"10ms at 16MHz", 16 * physic.MegaHertz, 10 * time.Millisecond, Compare{Prescaler: 1024, Top: 155}},
		{"too long saturates", 16 * physic.MegaHertz, time.Second, Compare{Prescaler: 1024, Top: 255}},
		{"huge target saturates", 16 * physic.MegaHertz, 1000 * time.Hour, Compare{Prescaler: 1024, Top: 255}},
		{"zero target", 16 * physic.MegaHertz, 0, Compare{Prescaler: 1, Top: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeCompare(tt.src, tt.target))
		})
	}
}

func TestComparePeriod(t *testing.T) {
	cmp := Compare{Prescaler: 64, Top: 249}
	assert.Equal(t, time.Millisecond, cmp.Period(16*physic.MegaHertz))
	assert.Equal(t, time.Duration(0), Compare{}.Period(16*physic.MegaHertz))
}

func TestTickerTimerAdvancesClock(t *testing.T) {
	c := New(nil)
	tm := NewTickerTimer(DefaultSource)
	c.Init(tm, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, tm.Start(ctx))

	assert.Eventually(t, func() bool { return c.Now() >= 5 }, 2*time.Second, time.Millisecond)
}

func TestTickerTimerRequiresConfigure(t *testing.T) {
	tm := NewTickerTimer(DefaultSource)
	assert.Error(t, tm.Start(context.Background()))
}

func TestConcurrentReadsAreConsistent(t *testing.T) {
	c := New(nil)
	tm := NewManualTimer(DefaultSource)
	c.Init(tm, time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tm.Fire(10000)
	}()
	last := Tick(0)
	for i := 0; i < 1000; i++ {
		now := c.Now()
		assert.GreaterOrEqual(t, now, last)
		last = now
	}
	wg.Wait()
	assert.Equal(t, Tick(10000), c.Now())
}
