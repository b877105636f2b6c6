package pin

import (
	"fmt"
	"log"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
)

const (
	pointerConv   = 0x00
	pointerConfig = 0x01

	// ±6.144 V full scale, so a 5 V sensor fits the range.
	fullScale = 6144 * physic.MilliVolt

	// MaxCode is the largest value an AnalogIn returns.
	MaxCode = 1023
)

// ADS1115 is a 16-bit I2C ADC whose single-ended channels are exposed as
// 10-bit AnalogIn codes relative to Reference, the way an on-chip 10-bit ADC
// with a 5 V reference reports them.
type ADS1115 struct {
	dev        *i2c.Dev
	bus        i2c.BusCloser
	sampleRate int
	Reference  physic.ElectricPotential

	mu    sync.Mutex
	last  [4]uint16
	sleep func(time.Duration)
}

// OpenADS1115 opens the named I2C bus and returns the converter at addr.
// host.Init must have run.
func OpenADS1115(busName string, addr uint16, sampleRate int) (*ADS1115, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c: %w", err)
	}
	return NewADS1115(bus, addr, sampleRate), nil
}

// NewADS1115 returns a converter on an already opened bus. It takes ownership
// of bus.
func NewADS1115(bus i2c.BusCloser, addr uint16, sampleRate int) *ADS1115 {
	return &ADS1115{
		dev:        &i2c.Dev{Addr: addr, Bus: bus},
		bus:        bus,
		sampleRate: sampleRate,
		Reference:  5 * physic.Volt,
		sleep:      time.Sleep,
	}
}

func (s *ADS1115) Close() error {
	if s.bus != nil {
		return s.bus.Close()
	}
	return nil
}

// ReadChannel runs one single-shot conversion on channel and returns it as a
// 10-bit code. Negative readings clamp to 0 and readings above Reference
// clamp to MaxCode.
func (s *ADS1115) ReadChannel(channel int) (uint16, error) {
	msb, lsb, err := s.configForChannel(channel, s.sampleRate)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.dev.Tx([]byte{pointerConfig, msb, lsb}, nil); err != nil {
		return 0, fmt.Errorf("write config: %w", err)
	}
	// wait for conversion (simple sleep)
	delayMs := int(1000.0/float64(s.rate())) + 2
	s.sleep(time.Duration(delayMs) * time.Millisecond)
	readBuf := make([]byte, 2)
	if err := s.dev.Tx([]byte{pointerConv}, readBuf); err != nil {
		return 0, fmt.Errorf("read conv: %w", err)
	}
	raw := int16(readBuf[0])<<8 | int16(readBuf[1])
	code := s.toCode(raw)
	s.last[channel] = code
	return code, nil
}

// Channel returns channel as an AnalogIn. A failed conversion is logged and
// the previous code for that channel is returned.
func (s *ADS1115) Channel(channel int) AnalogIn {
	return &adsChannel{adc: s, ch: channel}
}

func (s *ADS1115) lastCode(channel int) uint16 {
	if channel < 0 || channel >= len(s.last) {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[channel]
}

func (s *ADS1115) rate() int {
	if s.sampleRate <= 0 {
		return 128
	}
	return s.sampleRate
}

func (s *ADS1115) toCode(raw int16) uint16 {
	if raw <= 0 {
		return 0
	}
	ref := int64(s.Reference / physic.MicroVolt)
	if ref <= 0 {
		return MaxCode
	}
	uv := int64(raw) * int64(fullScale/physic.MicroVolt) / 32768
	code := uv * MaxCode / ref
	if code > MaxCode {
		return MaxCode
	}
	return uint16(code)
}

func (s *ADS1115) configForChannel(channel, sampleRate int) (byte, byte, error) {
	var mux byte
	switch channel {
	case 0:
		mux = 0x4
	case 1:
		mux = 0x5
	case 2:
		mux = 0x6
	case 3:
		mux = 0x7
	default:
		return 0, 0, fmt.Errorf("invalid channel %d", channel)
	}
	// PGA: ±6.144V -> bits 000
	pga := byte(0x0)
	var dr byte
	switch sampleRate {
	case 8:
		dr = 0x0
	case 16:
		dr = 0x1
	case 32:
		dr = 0x2
	case 64:
		dr = 0x3
	case 128:
		dr = 0x4
	case 250:
		dr = 0x5
	case 475:
		dr = 0x6
	case 860:
		dr = 0x7
	default:
		dr = 0x4
	}
	var config uint16 = 0x8000 // OS = 1 (start single conversion)
	config |= uint16(mux) << 12
	config |= uint16(pga) << 9
	config |= 1 << 8 // single-shot mode
	config |= uint16(dr) << 5
	// comparator disabled (bits 1:0 = 11)
	config |= 0x3
	return byte(config >> 8), byte(config & 0xFF), nil
}

type adsChannel struct {
	adc *ADS1115
	ch  int
}

func (c *adsChannel) Read() uint16 {
	v, err := c.adc.ReadChannel(c.ch)
	if err != nil {
		log.Printf("ads1115 channel %d: %v", c.ch, err)
		return c.adc.lastCode(c.ch)
	}
	return v
}
