package pin

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestConfigForChannelBytes(t *testing.T) {
	s := &ADS1115{}

	// channel 0, sample rate 128 -> msb 0xC1 lsb 0x83 (±6.144V)
	msb, lsb, err := s.configForChannel(0, 128)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msb != 0xC1 || lsb != 0x83 {
		t.Fatalf("channel0@128 => got %02X %02X; want C1 83", msb, lsb)
	}

	// channel 1, sample rate 128 -> D1 83
	msb, lsb, err = s.configForChannel(1, 128)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msb != 0xD1 || lsb != 0x83 {
		t.Fatalf("channel1@128 => got %02X %02X; want D1 83", msb, lsb)
	}

	// sample rate 8 for channel 0 -> msb C1 lsb 03 (dr=0)
	msb, lsb, err = s.configForChannel(0, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msb != 0xC1 || lsb != 0x03 {
		t.Fatalf("channel0@8 => got %02X %02X; want C1 03", msb, lsb)
	}

	// invalid channel
	_, _, err = s.configForChannel(9, 128)
	if err == nil {
		t.Fatalf("expected error for invalid channel")
	}
}

func conversion(addr uint16, cfgMSB, cfgLSB, hi, lo byte) []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: addr, W: []byte{pointerConfig, cfgMSB, cfgLSB}},
		{Addr: addr, W: []byte{pointerConv}, R: []byte{hi, lo}},
	}
}

func noSleep(time.Duration) {}

func TestReadChannelScalesTo10Bit(t *testing.T) {
	tests := []struct {
		name   string
		hi, lo byte
		want   uint16
	}{
		{"zero", 0x00, 0x00, 0},
		{"negative clamps", 0xFF, 0x00, 0},
		{"half reference", 0x34, 0x15, 511},
		{"full scale clamps", 0x7F, 0xFF, MaxCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := &i2ctest.Playback{Ops: conversion(0x48, 0xC1, 0x83, tt.hi, tt.lo)}
			adc := NewADS1115(bus, 0x48, 128)
			adc.sleep = noSleep

			got, err := adc.ReadChannel(0)
			if err != nil {
				t.Fatalf("ReadChannel: %v", err)
			}
			if got != tt.want {
				t.Fatalf("code = %d; want %d", got, tt.want)
			}
			if err := adc.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
		})
	}
}

func TestChannelHoldsLastCodeOnError(t *testing.T) {
	ops := conversion(0x48, 0xD1, 0x83, 0x34, 0x15)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	adc := NewADS1115(bus, 0x48, 128)
	adc.sleep = noSleep
	ch := adc.Channel(1)

	if got := ch.Read(); got != 511 {
		t.Fatalf("first read = %d; want 511", got)
	}
	// playback exhausted: the transfer fails and the stale code is kept
	if got := ch.Read(); got != 511 {
		t.Fatalf("read after failure = %d; want 511", got)
	}
}
