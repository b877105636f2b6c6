package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseKeyIntMap(t *testing.T) {
	tests := []struct {
		in   string
		want map[string]int
		ok   bool
	}{
		{"", map[string]int{}, true},
		{"console=1000,mqtt=5000", map[string]int{"console": 1000, "mqtt": 5000}, true},
		{" console = 250 , serial = 8", map[string]int{"console": 250, "serial": 8}, true},
		{"bad", nil, false},
		{"console=soon", nil, false},
	}
	for _, tt := range tests {
		got, err := parseKeyIntMap(tt.in)
		if (err == nil) != tt.ok {
			t.Fatalf("parseKeyIntMap(%q) ok=%v err=%v", tt.in, tt.ok, err)
		}
		if tt.ok && !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("parseKeyIntMap(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseIntOrHex(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"72", 72, true},
		{"0x48", 0x48, true},
		{"0X49", 0x49, true},
		{"zz", 0, false},
	}
	for _, tt := range tests {
		got, err := parseIntOrHex(tt.in)
		if (err == nil) != tt.ok {
			t.Fatalf("parseIntOrHex(%q) ok=%v err=%v", tt.in, tt.ok, err)
		}
		if tt.ok && got != tt.want {
			t.Fatalf("parseIntOrHex(%q) = %d; want %d", tt.in, got, tt.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Fatalf("defaults changed by Load:\n got: %+v\nwant: %+v", cfg, DefaultConfig())
	}
}

func TestLoadFlagsOverride(t *testing.T) {
	cfg, err := Load([]string{
		"-board", "simulation",
		"-i2c-address", "0x49",
		"-sensors", "water,joystick",
		"-water-interval-ms", "250",
		"-outputs", "console,mqtt",
		"-output-intervals", "mqtt=5000",
		"-mqtt-server", "tcp://broker:1883",
		"-mqtt-topic", "garden/%s",
		"-serial-port", "/dev/ttyACM0",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Board != BoardSimulation || cfg.I2C.Address != 0x49 {
		t.Fatalf("board/address: %+v", cfg)
	}
	if cfg.Temperature.Enabled || cfg.Light.Enabled || !cfg.Water.Enabled || !cfg.Joystick.Enabled {
		t.Fatalf("sensors enabled incorrectly: %+v", cfg)
	}
	if cfg.Water.IntervalMs != 250 {
		t.Fatalf("water interval: %d", cfg.Water.IntervalMs)
	}
	if len(cfg.Outputs) != 3 {
		t.Fatalf("outputs: %+v", cfg.Outputs)
	}
	if cfg.Outputs[0].IntervalMs != 1000 || cfg.Outputs[1].IntervalMs != 5000 {
		t.Fatalf("output intervals: %+v", cfg.Outputs)
	}
	if m := cfg.Outputs[1].MQTT; m == nil || m.Server != "tcp://broker:1883" || m.StateTopic != "garden/%s" {
		t.Fatalf("mqtt output: %+v", cfg.Outputs[1])
	}
	if s := cfg.Outputs[2]; s.Type != "serial" || s.Serial == nil || s.Serial.Port != "/dev/ttyACM0" || s.IntervalMs != 1000 {
		t.Fatalf("serial output: %+v", s)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	bad := [][]string{
		{"-board", "toaster"},
		{"-tick-period-us", "0"},
		{"-sample-rate", "0"},
		{"-sensors", "radar"},
		{"-outputs", "carrier-pigeon"},
		{"-i2c-address", "0xZZ"},
		{"-output-intervals", "console"},
	}
	for _, args := range bad {
		if _, err := Load(args); err == nil {
			t.Fatalf("Load(%v) expected error", args)
		}
	}
}

func TestValidateWaterNeedsPowerPinOnRealBoard(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Water.Enabled = true
	cfg.Water.PowerPin = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error without water power pin")
	}
	cfg.Board = BoardSimulation
	if err := cfg.Validate(); err != nil {
		t.Fatalf("simulation board: %v", err)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	yml := `board: simulation
clock:
  source_hz: 8000000
  period_us: 1000
light:
  enabled: true
  channel: 1
  interval_ms: 200
  max_input: 512
  power_off_threshold: 0.5
outputs:
  - type: serial
    serial:
      port: /dev/ttyUSB0
      baud_rate: 115200
`
	path := filepath.Join(t.TempDir(), "sensorpoll.yaml")
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load([]string{"-config", path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Clock.SourceHz != 8000000 || !cfg.Light.Enabled || cfg.Light.PowerOffThreshold != 0.5 {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if !cfg.Temperature.Enabled {
		t.Fatalf("unset sections should keep defaults")
	}
	if len(cfg.Outputs) != 1 || cfg.Outputs[0].Serial.BaudRate != 115200 || cfg.Outputs[0].IntervalMs != 1000 {
		t.Fatalf("outputs: %+v", cfg.Outputs)
	}
}
