package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	BoardReal       = "real"
	BoardSimulation = "simulation"

	// NoChannel marks an unwired joystick axis.
	NoChannel = -1
)

type MQTTConfig struct {
	Server            string `json:"server" yaml:"server"`
	Username          string `json:"username" yaml:"username"`
	Password          string `json:"password" yaml:"password"`
	ClientID          string `json:"client_id" yaml:"client_id"`
	StateTopic        string `json:"state_topic" yaml:"state_topic"`
	DiscoveryTopic    string `json:"discovery_topic,omitempty" yaml:"discovery_topic,omitempty"`
	DiscoveryName     string `json:"discovery_name,omitempty" yaml:"discovery_name,omitempty"`
	DiscoveryUniqueID string `json:"discovery_unique_id,omitempty" yaml:"discovery_unique_id,omitempty"`
}

type SerialConfig struct {
	Port     string `json:"port" yaml:"port"`
	BaudRate int    `json:"baud_rate" yaml:"baud_rate"`
}

type OutputConfig struct {
	Type       string        `json:"type" yaml:"type"`
	IntervalMs int           `json:"interval_ms,omitempty" yaml:"interval_ms,omitempty"`
	MQTT       *MQTTConfig   `json:"mqtt,omitempty" yaml:"mqtt,omitempty"`
	Serial     *SerialConfig `json:"serial,omitempty" yaml:"serial,omitempty"`
}

type I2CConfig struct {
	Bus     string `json:"bus" yaml:"bus"`
	Address int    `json:"address" yaml:"address"`
}

// ClockConfig describes the timer driving the millisecond clock.
type ClockConfig struct {
	SourceHz int64 `json:"source_hz" yaml:"source_hz"`
	PeriodUs int   `json:"period_us" yaml:"period_us"`
}

type TemperatureConfig struct {
	Enabled    bool `json:"enabled" yaml:"enabled"`
	Channel    int  `json:"channel" yaml:"channel"`
	IntervalMs int  `json:"interval_ms" yaml:"interval_ms"`
	MaxInput   int  `json:"max_input" yaml:"max_input"`
}

type LightConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Channel    int    `json:"channel" yaml:"channel"`
	PowerPin   string `json:"power_pin,omitempty" yaml:"power_pin,omitempty"`
	IntervalMs int    `json:"interval_ms" yaml:"interval_ms"`
	MaxInput   int    `json:"max_input" yaml:"max_input"`
	// PowerOffThreshold switches the divider off once the light fraction
	// exceeds it. Zero disables the policy.
	PowerOffThreshold float64 `json:"power_off_threshold" yaml:"power_off_threshold"`
}

type WaterConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Channel    int    `json:"channel" yaml:"channel"`
	PowerPin   string `json:"power_pin" yaml:"power_pin"`
	IntervalMs int    `json:"interval_ms" yaml:"interval_ms"`
	MaxInput   int    `json:"max_input" yaml:"max_input"`
}

type JoystickConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	XChannel   int    `json:"x_channel" yaml:"x_channel"`
	YChannel   int    `json:"y_channel" yaml:"y_channel"`
	ButtonPin  string `json:"button_pin,omitempty" yaml:"button_pin,omitempty"`
	IntervalMs int    `json:"interval_ms" yaml:"interval_ms"`
	MaxInput   int    `json:"max_input" yaml:"max_input"`
}

type Config struct {
	Board       string            `json:"board" yaml:"board"`
	I2C         I2CConfig         `json:"i2c" yaml:"i2c"`
	SampleRate  int               `json:"sample_rate" yaml:"sample_rate"`
	Clock       ClockConfig       `json:"clock" yaml:"clock"`
	LoopDelayUs int               `json:"loop_delay_us" yaml:"loop_delay_us"`
	Temperature TemperatureConfig `json:"temperature" yaml:"temperature"`
	Light       LightConfig       `json:"light" yaml:"light"`
	Water       WaterConfig       `json:"water" yaml:"water"`
	Joystick    JoystickConfig    `json:"joystick" yaml:"joystick"`
	Outputs     []OutputConfig    `json:"outputs" yaml:"outputs"`
	IntervalMs  int               `json:"interval_ms" yaml:"interval_ms"`
}

func DefaultConfig() Config {
	return Config{
		Board:       BoardReal,
		I2C:         I2CConfig{Bus: "1", Address: 0x48},
		SampleRate:  860,
		Clock:       ClockConfig{SourceHz: 16000000, PeriodUs: 1000},
		LoopDelayUs: 100,
		Temperature: TemperatureConfig{Enabled: true, Channel: 0, IntervalMs: 500, MaxInput: 1023},
		Light:       LightConfig{Channel: 1, PowerPin: "GPIO17", IntervalMs: 500, MaxInput: 512, PowerOffThreshold: 0.3},
		Water:       WaterConfig{Channel: 2, PowerPin: "GPIO27", IntervalMs: 500, MaxInput: 1024},
		Joystick:    JoystickConfig{XChannel: 3, YChannel: NoChannel, ButtonPin: "GPIO22", IntervalMs: 8, MaxInput: 1024},
		Outputs:     []OutputConfig{{Type: "console", IntervalMs: 1000}},
		IntervalMs:  1000,
	}
}

// LoadFromFlags loads configuration from the process arguments.
func LoadFromFlags() (Config, error) {
	return Load(os.Args[1:])
}

// Load reads an optional config file (JSON, or YAML for .yaml/.yml) and then
// applies flags from args. Flags override values present in the file.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("sensorpoll", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to JSON or YAML config file")
	flagBoard := fs.String("board", "", "board kind: real|simulation")
	flagI2CBus := fs.String("i2c-bus", "", "I2C bus (e.g., '1' -> /dev/i2c-1)")
	flagI2CAddStr := fs.String("i2c-address", "", "ADS1115 I2C address (decimal or 0x hex)")
	flagSampleRate := fs.Int("sample-rate", -1, "ADS1115 sample rate (SPS)")
	flagTickPeriod := fs.Int("tick-period-us", -1, "Clock interrupt period in microseconds")
	flagSensors := fs.String("sensors", "", "Comma-separated sensors to enable (temperature,light,water,joystick)")
	flagTempInterval := fs.Int("temperature-interval-ms", -1, "Temperature sample interval in ms")
	flagLightInterval := fs.Int("light-interval-ms", -1, "Light sample interval in ms")
	flagWaterInterval := fs.Int("water-interval-ms", -1, "Water level sample interval in ms")
	flagJoystickInterval := fs.Int("joystick-interval-ms", -1, "Joystick sample interval in ms")
	flagOutputs := fs.String("outputs", "", "Comma-separated outputs (console,mqtt,serial)")
	flagOutputIntervals := fs.String("output-intervals", "", "Comma-separated output intervals e.g. console=1000,mqtt=5000")
	flagMQTTServer := fs.String("mqtt-server", "", "MQTT server (tcp://host:port)")
	flagMQTTUser := fs.String("mqtt-user", "", "MQTT username")
	flagMQTTPass := fs.String("mqtt-pass", "", "MQTT password")
	flagClientID := fs.String("mqtt-client-id", "", "MQTT client id")
	flagTopic := fs.String("mqtt-topic", "", "MQTT state topic, %s is replaced by the sensor name")
	flagSerialPort := fs.String("serial-port", "", "Serial port for the serial output")
	flagSerialBaud := fs.Int("serial-baud", -1, "Serial baud rate")
	flagInterval := fs.Int("interval-ms", -1, "Default publish interval in ms")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()

	if *cfgPath != "" {
		if err := readFile(*cfgPath, &cfg); err != nil {
			return cfg, err
		}
	}

	if *flagBoard != "" {
		cfg.Board = *flagBoard
	}
	if *flagI2CBus != "" {
		cfg.I2C.Bus = *flagI2CBus
	}
	if *flagI2CAddStr != "" {
		v, err := parseIntOrHex(*flagI2CAddStr)
		if err != nil {
			return cfg, fmt.Errorf("i2c-address: %w", err)
		}
		cfg.I2C.Address = v
	}
	if *flagSampleRate != -1 {
		cfg.SampleRate = *flagSampleRate
	}
	if *flagTickPeriod != -1 {
		cfg.Clock.PeriodUs = *flagTickPeriod
	}
	if *flagSensors != "" {
		if err := enableSensors(&cfg, parseCSV(*flagSensors)); err != nil {
			return cfg, err
		}
	}
	if *flagTempInterval != -1 {
		cfg.Temperature.IntervalMs = *flagTempInterval
	}
	if *flagLightInterval != -1 {
		cfg.Light.IntervalMs = *flagLightInterval
	}
	if *flagWaterInterval != -1 {
		cfg.Water.IntervalMs = *flagWaterInterval
	}
	if *flagJoystickInterval != -1 {
		cfg.Joystick.IntervalMs = *flagJoystickInterval
	}
	if *flagInterval != -1 {
		cfg.IntervalMs = *flagInterval
	}
	if *flagOutputs != "" {
		// convert simple CSV of types into structured OutputConfig entries
		parts := parseCSV(*flagOutputs)
		outs := make([]OutputConfig, 0, len(parts))
		for _, p := range parts {
			outs = append(outs, OutputConfig{Type: p, IntervalMs: cfg.IntervalMs})
		}
		cfg.Outputs = outs
	}
	if *flagOutputIntervals != "" {
		outIntervals, err := parseKeyIntMap(*flagOutputIntervals)
		if err != nil {
			return cfg, fmt.Errorf("output-intervals: %w", err)
		}
		for i := range cfg.Outputs {
			if v, ok := outIntervals[cfg.Outputs[i].Type]; ok {
				cfg.Outputs[i].IntervalMs = v
			}
		}
	}
	if *flagMQTTServer != "" || *flagMQTTUser != "" || *flagMQTTPass != "" || *flagClientID != "" || *flagTopic != "" {
		apply := func(m *MQTTConfig) {
			if *flagMQTTServer != "" {
				m.Server = *flagMQTTServer
			}
			if *flagMQTTUser != "" {
				m.Username = *flagMQTTUser
			}
			if *flagMQTTPass != "" {
				m.Password = *flagMQTTPass
			}
			if *flagClientID != "" {
				m.ClientID = *flagClientID
			}
			if *flagTopic != "" {
				m.StateTopic = *flagTopic
			}
		}
		out := outputOfType(&cfg, "mqtt")
		if out.MQTT == nil {
			out.MQTT = &MQTTConfig{}
		}
		apply(out.MQTT)
	}
	if *flagSerialPort != "" || *flagSerialBaud != -1 {
		out := outputOfType(&cfg, "serial")
		if out.Serial == nil {
			out.Serial = &SerialConfig{}
		}
		if *flagSerialPort != "" {
			out.Serial.Port = *flagSerialPort
		}
		if *flagSerialBaud != -1 {
			out.Serial.BaudRate = *flagSerialBaud
		}
	}
	// ensure outputs have interval default
	for i := range cfg.Outputs {
		if cfg.Outputs[i].IntervalMs == 0 {
			cfg.Outputs[i].IntervalMs = cfg.IntervalMs
		}
	}

	return cfg, cfg.Validate()
}

// Validate reports the first configuration error found.
func (c Config) Validate() error {
	switch c.Board {
	case BoardReal, BoardSimulation:
	default:
		return fmt.Errorf("unknown board %q", c.Board)
	}
	if c.SampleRate <= 0 {
		return errors.New("sample-rate must be > 0")
	}
	if c.Clock.PeriodUs <= 0 {
		return errors.New("clock period must be > 0")
	}
	if c.Clock.SourceHz <= 0 {
		return errors.New("clock source frequency must be > 0")
	}
	if c.Temperature.Enabled {
		if err := checkChannel("temperature", c.Temperature.Channel); err != nil {
			return err
		}
	}
	if c.Light.Enabled {
		if err := checkChannel("light", c.Light.Channel); err != nil {
			return err
		}
	}
	if c.Water.Enabled {
		if err := checkChannel("water", c.Water.Channel); err != nil {
			return err
		}
		if c.Board == BoardReal && c.Water.PowerPin == "" {
			return errors.New("water: power_pin is required")
		}
	}
	if c.Joystick.Enabled {
		for _, ch := range []int{c.Joystick.XChannel, c.Joystick.YChannel} {
			if ch == NoChannel {
				continue
			}
			if err := checkChannel("joystick", ch); err != nil {
				return err
			}
		}
	}
	for _, o := range c.Outputs {
		switch strings.ToLower(o.Type) {
		case "console", "mqtt", "serial":
		default:
			return fmt.Errorf("unknown output type: %s", o.Type)
		}
	}
	return nil
}

func checkChannel(sensor string, ch int) error {
	if ch < 0 || ch > 3 {
		return fmt.Errorf("%s: invalid channel %d", sensor, ch)
	}
	return nil
}

func readFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, cfg)
	default:
		err = json.Unmarshal(b, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// outputOfType returns the first output of the given type, appending one if
// none exists.
func outputOfType(cfg *Config, typ string) *OutputConfig {
	for i := range cfg.Outputs {
		if strings.ToLower(cfg.Outputs[i].Type) == typ {
			return &cfg.Outputs[i]
		}
	}
	cfg.Outputs = append(cfg.Outputs, OutputConfig{Type: typ, IntervalMs: cfg.IntervalMs})
	return &cfg.Outputs[len(cfg.Outputs)-1]
}

func enableSensors(cfg *Config, names []string) error {
	cfg.Temperature.Enabled = false
	cfg.Light.Enabled = false
	cfg.Water.Enabled = false
	cfg.Joystick.Enabled = false
	for _, n := range names {
		switch strings.ToLower(n) {
		case "temperature":
			cfg.Temperature.Enabled = true
		case "light":
			cfg.Light.Enabled = true
		case "water":
			cfg.Water.Enabled = true
		case "joystick":
			cfg.Joystick.Enabled = true
		default:
			return fmt.Errorf("unknown sensor %q", n)
		}
	}
	return nil
}

func parseIntOrHex(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 0)
		return int(v), err
	}
	v, err := strconv.Atoi(s)
	return v, err
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parseKeyIntMap parses "a=1,b=2".
func parseKeyIntMap(s string) (map[string]int, error) {
	out := map[string]int{}
	for _, p := range parseCSV(s) {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid entry '%s'", p)
		}
		v, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid value '%s': %w", p, err)
		}
		out[strings.TrimSpace(kv[0])] = v
	}
	return out, nil
}
