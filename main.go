package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ericogr/sensorpoll/pkg/clock"
	"github.com/ericogr/sensorpoll/pkg/config"
	"github.com/ericogr/sensorpoll/pkg/output"
	"github.com/ericogr/sensorpoll/pkg/output/console"
	"github.com/ericogr/sensorpoll/pkg/output/mqtt"
	"github.com/ericogr/sensorpoll/pkg/output/serial"
	"github.com/ericogr/sensorpoll/pkg/sampler"
	"periph.io/x/conn/v3/physic"
)

type outputEntry struct {
	Type       string
	IntervalMs int
	Out        output.Output
	gate       sampler.Sampler
}

func main() {
	fmt.Println("starting...")

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	b, err := openBoard(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	p, err := newPoller(cfg, b)
	if err != nil {
		return err
	}

	entries, err := initOutputs(&cfg, cfg.IntervalMs)
	if err != nil {
		return err
	}
	defer func() {
		for _, e := range entries {
			_ = e.Out.Close()
		}
	}()
	p.outputs = entries
	for i := range p.outputs {
		p.outputs[i].gate = sampler.New(msToTicks(p.outputs[i].IntervalMs, cfg.Clock.PeriodUs))
	}

	src := physic.Frequency(cfg.Clock.SourceHz) * physic.Hertz
	timer := clock.NewTickerTimer(src)
	clk := clock.New(&clock.MutexSection{})
	cmp := clk.Init(timer, time.Duration(cfg.Clock.PeriodUs)*time.Microsecond)
	log.Printf("clock: %s, tick every %v", cmp, cmp.Period(src))
	if err := timer.Start(ctx); err != nil {
		return fmt.Errorf("start timer: %w", err)
	}

	delay := time.Duration(cfg.LoopDelayUs) * time.Microsecond
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		p.Step(clk.Now())
		if delay > 0 {
			time.Sleep(delay)
		}
	}
}

// initOutputs builds the configured outputs. Outputs without an interval get
// defaultIntervalMs, written back to cfg.
func initOutputs(cfg *config.Config, defaultIntervalMs int) ([]outputEntry, error) {
	entries := make([]outputEntry, 0, len(cfg.Outputs))
	for i := range cfg.Outputs {
		oc := &cfg.Outputs[i]
		if oc.IntervalMs == 0 {
			oc.IntervalMs = defaultIntervalMs
		}
		var out output.Output
		var err error
		switch strings.ToLower(oc.Type) {
		case "console":
			out = console.NewConsole()
		case "mqtt":
			mc := config.MQTTConfig{}
			if oc.MQTT != nil {
				mc = *oc.MQTT
			}
			out, err = mqtt.NewMQTT(mc, discoverySensors(*cfg))
		case "serial":
			if oc.Serial == nil || oc.Serial.Port == "" {
				err = fmt.Errorf("serial output needs a port")
				break
			}
			out, err = serial.NewSerial(*oc.Serial)
		default:
			err = fmt.Errorf("unknown output type: %s", oc.Type)
		}
		if err != nil {
			for _, e := range entries {
				_ = e.Out.Close()
			}
			return nil, fmt.Errorf("output %s: %w", oc.Type, err)
		}
		entries = append(entries, outputEntry{Type: oc.Type, IntervalMs: oc.IntervalMs, Out: out})
	}
	return entries, nil
}

func discoverySensors(cfg config.Config) []mqtt.Sensor {
	var out []mqtt.Sensor
	if cfg.Temperature.Enabled {
		out = append(out, mqtt.Sensor{Name: "temperature", Unit: "°C"})
	}
	if cfg.Light.Enabled {
		out = append(out, mqtt.Sensor{Name: "light", Unit: "%"})
	}
	if cfg.Water.Enabled {
		out = append(out, mqtt.Sensor{Name: "water", Unit: "%"})
	}
	if cfg.Joystick.Enabled {
		out = append(out, mqtt.Sensor{Name: "joystick"})
	}
	return out
}

// msToTicks converts an interval in milliseconds to clock ticks of periodUs.
func msToTicks(ms, periodUs int) clock.Tick {
	if ms <= 0 {
		return 0
	}
	if periodUs <= 0 {
		periodUs = 1000
	}
	return clock.Tick(int64(ms) * 1000 / int64(periodUs))
}
