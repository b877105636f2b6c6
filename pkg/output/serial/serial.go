package serial

import (
	"fmt"
	"io"

	"github.com/ericogr/sensorpoll/pkg/config"
	"github.com/ericogr/sensorpoll/pkg/output"
	"github.com/ericogr/sensorpoll/pkg/sensor"
	goserial "go.bug.st/serial"
)

const DefaultBaudRate = 115200

// SerialOutput writes each reading's text as one newline-terminated line to
// a serial port.
type SerialOutput struct {
	port io.WriteCloser
}

// NewSerial opens the configured port at 8N1.
func NewSerial(cfg config.SerialConfig) (output.Output, error) {
	baud := cfg.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	port, err := goserial.Open(cfg.Port, &goserial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   goserial.NoParity,
		StopBits: goserial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", cfg.Port, err)
	}
	return newWriterOutput(port), nil
}

func newWriterOutput(w io.WriteCloser) *SerialOutput {
	return &SerialOutput{port: w}
}

func (s *SerialOutput) Publish(readings []sensor.Reading) error {
	for _, r := range readings {
		if _, err := s.port.Write([]byte(r.Text + "\n")); err != nil {
			return fmt.Errorf("serial write: %w", err)
		}
	}
	return nil
}

func (s *SerialOutput) Close() error {
	if s.port != nil {
		return s.port.Close()
	}
	return nil
}
