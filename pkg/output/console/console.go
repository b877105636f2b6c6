package console

import (
	"fmt"

	"github.com/ericogr/sensorpoll/pkg/output"
	"github.com/ericogr/sensorpoll/pkg/sensor"
)

type ConsoleOutput struct{}

func NewConsole() output.Output { return &ConsoleOutput{} }

// Publish prints one line of text per reading.
func (c *ConsoleOutput) Publish(readings []sensor.Reading) error {
	for _, r := range readings {
		fmt.Println(r.Text)
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }
