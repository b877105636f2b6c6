package console

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/ericogr/sensorpoll/pkg/sensor"
)

func captureStdout(f func()) string {
	r, w, _ := os.Pipe()
	stdout := os.Stdout
	os.Stdout = w
	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()
	f()
	_ = w.Close()
	os.Stdout = stdout
	return <-outC
}

func TestConsolePublish(t *testing.T) {
	c := NewConsole()
	readings := []sensor.Reading{
		{Sensor: "temperature", Tick: 500, Text: "Temperature: 24.9C"},
		{Sensor: "joystick", Tick: 508, Text: "512, 498, false"},
	}
	out := captureStdout(func() { _ = c.Publish(readings) })
	want := "Temperature: 24.9C\n512, 498, false\n"
	if out != want {
		t.Fatalf("console output mismatch:\n got: %q\nwant: %q", out, want)
	}
}
