package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/ericogr/sensorpoll/pkg/config"
	"github.com/ericogr/sensorpoll/pkg/output"
	"github.com/ericogr/sensorpoll/pkg/sensor"
)

const (
	// defaults
	DefaultServer     = "tcp://localhost:1883"
	DefaultClientID   = "sensorpoll"
	perSensorTopicFmt = "sensorpoll/%s"
	// discovery payload keys/values
	keyName                = "name"
	keyStateTopic          = "state_topic"
	keyUnitOfMeasurement   = "unit_of_measurement"
	keyDeviceClass         = "device_class"
	keyStateClass          = "state_class"
	keyValueTemplate       = "value_template"
	keyJSONAttributesTopic = "json_attributes_topic"
	keyUniqueID            = "unique_id"
	stateClassMeasurement  = "measurement"
)

// Sensor describes one published sensor for discovery.
type Sensor struct {
	Name string
	Unit string
}

type MQTTOutput struct {
	client         mqtt.Client
	stateTopic     string
	discoveryTopic string
}

// NewMQTT connects to the broker and, when a discovery topic is configured,
// announces every sensor with a retained Home Assistant discovery payload.
func NewMQTT(cfg config.MQTTConfig, sensors []Sensor) (output.Output, error) {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	opts := mqtt.NewClientOptions().AddBroker(cfg.Server).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	return newOutput(client, cfg, sensors), nil
}

// newOutput wraps a connected client and publishes the discovery payloads.
func newOutput(client mqtt.Client, cfg config.MQTTConfig, sensors []Sensor) *MQTTOutput {
	m := &MQTTOutput{client: client, stateTopic: cfg.StateTopic, discoveryTopic: cfg.DiscoveryTopic}
	if m.discoveryTopic != "" {
		for _, s := range sensors {
			dTopic := formatTopic(m.discoveryTopic, s.Name)
			if err := m.publishJSON(dTopic, true, discoveryPayload(cfg, s)); err != nil {
				log.Printf("mqtt discovery publish error: %v", err)
			}
		}
	}
	return m
}

func (m *MQTTOutput) Publish(readings []sensor.Reading) error {
	for _, r := range readings {
		topic := formatStateTopic(m.stateTopic, r.Sensor)
		if err := m.publishJSON(topic, false, statePayload(r)); err != nil {
			return err
		}
	}
	return nil
}

func (m *MQTTOutput) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}

// helper: substitute the sensor name into a topic containing %s
func formatTopic(base, name string) string {
	if strings.Contains(base, "%s") {
		return fmt.Sprintf(base, name)
	}
	return base
}

// helper: state topic for a sensor; an empty base falls back to sensorpoll/<name>
func formatStateTopic(base, name string) string {
	if base == "" {
		return fmt.Sprintf(perSensorTopicFmt, name)
	}
	return formatTopic(base, name)
}

// helper: the JSON state document for one reading
func statePayload(r sensor.Reading) map[string]interface{} {
	payload := make(map[string]interface{}, len(r.Values)+1)
	for k, v := range r.Values {
		payload[k] = v
	}
	payload["tick"] = uint32(r.Tick)
	return payload
}

// helper: the value published as the entity state for a sensor
func primaryValue(name string) string {
	switch name {
	case "temperature":
		return "celsius"
	case "light", "water":
		return "percent"
	case "joystick":
		return "button"
	}
	return "raw"
}

// helper: discovery payload for one sensor
func discoveryPayload(cfg config.MQTTConfig, s Sensor) map[string]interface{} {
	name := cfg.DiscoveryName
	if name == "" {
		name = cfg.ClientID
	}
	name = fmt.Sprintf("%s %s", name, s.Name)
	stateTopic := formatStateTopic(cfg.StateTopic, s.Name)
	payload := map[string]interface{}{
		keyName:                name,
		keyStateTopic:          stateTopic,
		keyValueTemplate:       fmt.Sprintf("{{ value_json.%s }}", primaryValue(s.Name)),
		keyJSONAttributesTopic: stateTopic,
	}
	if s.Unit != "" {
		payload[keyUnitOfMeasurement] = s.Unit
		payload[keyStateClass] = stateClassMeasurement
	}
	if s.Name == "temperature" {
		payload[keyDeviceClass] = "temperature"
	}
	uid := cfg.DiscoveryUniqueID
	if uid == "" {
		uid = cfg.ClientID
	}
	if uid != "" {
		payload[keyUniqueID] = fmt.Sprintf("%s_%s", uid, s.Name)
	}
	return payload
}

// publishJSON marshals payload and publishes it at QoS 0. Discovery payloads
// are retained; state documents are not.
func (m *MQTTOutput) publishJSON(topic string, retained bool, payload map[string]interface{}) error {
	if m.client == nil {
		return fmt.Errorf("mqtt client not connected")
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := m.client.Publish(topic, 0, retained, b)
	token.Wait()
	return token.Error()
}
