package events

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/parcelio/fleet-core/internal/mapping"
	log "github.com/sirupsen/logrus"
)

// Topics for fleet lifecycle events.
const (
	TopicTripStatus     = "fleet/trips/status"
	TopicBookingCreated = "fleet/bookings/created"
	TopicBookingCancel  = "fleet/bookings/cancelled"
)

// Publisher emits fleet lifecycle events for downstream consumers.
// Payload keys are normalized to snake_case before leaving the service.
type Publisher interface {
	Publish(topic string, payload map[string]interface{}) error
}

// MQTTPublisher publishes events over an MQTT broker.
type MQTTPublisher struct {
	client mqtt.Client
}

// NewMQTTPublisher connects to the broker and returns a publisher. When no
// broker address is configured it returns a no-op publisher so the service
// runs without a messaging backend.
func NewMQTTPublisher(broker, clientID string) (Publisher, error) {
	if broker == "" {
		return NopPublisher{}, nil
	}
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect error: %w", token.Error())
	}
	return &MQTTPublisher{client: client}, nil
}

// Publish serializes the payload and publishes it at QoS 1.
func (p *MQTTPublisher) Publish(topic string, payload map[string]interface{}) error {
	data, err := json.Marshal(mapping.CamelKeysToSnake(payload))
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	token := p.client.Publish(topic, 1, false, data)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt publish error: %w", token.Error())
	}
	return nil
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

// Publish logs the event at debug level and discards it.
func (NopPublisher) Publish(topic string, payload map[string]interface{}) error {
	log.WithField("topic", topic).Debug("event publisher not configured, dropping event")
	return nil
}
