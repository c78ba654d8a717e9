package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTBus publishes call events as JSON over a Paho MQTT client, one
// topic per event type under the configured prefix.
type MQTTBus struct {
	client mqtt.Client
	prefix string
	qos    byte
}

// MQTTOptions configures the MQTT event bus.
type MQTTOptions struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	QoS         byte
}

// NewMQTTBus creates and connects an MQTT event bus.
func NewMQTTBus(opts MQTTOptions) (*MQTTBus, error) {
	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(60 * time.Second)

	client := mqtt.NewClient(clientOpts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", opts.Broker, err)
	}

	return &MQTTBus{
		client: client,
		prefix: opts.TopicPrefix,
		qos:    opts.QoS,
	}, nil
}

func (b *MQTTBus) Publish(_ context.Context, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", eventType, err)
	}
	topic := fmt.Sprintf("%s/events/%s", b.prefix, strings.ToLower(eventType))
	token := b.client.Publish(topic, b.qos, false, data)
	token.Wait()
	return token.Error()
}

func (b *MQTTBus) Close() error {
	b.client.Disconnect(1000)
	return nil
}
