package mqttlink

import (
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 1000 // milliseconds
	defaultKeepAlive         = 60 * time.Second
	maxQoS                   = 2
)

var (
	ErrConnectionFailed = errors.New("mqtt: connection failed")
	ErrPublishFailed    = errors.New("mqtt: publish failed")
	ErrSubscribeFailed  = errors.New("mqtt: subscribe failed")
	ErrInvalidQoS       = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")
)

// MessageHandler receives the topic (wildcards expanded) and payload of a message.
type MessageHandler func(topic string, payload []byte)

// Broker is the subset of an MQTT client the link needs.
type Broker interface {
	Publish(topic string, payload []byte) error
	Subscribe(topic string, handler MessageHandler) error
	Unsubscribe(topic string) error
}

// BrokerConfig describes how to reach the MQTT broker.
type BrokerConfig struct {
	Host     string
	Port     int
	ClientID string
	Username string
	Password string
	QoS      byte
}

// PahoBroker is a Broker backed by eclipse/paho.mqtt.golang.
type PahoBroker struct {
	client pahomqtt.Client
	qos    byte
}

// ConnectionHooks are called from paho's callback goroutines.
type ConnectionHooks struct {
	// OnConnect runs after every successful connect, including auto-reconnects.
	// The session is clean, so subscriptions must be made again here.
	OnConnect func()
	// OnLost runs whenever the connection drops.
	OnLost func(error)
}

// Dial connects to the broker.
func Dial(cfg BrokerConfig, hooks ConnectionHooks) (*PahoBroker, error) {
	if cfg.QoS > maxQoS {
		return nil, ErrInvalidQoS
	}
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)
	// status pushes must reach subscribers in the order the bridge sent them
	opts.SetOrderMatters(true)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		if hooks.OnConnect != nil {
			hooks.OnConnect()
		}
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		if hooks.OnLost != nil {
			hooks.OnLost(err)
		}
	})

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return &PahoBroker{client: client, qos: cfg.QoS}, nil
}

func (b *PahoBroker) Publish(topic string, payload []byte) error {
	token := b.client.Publish(topic, b.qos, false, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

func (b *PahoBroker) Subscribe(topic string, handler MessageHandler) error {
	token := b.client.Subscribe(topic, b.qos, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	return nil
}

func (b *PahoBroker) Unsubscribe(topic string) error {
	token := b.client.Unsubscribe(topic)
	token.WaitTimeout(defaultPublishTimeout)
	return token.Error()
}

// Close disconnects, letting in-flight publishes finish.
func (b *PahoBroker) Close() {
	b.client.Disconnect(defaultDisconnectQuiesce)
}
