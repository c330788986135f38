package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/segmentio/kafka-go"

	"eaisdo/config"
	"eaisdo/log"
)

const (
	BackendNone  = "none"
	BackendKafka = "kafka"
	BackendMQTT  = "mqtt"
)

var ErrNotConnected = errors.New("messaging: not connected")

const publishTimeout = 5 * time.Second

// Client publishes console notifications to Kafka or MQTT. With the "none"
// backend every publish is dropped silently.
type Client struct {
	mu     sync.RWMutex
	cfg    config.MessagingConfig
	writer *kafka.Writer
	mqtt   mqtt.Client
	up     bool
}

func NewClient(cfg *config.MessagingConfig) *Client {
	return &Client{cfg: *cfg}
}

func (c *Client) Backend() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cfg.Backend == "" {
		return BackendNone
	}
	return c.cfg.Backend
}

// Connect opens the configured backend.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	switch c.cfg.Backend {
	case "", BackendNone:
		return nil
	case BackendKafka:
		if len(c.cfg.Kafka.Brokers) == 0 {
			return fmt.Errorf("messaging: kafka has no brokers")
		}
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		conn, err := kafka.DialContext(ctx, "tcp", c.cfg.Kafka.Brokers[0])
		if err != nil {
			return fmt.Errorf("messaging: kafka dial: %w", err)
		}
		conn.Close()
		c.writer = &kafka.Writer{
			Addr:                   kafka.TCP(c.cfg.Kafka.Brokers...),
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		}
		c.up = true
		return nil
	case BackendMQTT:
		opts := mqtt.NewClientOptions().
			AddBroker(c.cfg.MQTT.Broker).
			SetClientID(c.cfg.MQTT.ClientID).
			SetAutoReconnect(true).
			SetConnectTimeout(publishTimeout)
		if c.cfg.MQTT.Username != "" {
			opts.SetUsername(c.cfg.MQTT.Username)
			opts.SetPassword(c.cfg.MQTT.Password)
		}
		client := mqtt.NewClient(opts)
		tok := client.Connect()
		if !tok.WaitTimeout(publishTimeout) {
			return fmt.Errorf("messaging: mqtt connect timed out")
		}
		if err := tok.Error(); err != nil {
			return fmt.Errorf("messaging: mqtt connect: %w", err)
		}
		c.mqtt = client
		c.up = true
		return nil
	default:
		return fmt.Errorf("messaging: unsupported backend: %s", c.cfg.Backend)
	}
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch c.cfg.Backend {
	case BackendMQTT:
		return c.mqtt != nil && c.mqtt.IsConnected()
	case BackendKafka:
		return c.up
	default:
		return false
	}
}

// Publish sends data to topic on the configured backend.
func (c *Client) Publish(topic string, data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch c.cfg.Backend {
	case "", BackendNone:
		return nil
	case BackendKafka:
		if c.writer == nil {
			return ErrNotConnected
		}
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		return c.writer.WriteMessages(ctx, kafka.Message{Topic: topic, Value: data})
	case BackendMQTT:
		if c.mqtt == nil {
			return ErrNotConnected
		}
		tok := c.mqtt.Publish(topic, 1, false, data)
		if !tok.WaitTimeout(publishTimeout) {
			return fmt.Errorf("messaging: mqtt publish to %s timed out", topic)
		}
		return tok.Error()
	default:
		return fmt.Errorf("messaging: unsupported backend: %s", c.cfg.Backend)
	}
}

// Reconfigure closes the current backend and connects with cfg.
func (c *Client) Reconfigure(cfg *config.MessagingConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	c.cfg = *cfg
	return c.connectLocked()
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.writer != nil {
		if err := c.writer.Close(); err != nil {
			log.Warn().Err(err).Msg("messaging: close kafka writer")
		}
		c.writer = nil
	}
	if c.mqtt != nil {
		c.mqtt.Disconnect(250)
		c.mqtt = nil
	}
	c.up = false
}
