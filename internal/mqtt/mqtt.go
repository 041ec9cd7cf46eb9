// Package mqtt subscribes to rtl_433 WS90 events published on a broker.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/vinthewrench/offgrid-weather-station/internal/bridge"
	"github.com/vinthewrench/offgrid-weather-station/internal/config"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

var errStopped = errors.New("subscriber stopped")

type Subscriber struct {
	client mqtt.Client
	topic  string
	broker string
	logger *slog.Logger

	mu        sync.RWMutex
	connected bool
	handler   func(reading types.RawReading) error

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewSubscriber(cfg config.Config, logger *slog.Logger) *Subscriber {
	s := &Subscriber{
		topic:  cfg.MQTTTopic,
		broker: fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort),
		logger: logger.With("component", "mqtt"),
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.broker)
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// A clean session drops subscriptions, so subscribe on every (re)connect.
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		s.setConnected(true)
		s.logger.Info("mqtt connected", "broker", s.broker)
		if err := s.subscribe(c); err != nil {
			s.logger.Error("mqtt subscribe failed", "topic", s.topic, "error", err)
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.setConnected(false)
		s.logger.Warn("mqtt connection lost", "error", err)
	})

	s.client = mqtt.NewClient(opts)
	return s
}

// SetMessageHandler installs the callback for decoded readings. Set it before
// Connect so messages queued on the broker are not dropped.
func (s *Subscriber) SetMessageHandler(handler func(reading types.RawReading) error) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

// Connect starts the connection and waits for it until ctx is done. The
// client keeps retrying in the background even when Connect gives up.
func (s *Subscriber) Connect(ctx context.Context) error {
	select {
	case <-s.stopCh:
		return errStopped
	default:
	}

	if s.IsConnected() {
		return nil
	}

	token := s.client.Connect()

	const poll = 200 * time.Millisecond
	for !token.WaitTimeout(poll) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			s.client.Disconnect(0)
			return errStopped
		default:
		}
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

func (s *Subscriber) subscribe(c mqtt.Client) error {
	const qos = byte(0)
	token := c.Subscribe(s.topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", s.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.topic, err)
	}
	s.logger.Info("subscribed to mqtt topic", "topic", s.topic, "qos", qos)
	return nil
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	reading, err := bridge.DecodeReading(payload)
	if err != nil {
		s.logger.Warn("failed to parse ws90 event",
			"topic", topic,
			"error", err,
			"size", len(payload),
		)
		return
	}

	if err := validateReading(reading); err != nil {
		s.logger.Debug("ignoring mqtt event", "topic", topic, "model", reading.Model, "reason", err)
		return
	}

	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()
	if handler == nil {
		return
	}

	if err := handler(reading); err != nil {
		s.logger.Error("message handler failed", "topic", topic, "error", err)
	}
}

// validateReading filters events that are not WS90 samples. rtl_433 topics
// often carry every decoded device in range.
func validateReading(r types.RawReading) error {
	if r.Model != "" && !strings.Contains(r.Model, "WS90") {
		return fmt.Errorf("model %q is not a WS90", r.Model)
	}
	if r.RainMM == nil && r.TemperatureC == nil && r.Humidity == nil && r.WindAvgMS == nil {
		return errors.New("no measurements")
	}
	return nil
}

// IsConnected returns whether the client is connected.
func (s *Subscriber) IsConnected() bool {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	return connected && s.client.IsConnected()
}

// Disconnect stops the subscriber. Safe to call more than once.
func (s *Subscriber) Disconnect() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	if s.IsConnected() {
		token := s.client.Unsubscribe(s.topic)
		token.WaitTimeout(2 * time.Second)
	}
	s.client.Disconnect(250)

	s.setConnected(false)
	s.logger.Info("mqtt subscriber disconnected")
}

func (s *Subscriber) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}
