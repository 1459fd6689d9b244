package export

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// publisher is the part of *amqp.Channel the sink uses.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitSink publishes each envelope as a persistent JSON message.
type RabbitSink struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	channel    publisher
	exchange   string
	routingKey string
	carrier    CarrierFunc
	closed     bool
}

// NewRabbitSink connects to the broker and declares the exchange when
// cfg.ExchangeType is set.
func NewRabbitSink(cfg RabbitConfig) (*RabbitSink, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: rabbit host is required", ErrMissingConfig)
	}

	conn, err := newConnection(cfg)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if cfg.ExchangeType != "" {
		if err := ch.ExchangeDeclare(cfg.ExchangeName, cfg.ExchangeType, true, false, false, false, nil); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to declare exchange %q: %w", cfg.ExchangeName, err)
		}
	}

	return &RabbitSink{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.ExchangeName,
		routingKey: cfg.RoutingKey,
	}, nil
}

func newConnection(cfg RabbitConfig) (*amqp.Connection, error) {
	scheme := "amqp"
	if cfg.IsSSLEnabled {
		scheme = "amqps"
	}
	hostURL := fmt.Sprintf("%s://%v:%v@%v:%v", scheme, cfg.User, cfg.Password, cfg.Host, cfg.Port)
	conn, err := amqp.DialConfig(hostURL, amqp.Config{
		Heartbeat: 2 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbit: %w", err)
	}
	return conn, nil
}

// WithCarrier adds the headers returned by carrier to every message.
func (s *RabbitSink) WithCarrier(carrier CarrierFunc) *RabbitSink {
	s.carrier = carrier
	return s
}

// Name returns "rabbit".
func (s *RabbitSink) Name() string { return SinkRabbit }

// Write publishes the batch one message at a time.
func (s *RabbitSink) Write(ctx context.Context, batch []Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	for _, env := range batch {
		msg, err := s.toPublishing(ctx, env)
		if err != nil {
			return err
		}
		if err := s.channel.PublishWithContext(ctx, s.exchange, s.routingKeyFor(env), false, false, msg); err != nil {
			return fmt.Errorf("publish %s rowid %d: %w", env.Table, env.RowID, err)
		}
	}
	return nil
}

func (s *RabbitSink) routingKeyFor(env Envelope) string {
	if s.routingKey != "" {
		return s.routingKey
	}
	return "kismet." + env.Table
}

func (s *RabbitSink) toPublishing(ctx context.Context, env Envelope) (amqp.Publishing, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode %s rowid %d: %w", env.Table, env.RowID, err)
	}

	headers := amqp.Table{
		"kismet-table":   env.Table,
		"kismet-version": int32(env.Version),
	}
	if s.carrier != nil {
		for k, v := range s.carrier(ctx) {
			headers[k] = v
		}
	}

	return amqp.Publishing{
		Headers:      headers,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.Key(),
		Timestamp:    time.Now(),
		Body:         body,
	}, nil
}

// Close closes the channel and the connection.
func (s *RabbitSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	err := s.channel.Close()
	if s.conn != nil {
		if cerr := s.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
