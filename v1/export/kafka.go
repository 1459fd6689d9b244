package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/segmentio/kafka-go"
)

// CarrierFunc returns propagation headers for ctx. (*tracer.Tracer).GetCarrier
// has this shape.
type CarrierFunc func(ctx context.Context) map[string]string

// messageWriter is the part of *kafka.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes each envelope as a JSON message keyed by Envelope.Key,
// so records of one log row always land on the same partition.
type KafkaSink struct {
	mu      sync.Mutex
	writer  messageWriter
	topic   string
	carrier CarrierFunc
	closed  bool
}

// NewKafkaSink creates a producer for cfg.Topic. No connection is made until
// the first Write.
func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, fmt.Errorf("%w: kafka brokers and topic are required", ErrMissingConfig)
	}
	return &KafkaSink{writer: createWriter(cfg), topic: cfg.Topic}, nil
}

// createWriter creates a Kafka writer with the given configuration
func createWriter(cfg KafkaConfig) *kafka.Writer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
	}

	switch cfg.CompressionCodec {
	case "gzip":
		w.Compression = kafka.Gzip
	case "snappy":
		w.Compression = kafka.Snappy
	case "lz4":
		w.Compression = kafka.Lz4
	case "zstd":
		w.Compression = kafka.Zstd
	}
	return w
}

// WithCarrier adds the headers returned by carrier to every message, e.g.
// tracer.GetCarrier for trace propagation.
func (s *KafkaSink) WithCarrier(carrier CarrierFunc) *KafkaSink {
	s.carrier = carrier
	return s
}

// Name returns "kafka".
func (s *KafkaSink) Name() string { return SinkKafka }

// Write produces the batch synchronously.
func (s *KafkaSink) Write(ctx context.Context, batch []Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	msgs, err := s.toMessages(ctx, batch)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, msgs...)
}

func (s *KafkaSink) toMessages(ctx context.Context, batch []Envelope) ([]kafka.Message, error) {
	var headers []kafka.Header
	if s.carrier != nil {
		for k, v := range s.carrier(ctx) {
			headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
		}
	}

	msgs := make([]kafka.Message, 0, len(batch))
	for _, env := range batch {
		body, err := json.Marshal(env)
		if err != nil {
			return nil, fmt.Errorf("encode %s rowid %d: %w", env.Table, env.RowID, err)
		}
		h := append([]kafka.Header{
			{Key: "kismet-table", Value: []byte(env.Table)},
			{Key: "kismet-version", Value: []byte(strconv.Itoa(env.Version))},
		}, headers...)
		msgs = append(msgs, kafka.Message{
			Key:     []byte(env.Key()),
			Value:   body,
			Headers: h,
		})
	}
	return msgs, nil
}

// Close flushes pending messages and closes the writer.
func (s *KafkaSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.writer.Close()
}
