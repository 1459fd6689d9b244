package export

import (
	"context"
	"fmt"
	"io"
)

// NewSink builds the sink cfg.Sink names. out receives JSONL output; carrier,
// when non-nil, adds propagation headers to broker messages.
//
// Parameters:
//   - ctx: Context for connecting and migrating
//   - cfg: Export configuration
//   - out: Destination of the "jsonl" sink
//   - carrier: Optional propagation header source
//
// Returns:
//   - Sink: The configured sink
//   - error: ErrUnknownSink, ErrMissingConfig or a connection error
func NewSink(ctx context.Context, cfg Config, out io.Writer, carrier CarrierFunc) (Sink, error) {
	cfg = cfg.withDefaults()

	switch cfg.Sink {
	case SinkJSONL:
		if out == nil {
			return nil, fmt.Errorf("%w: jsonl sink needs an output", ErrMissingConfig)
		}
		return NewJSONLSink(out), nil
	case SinkKafka:
		s, err := NewKafkaSink(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		return s.WithCarrier(carrier), nil
	case SinkRabbit:
		s, err := NewRabbitSink(cfg.Rabbit)
		if err != nil {
			return nil, err
		}
		return s.WithCarrier(carrier), nil
	case SinkPostgres:
		s, err := NewPostgresSink(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSink, cfg.Sink)
	}
}
