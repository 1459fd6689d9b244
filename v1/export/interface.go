package export

import (
	"context"

	"github.com/jonathanfoster/python-kismet-db/v1/kismetdb"
)

// Sink receives batches of envelopes. Implementations must be safe for
// concurrent use: several exports may share one sink.
type Sink interface {
	// Name is the sink kind, e.g. "kafka".
	Name() string

	// Write delivers one batch. A batch is either fully accepted or the
	// error says otherwise.
	Write(ctx context.Context, batch []Envelope) error

	// Close flushes and releases the sink.
	Close() error
}

// Source is the iterator an Exporter drains. *kismetdb.Records implements it.
type Source interface {
	Next() bool
	Record() kismetdb.Record
	RowID() int64
	Skipped() int64
	Err() error
	Close() error
}

var _ Source = (*kismetdb.Records)(nil)

var (
	_ Sink = (*JSONLSink)(nil)
	_ Sink = (*KafkaSink)(nil)
	_ Sink = (*RabbitSink)(nil)
	_ Sink = (*PostgresSink)(nil)
)
