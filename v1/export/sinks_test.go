package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathanfoster/python-kismet-db/v1/kismetdb"
)

func envelopes() []Envelope {
	return []Envelope{
		{Origin: origin, RowID: 1, Record: kismetdb.Record{"devmac": "AA:AA:AA:AA:AA:01", "strongest_signal": int64(-40)}},
		{Origin: origin, RowID: 2, Record: kismetdb.Record{"devmac": "AA:AA:AA:AA:AA:02", "device": nil}},
	}
}

func traceCarrier(context.Context) map[string]string {
	return map[string]string{"traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"}
}

func TestEnvelope_Key(t *testing.T) {
	env := Envelope{Origin: origin, RowID: 42}
	assert.Equal(t, "Kismet-20240101.kismet:devices:42", env.Key())
}

func TestJSONLSink(t *testing.T) {
	var out bytes.Buffer
	sink := NewJSONLSink(&out)

	require.NoError(t, sink.Write(context.Background(), envelopes()))
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"source":"Kismet-20240101.kismet","table":"devices","version":5,"rowid":1,
		"record":{"devmac":"AA:AA:AA:AA:AA:01","strongest_signal":-40}}`, lines[0])

	assert.ErrorIs(t, sink.Write(context.Background(), envelopes()), ErrSinkClosed)
}

func TestJSONLSink_KeepsExactNumbers(t *testing.T) {
	var out bytes.Buffer
	sink := NewJSONLSink(&out)
	env := Envelope{Origin: origin, RowID: 1, Record: kismetdb.Record{
		"device": map[string]any{"kismet.device.base.packets.total": json.Number("18446744073709551615")},
	}}

	require.NoError(t, sink.Write(context.Background(), []Envelope{env}))
	assert.Contains(t, out.String(), `"kismet.device.base.packets.total":18446744073709551615`)
}

func TestJSONLSink_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := NewJSONLSink(&out).Write(ctx, envelopes())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCreateJSONLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.jsonl")
	sink, err := CreateJSONLFile(path)
	require.NoError(t, err)

	require.NoError(t, sink.Write(context.Background(), envelopes()))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))
}

// fakeWriter captures produced messages.
type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { w.closed = true; return nil }

func TestKafkaSink_Write(t *testing.T) {
	w := &fakeWriter{}
	sink := (&KafkaSink{writer: w, topic: "kismet-records"}).WithCarrier(traceCarrier)

	require.NoError(t, sink.Write(context.Background(), envelopes()))
	require.Len(t, w.msgs, 2)

	msg := w.msgs[1]
	assert.Equal(t, "Kismet-20240101.kismet:devices:2", string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, map[string]string{
		"kismet-table":   "devices",
		"kismet-version": "5",
		"traceparent":    "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	}, headers)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, int64(2), env.RowID)
	assert.Equal(t, "AA:AA:AA:AA:AA:02", env.Record["devmac"])

	require.NoError(t, sink.Close())
	assert.True(t, w.closed)
	assert.ErrorIs(t, sink.Write(context.Background(), envelopes()), ErrSinkClosed)
}

func TestKafkaSink_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	sink := &KafkaSink{writer: w, topic: "kismet-records"}
	assert.EqualError(t, sink.Write(context.Background(), envelopes()), "leader not available")
}

func TestNewKafkaSink(t *testing.T) {
	_, err := NewKafkaSink(KafkaConfig{Topic: "kismet-records"})
	assert.ErrorIs(t, err, ErrMissingConfig)

	cfg := Config{Kafka: KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "kismet-records", CompressionCodec: "zstd"}}.withDefaults()
	sink, err := NewKafkaSink(cfg.Kafka)
	require.NoError(t, err)

	w, ok := sink.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "kismet-records", w.Topic)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.Equal(t, kafka.Zstd, w.Compression)
	assert.Equal(t, DefaultKafkaWriteTimeout, w.WriteTimeout)
	require.NoError(t, sink.Close())
}

// fakePublisher captures published messages.
type fakePublisher struct {
	exchanges []string
	keys      []string
	msgs      []amqp.Publishing
	closed    bool
}

func (p *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.exchanges = append(p.exchanges, exchange)
	p.keys = append(p.keys, key)
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *fakePublisher) Close() error { p.closed = true; return nil }

func TestRabbitSink_Write(t *testing.T) {
	p := &fakePublisher{}
	sink := (&RabbitSink{channel: p, exchange: "kismet"}).WithCarrier(traceCarrier)

	require.NoError(t, sink.Write(context.Background(), envelopes()))
	require.Len(t, p.msgs, 2)
	assert.Equal(t, []string{"kismet", "kismet"}, p.exchanges)
	assert.Equal(t, []string{"kismet.devices", "kismet.devices"}, p.keys)

	msg := p.msgs[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "Kismet-20240101.kismet:devices:1", msg.MessageId)
	assert.WithinDuration(t, time.Now(), msg.Timestamp, time.Minute)
	assert.Equal(t, "devices", msg.Headers["kismet-table"])
	assert.Equal(t, int32(5), msg.Headers["kismet-version"])
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", msg.Headers["traceparent"])
	require.NoError(t, msg.Headers.Validate())

	require.NoError(t, sink.Close())
	assert.True(t, p.closed)
}

func TestRabbitSink_FixedRoutingKey(t *testing.T) {
	p := &fakePublisher{}
	sink := &RabbitSink{channel: p, exchange: "kismet", routingKey: "records"}

	require.NoError(t, sink.Write(context.Background(), envelopes()[:1]))
	assert.Equal(t, []string{"records"}, p.keys)
}

func TestToRows(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	rows, err := toRows(envelopes(), now)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Kismet-20240101.kismet", rows[0].Source)
	assert.Equal(t, "devices", rows[0].SourceTable)
	assert.Equal(t, int64(1), rows[0].RowID)
	assert.Equal(t, 5, rows[0].Version)
	assert.Equal(t, now, rows[0].ExportedAt)
	assert.JSONEq(t, `{"devmac":"AA:AA:AA:AA:AA:01","strongest_signal":-40}`, string(rows[0].Payload))
	assert.Equal(t, "kismet_records", ExportedRecord{}.TableName())
}

func TestNewSink(t *testing.T) {
	var out bytes.Buffer
	sink, err := NewSink(context.Background(), Config{}, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, SinkJSONL, sink.Name())

	_, err = NewSink(context.Background(), Config{}, nil, nil)
	assert.ErrorIs(t, err, ErrMissingConfig)

	_, err = NewSink(context.Background(), Config{Sink: "s3"}, &out, nil)
	assert.ErrorIs(t, err, ErrUnknownSink)

	_, err = NewSink(context.Background(), Config{Sink: SinkRabbit}, nil, nil)
	assert.ErrorIs(t, err, ErrMissingConfig)

	_, err = NewSink(context.Background(), Config{Sink: SinkPostgres}, nil, nil)
	assert.ErrorIs(t, err, ErrMissingConfig)

	sink, err = NewSink(context.Background(), Config{Sink: SinkKafka, Kafka: KafkaConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "kismet-records",
	}}, nil, traceCarrier)
	require.NoError(t, err)
	assert.Equal(t, SinkKafka, sink.Name())
	assert.NotNil(t, sink.(*KafkaSink).carrier)
	require.NoError(t, sink.Close())
}
