package export

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
)

// JSONLSink writes one JSON object per envelope, newline separated.
type JSONLSink struct {
	mu     sync.Mutex
	w      *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
	closed bool
}

// NewJSONLSink writes to w. Close flushes but leaves w open.
func NewJSONLSink(w io.Writer) *JSONLSink {
	bw := bufio.NewWriter(w)
	return &JSONLSink{w: bw, enc: json.NewEncoder(bw)}
}

// CreateJSONLFile creates (or truncates) path and returns a sink that owns it.
func CreateJSONLFile(path string) (*JSONLSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s := NewJSONLSink(f)
	s.closer = f
	return s, nil
}

// Name returns "jsonl".
func (s *JSONLSink) Name() string { return SinkJSONL }

// Write encodes the batch and flushes it.
func (s *JSONLSink) Write(ctx context.Context, batch []Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	for _, env := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.enc.Encode(env); err != nil {
			return err
		}
	}
	return s.w.Flush()
}

// Close flushes buffered output and closes the file when the sink owns one.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
