package export

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathanfoster/python-kismet-db/v1/observability"
)

// Logger defines the logging surface used by the export package.
//
//go:generate mockgen -source=exporter.go -destination=mock_logger.go -package=export
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Stats summarises one Export call.
type Stats struct {
	Written int64
	Skipped int64
	Batches int
}

// Exporter drains record iterators into a Sink in fixed-size batches.
type Exporter struct {
	sink      Sink
	batchSize int
	logger    Logger
	observer  observability.Observer
}

// NewExporter creates an Exporter writing to sink.
func NewExporter(sink Sink, cfg Config) *Exporter {
	cfg = cfg.withDefaults()
	return &Exporter{sink: sink, batchSize: cfg.BatchSize}
}

// WithLogger attaches a logger and returns the exporter for chaining.
func (e *Exporter) WithLogger(logger Logger) *Exporter {
	e.logger = logger
	return e
}

// WithObserver attaches an observer notified once per written batch.
func (e *Exporter) WithObserver(observer observability.Observer) *Exporter {
	e.observer = observer
	return e
}

// Sink returns the destination.
func (e *Exporter) Sink() Sink {
	return e.sink
}

// Export drains src into the sink and closes src. Rows the source skipped
// under the skip decode policy are counted, not written. The first sink or
// iteration error stops the export; Stats reflects what was written until
// then.
//
// Example:
//
//	recs, err := devices.GetAll(ctx, kismetdb.Filters{"phyname": "IEEE802.11"})
//	if err != nil {
//	    return err
//	}
//	stats, err := exporter.Export(ctx, export.Origin{
//	    Source:  devices.Path(),
//	    Table:   devices.Name(),
//	    Version: devices.Version(),
//	}, recs)
func (e *Exporter) Export(ctx context.Context, origin Origin, src Source) (stats Stats, err error) {
	defer func() {
		if cerr := src.Close(); err == nil && cerr != nil {
			err = cerr
		}
		stats.Skipped = src.Skipped()
	}()

	batch := make([]Envelope, 0, e.batchSize)
	for src.Next() {
		batch = append(batch, Envelope{Origin: origin, RowID: src.RowID(), Record: src.Record()})
		if len(batch) < e.batchSize {
			continue
		}
		if err := e.flush(ctx, origin, batch, &stats); err != nil {
			return stats, err
		}
		batch = batch[:0]
	}
	if err := src.Err(); err != nil {
		return stats, fmt.Errorf("reading %s: %w", origin.Table, err)
	}
	if len(batch) > 0 {
		if err := e.flush(ctx, origin, batch, &stats); err != nil {
			return stats, err
		}
	}

	e.logInfo("export finished", map[string]interface{}{
		"sink":    e.sink.Name(),
		"source":  origin.Source,
		"table":   origin.Table,
		"written": stats.Written,
		"skipped": src.Skipped(),
	})
	return stats, nil
}

func (e *Exporter) flush(ctx context.Context, origin Origin, batch []Envelope, stats *Stats) error {
	start := time.Now()
	err := e.sink.Write(ctx, batch)
	e.observeOperation("write", origin.Table, e.sink.Name(), time.Since(start), err, int64(len(batch)), map[string]interface{}{
		"source": origin.Source,
	})
	if err != nil {
		e.logError("sink write failed", err, map[string]interface{}{
			"sink":  e.sink.Name(),
			"table": origin.Table,
			"batch": len(batch),
		})
		return fmt.Errorf("%s sink: %w", e.sink.Name(), err)
	}

	stats.Written += int64(len(batch))
	stats.Batches++
	e.logDebug("batch written", map[string]interface{}{
		"sink":  e.sink.Name(),
		"table": origin.Table,
		"size":  len(batch),
	})
	return nil
}

func (e *Exporter) logInfo(msg string, fields map[string]interface{}) {
	if e.logger != nil {
		e.logger.Info(msg, nil, fields)
	}
}

func (e *Exporter) logDebug(msg string, fields map[string]interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, nil, fields)
	}
}

func (e *Exporter) logError(msg string, err error, fields map[string]interface{}) {
	if e.logger != nil {
		e.logger.Error(msg, err, fields)
	}
}
