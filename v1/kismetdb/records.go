package kismetdb

import (
	"errors"
	"iter"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// observeFunc matches Table.observeOperation.
type observeFunc func(operation, subResource string, duration time.Duration, err error, size int64, metadata map[string]interface{})

type recordsParams struct {
	rows      RowsScanner
	decoder   *rowDecoder
	policy    DecodePolicy
	logger    Logger
	operation string
	start     time.Time
	span      trace.Span
	onClose   observeFunc
}

// Records is a forward-only, lazily decoded query result. Only the current
// row is held in memory. The underlying cursor is released when Next returns
// false, when Close is called, or when a range over All stops early.
//
// Usage:
//
//	recs, err := table.GetMeta(ctx, nil)
//	if err != nil {
//	    return err
//	}
//	defer recs.Close()
//	for recs.Next() {
//	    use(recs.Record())
//	}
//	if err := recs.Err(); err != nil {
//	    return err
//	}
//
// Records is not safe for concurrent use.
type Records struct {
	p recordsParams

	current Record
	rowID   int64
	count   int64
	skipped int64
	err     error
	done    bool
}

func newRecords(p recordsParams) *Records {
	return &Records{p: p}
}

// Next advances to the next decodable row. It returns false when the result
// is exhausted, when the cursor fails, or, under DecodeAbort, when a row fails
// to decode; Err tells these apart.
func (r *Records) Next() bool {
	if r.done {
		return false
	}

	for r.p.rows.Next() {
		rowID, values, err := r.p.decoder.scan(r.p.rows)
		if err != nil {
			r.finish(TranslateError(err))
			return false
		}

		rec, err := r.p.decoder.decode(rowID, values)
		if err != nil {
			if r.p.policy == DecodeSkip && IsDecodeError(err) {
				r.skip(err)
				continue
			}
			r.finish(err)
			return false
		}

		r.current = rec
		r.rowID = rowID
		r.count++
		return true
	}

	r.finish(TranslateError(r.p.rows.Err()))
	return false
}

// Record returns the row Next moved to. It is nil before the first call to
// Next and after iteration ends.
func (r *Records) Record() Record {
	return r.current
}

// RowID returns the SQLite rowid of the current row.
func (r *Records) RowID() int64 {
	return r.rowID
}

// Err returns the error that ended iteration, if any.
func (r *Records) Err() error {
	return r.err
}

// Count returns the number of records produced so far.
func (r *Records) Count() int64 {
	return r.count
}

// Skipped returns the number of rows dropped under DecodeSkip.
func (r *Records) Skipped() int64 {
	return r.skipped
}

// Close releases the cursor. It is safe to call at any time and more than once.
func (r *Records) Close() error {
	if r.done {
		return nil
	}
	return r.finish(nil)
}

// All returns an iterator over the remaining records. Iteration stops with a
// non-nil error as its last element when the result ends in failure. The
// cursor is released when the loop ends, including on break.
//
// Example:
//
//	for rec, err := range recs.All() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(rec["devmac"])
//	}
func (r *Records) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		defer r.Close()
		for r.Next() {
			if !yield(r.current, nil) {
				return
			}
		}
		if r.err != nil {
			yield(nil, r.err)
		}
	}
}

// Collect reads every remaining record into memory. On failure it returns
// the records read so far together with the error.
func (r *Records) Collect() ([]Record, error) {
	var out []Record
	for rec, err := range r.All() {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *Records) skip(err error) {
	r.skipped++

	fields := map[string]interface{}{"operation": r.p.operation}
	var de *DecodeError
	if errors.As(err, &de) {
		fields["table"] = de.Table
		fields["column"] = de.Column
		fields["rowid"] = de.RowID
	}
	r.p.logger.Warn("skipping row that failed to decode", err, fields)

	if r.p.span != nil {
		r.p.span.AddEvent("decode_skipped", trace.WithAttributes(attribute.String("error", err.Error())))
	}
	if r.p.onClose != nil {
		r.p.onClose("decode", "", 0, err, 1, fields)
	}
}

// finish closes the cursor once and reports the query.
func (r *Records) finish(err error) error {
	r.done = true
	r.current = nil

	closeErr := r.p.rows.Close()
	if err == nil {
		err = closeErr
	}
	r.err = err

	if r.p.span != nil {
		r.p.span.SetAttributes(
			attribute.Int64("kismetdb.rows", r.count),
			attribute.Int64("kismetdb.skipped", r.skipped),
		)
		if err != nil {
			r.p.span.RecordError(err)
			r.p.span.SetStatus(codes.Error, err.Error())
		}
		r.p.span.End()
	}
	if r.p.onClose != nil {
		r.p.onClose(r.p.operation, "", time.Since(r.p.start), err, r.count, map[string]interface{}{
			"skipped": r.skipped,
		})
	}
	return closeErr
}
