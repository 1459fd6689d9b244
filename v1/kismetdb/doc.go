// Package kismetdb reads Kismet .kismet log databases and returns filtered,
// decoded records without callers writing SQL.
//
// A Kismet log is a SQLite file with one table per record type (devices,
// packets, alerts, ...) and a KISMET table holding the schema version. The
// column layout and the encoding of some columns differ between schema
// versions; this package hides those differences behind per-table
// declarations.
//
// # Architecture
//
//   - TableSchema: plain-data declaration of one table: expected columns,
//     converters and field defaults per schema version, plus the filter
//     keywords callers may use. Devices(), Packets(), Alerts(), DataSources(),
//     Messages(), Snapshots() and Data() ship with the package.
//   - Predicate builders (MultiStringEq, SingleIntLT/GT, TimestampSecsLT/GT):
//     turn one filter value into a Fragment, a clause with "?" placeholders
//     and its bound arguments. Filter values never end up in SQL text.
//   - Converters (DeviceFieldParser, FormatIntAsLatLon): decode one stored
//     value, e.g. a JSON device blob or a fixed-point coordinate.
//   - Table: one opened table of one log. Open validates the declaration,
//     detects the schema version, checks the live columns and validates
//     filters before any row is read.
//   - Records: lazy, forward-only result. Rows are decoded as they are
//     pulled and the cursor is released on exhaustion, failure, Close, or an
//     early break out of All.
//
// # Metadata and full queries
//
// Most tables carry a bulk column (the device JSON, the raw packet frame).
// GetMeta selects every column except that one; GetAll selects everything.
//
// # Direct Usage (Without FX)
//
//	client := kismetdb.NewClient(kismetdb.Config{}, log)
//
//	devices, err := client.Devices(ctx, "Kismet-20240101-10-00-00-1.kismet")
//	if err != nil {
//	    return err
//	}
//	defer devices.Close()
//
//	recs, err := devices.GetMeta(ctx, kismetdb.Filters{
//	    "phyname":             "IEEE802.11",
//	    "strongest_signal_gt": -70,
//	    "last_time_gt":        "2024-01-01 10:30:00",
//	})
//	if err != nil {
//	    return err
//	}
//	for rec, err := range recs.All() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(rec["devmac"], rec["strongest_signal"])
//	}
//
// # FX Module Integration
//
//	app := fx.New(
//	    logger.FXModule,
//	    kismetdb.FXModule,
//	    fx.Provide(
//	        func() kismetdb.Config { return kismetdb.Config{} },
//	        func(l *logger.Logger) kismetdb.Logger { return l },
//	    ),
//	    fx.Invoke(func(r kismetdb.Reader) { ... }),
//	)
//
// # Decode failures
//
// A converter failure on a row produces a DecodeError naming the table,
// the column and the row's rowid. Under DecodeAbort (the default) iteration
// stops there and Records.Err returns the error. Under DecodeSkip the row is
// logged, reported to the observer, counted in Records.Skipped, and
// iteration continues.
//
// # Errors
//
// Every error wraps one of the package sentinels, so errors.Is works on
// ErrSchemaMismatch, ErrUnsupportedFilter, ErrValueCoercion, ErrDecode,
// ErrUnsupportedVersion, ErrLogNotFound and ErrNotKismetLog, and errors.As
// recovers the typed errors carrying the details. GetErrorCategory groups
// them for callers that only care about the kind of failure.
//
// # Ordering
//
// Rows come back in SQLite's natural order. Use the OrderBy query option
// when order matters.
//
// # Thread Safety
//
// A Table and its Records are meant for one goroutine. Open several tables
// to read concurrently; they share nothing.
package kismetdb
