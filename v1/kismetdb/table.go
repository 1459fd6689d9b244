package kismetdb

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/jonathanfoster/python-kismet-db/v1/observability"
)

const tracerName = "github.com/jonathanfoster/python-kismet-db/v1/kismetdb"

// Option configures Open.
type Option func(*options)

type options struct {
	version  int
	filters  Filters
	cfg      Config
	logger   Logger
	observer observability.Observer
}

// WithVersion skips detection and reads the table with the given schema version.
func WithVersion(version int) Option {
	return func(o *options) { o.version = version }
}

// WithFilters sets filters applied to every query on the table. They are
// validated when the table is opened; per-query filters with the same name
// replace them.
func WithFilters(filters Filters) Option {
	return func(o *options) { o.filters = maps.Clone(filters) }
}

// WithConfig replaces the reader configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithDecodePolicy overrides the configured decode policy.
func WithDecodePolicy(policy DecodePolicy) Option {
	return func(o *options) { o.cfg.DecodePolicy = policy }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithObserver sets the operation observer.
func WithObserver(observer observability.Observer) Option {
	return func(o *options) { o.observer = observer }
}

// Table reads one table of one Kismet log. It is built once per query
// session, owns its own connection and does not change after Open returns.
// A Table is meant for use by one goroutine at a time.
type Table struct {
	name     string
	path     string
	cfg      versionConfig
	filters  Filters
	policy   DecodePolicy
	db       *gorm.DB
	logger   Logger
	observer observability.Observer
	tracer   trace.Tracer

	mu     sync.RWMutex
	closed bool
}

// Open opens schema's table in the log at path.
//
// Steps, each of which aborts the open and releases the connection on failure:
//  1. the declaration is validated (ErrInvalidSchema)
//  2. every WithFilters keyword must be declared (UnsupportedFilterError) and
//     its value usable (ValueCoercionError); nothing has touched the file yet
//  3. the file is opened read-only (ErrLogNotFound, ErrNotKismetLog)
//  4. the schema version is read from the KISMET table unless WithVersion is given
//  5. the version must be declared (UnsupportedVersionError)
//  6. every expected column must exist in the live table (SchemaMismatchError)
//
// Parameters:
//   - ctx: Context for the version and column lookups
//   - path: Path to the .kismet log file
//   - schema: The table declaration, e.g. Devices()
//   - opts: Optional settings
//
// Returns:
//   - *Table: The opened table; callers must Close it
//   - error: One of the errors listed above
//
// Example:
//
//	devices, err := kismetdb.Open(ctx, path, kismetdb.Devices(),
//	    kismetdb.WithFilters(kismetdb.Filters{"phyname": "IEEE802.11"}))
//	if err != nil {
//	    return err
//	}
//	defer devices.Close()
func Open(ctx context.Context, path string, schema TableSchema, opts ...Option) (*Table, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	o.cfg = o.cfg.withDefaults()
	if o.logger == nil {
		o.logger = noopLogger{}
	}
	if !o.cfg.DecodePolicy.Valid() {
		return nil, fmt.Errorf("%w: unknown decode policy %q", ErrInvalidQueryOption, o.cfg.DecodePolicy)
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "kismetdb.open", trace.WithAttributes(
		attribute.String("kismetdb.table", schema.Name),
		attribute.String("kismetdb.path", path),
	))
	defer span.End()

	start := time.Now()
	t, err := open(ctx, path, schema, o)

	metadata := map[string]interface{}{"path": path}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Error("failed to open kismet table", err, map[string]interface{}{
			"table": schema.Name,
			"path":  path,
		})
	} else {
		span.SetAttributes(attribute.Int("kismetdb.version", t.cfg.version))
		metadata["version"] = t.cfg.version
		o.logger.Debug("opened kismet table", nil, map[string]interface{}{
			"table":   schema.Name,
			"path":    path,
			"version": t.cfg.version,
		})
	}
	if o.observer != nil {
		o.observer.ObserveOperation(observability.OperationContext{
			Component: "kismetdb",
			Operation: "open",
			Resource:  schema.Name,
			Duration:  time.Since(start),
			Error:     err,
			Metadata:  metadata,
		})
	}
	return t, err
}

func open(ctx context.Context, path string, schema TableSchema, o options) (*Table, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if _, err := buildPredicates(schema.Name, schema.Filters, o.filters); err != nil {
		return nil, err
	}

	db, err := openStore(path, o.cfg, o.logger)
	if err != nil {
		return nil, err
	}

	t, err := newTable(ctx, db, path, schema, o)
	if err != nil {
		_ = closeStore(db)
		return nil, err
	}
	return t, nil
}

func newTable(ctx context.Context, db *gorm.DB, path string, schema TableSchema, o options) (*Table, error) {
	version := o.version
	if version == 0 {
		detected, err := detectVersion(ctx, db)
		if err != nil {
			return nil, err
		}
		version = detected
	}

	cfg, err := schema.resolve(version)
	if err != nil {
		return nil, err
	}

	live, err := liveColumns(ctx, db, schema.Name)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, c := range cfg.fullColumns {
		if !slices.Contains(live, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaMismatchError{Table: schema.Name, Version: version, Missing: missing}
	}

	t := &Table{
		name:     schema.Name,
		path:     path,
		cfg:      cfg,
		filters:  o.filters,
		policy:   o.cfg.DecodePolicy,
		db:       db,
		logger:   o.logger,
		observer: o.observer,
		tracer:   otel.Tracer(tracerName),
	}
	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Path returns the log file path.
func (t *Table) Path() string { return t.path }

// Version returns the schema version the table is read with.
func (t *Table) Version() int { return t.cfg.version }

// DecodePolicy returns the policy applied to rows that fail to decode.
func (t *Table) DecodePolicy() DecodePolicy { return t.policy }

// FullQueryColumnNames returns every column selected by GetAll.
func (t *Table) FullQueryColumnNames() []string { return slices.Clone(t.cfg.fullColumns) }

// MetaQueryColumnNames returns the columns selected by GetMeta: every column
// except the bulk data field.
func (t *Table) MetaQueryColumnNames() []string { return slices.Clone(t.cfg.metaColumns) }

// GetMeta streams every matching row without the bulk data field.
//
// Rows come back in the engine's natural order unless OrderBy is given.
// An empty filter set matches every row.
//
// Example:
//
//	recs, err := devices.GetMeta(ctx, kismetdb.Filters{"strongest_signal_gt": -60})
//	if err != nil {
//	    return err
//	}
//	defer recs.Close()
//	for recs.Next() {
//	    fmt.Println(recs.Record()["devmac"])
//	}
//	return recs.Err()
func (t *Table) GetMeta(ctx context.Context, filters Filters, opts ...QueryOption) (*Records, error) {
	return t.run(ctx, "get_meta", t.cfg.metaColumns, filters, opts)
}

// GetAll streams every matching row including the bulk data field.
func (t *Table) GetAll(ctx context.Context, filters Filters, opts ...QueryOption) (*Records, error) {
	return t.run(ctx, "get_all", t.cfg.fullColumns, filters, opts)
}

// Count returns the number of rows matching filters.
func (t *Table) Count(ctx context.Context, filters Filters) (int64, error) {
	start := time.Now()
	if t.isClosed() {
		return 0, ErrClosed
	}

	fragments, err := t.buildPredicates(filters)
	if err != nil {
		return 0, err
	}

	ctx, span := t.tracer.Start(ctx, "kismetdb.count", trace.WithAttributes(attribute.String("kismetdb.table", t.name)))
	defer span.End()

	var n int64
	err = t.query(ctx).Where(fragments...).Count(&n)
	if err != nil {
		err = TranslateError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	t.observeOperation("count", "", time.Since(start), err, n, nil)
	return n, err
}

// Close releases the table's connection. It is safe to call more than once.
// Close any Records obtained from the table first.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return closeStore(t.db)
}

func (t *Table) isClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

// buildPredicates merges the table's filters with extra (extra wins) and
// builds one fragment per filter.
func (t *Table) buildPredicates(extra Filters) ([]Fragment, error) {
	return buildPredicates(t.name, t.cfg.filters, t.filters, extra)
}

// buildPredicates merges filter sets left to right and builds one fragment
// per keyword, in keyword order. Every keyword is checked against declared
// before any builder runs.
func buildPredicates(table string, declared map[string]Filter, sets ...Filters) ([]Fragment, error) {
	merged := Filters{}
	for _, set := range sets {
		maps.Copy(merged, set)
	}

	names := slices.Sorted(maps.Keys(merged))
	for _, name := range names {
		if _, ok := declared[name]; !ok {
			return nil, &UnsupportedFilterError{Table: table, Filter: name}
		}
	}

	fragments := make([]Fragment, 0, len(names))
	for _, name := range names {
		f := declared[name]
		fragment, err := f.Build(f.Column, merged[name])
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, fragment)
	}
	return fragments, nil
}

func (t *Table) run(ctx context.Context, operation string, columns []string, filters Filters, opts []QueryOption) (*Records, error) {
	start := time.Now()
	if t.isClosed() {
		return nil, ErrClosed
	}

	fragments, err := t.buildPredicates(filters)
	if err != nil {
		t.observeOperation(operation, "", time.Since(start), err, 0, nil)
		return nil, err
	}

	qo, err := newQueryOptions(columns, opts)
	if err != nil {
		t.observeOperation(operation, "", time.Since(start), err, 0, nil)
		return nil, err
	}

	ctx, span := t.tracer.Start(ctx, "kismetdb.query", trace.WithAttributes(
		attribute.String("kismetdb.table", t.name),
		attribute.String("kismetdb.operation", operation),
		attribute.Int("kismetdb.filters", len(fragments)),
	))

	rows, err := t.query(ctx).
		Select(columns).
		Where(fragments...).
		Order(qo.orderBy, qo.desc).
		Limit(qo.limit).
		QueryRows()
	if err != nil {
		err = TranslateError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		t.observeOperation(operation, "", time.Since(start), err, 0, nil)
		return nil, err
	}

	return newRecords(recordsParams{
		rows:      rows,
		decoder:   newRowDecoder(t.name, columns, t.cfg),
		policy:    t.policy,
		logger:    t.logger,
		operation: operation,
		start:     start,
		span:      span,
		onClose:   t.observeOperation,
	}), nil
}

// QueryOption adjusts a single GetMeta or GetAll call.
type QueryOption func(*queryOptions)

type queryOptions struct {
	orderBy string
	desc    bool
	limit   int
}

// OrderBy sorts the result by column, which must be one of the selected
// columns.
func OrderBy(column string, desc bool) QueryOption {
	return func(q *queryOptions) {
		q.orderBy = column
		q.desc = desc
	}
}

// Limit caps the number of rows returned. Zero means no limit.
func Limit(n int) QueryOption {
	return func(q *queryOptions) { q.limit = n }
}

func newQueryOptions(columns []string, opts []QueryOption) (queryOptions, error) {
	var q queryOptions
	for _, opt := range opts {
		opt(&q)
	}
	if q.orderBy != "" && !slices.Contains(columns, q.orderBy) {
		return q, fmt.Errorf("%w: cannot order by %q", ErrInvalidQueryOption, q.orderBy)
	}
	if q.limit < 0 {
		return q, fmt.Errorf("%w: negative limit %d", ErrInvalidQueryOption, q.limit)
	}
	return q, nil
}
