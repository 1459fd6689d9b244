package kismetdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// Pure-Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"

	"github.com/jonathanfoster/python-kismet-db/v1/observability"
)

// sqliteDriverName is the database/sql driver used for log files.
const sqliteDriverName = "sqlite"

// metadataTable holds the log's schema version in its db_version column.
const metadataTable = "KISMET"

// Logger defines the interface for logging operations in the kismetdb package.
// This interface allows the package to use any logging implementation that
// conforms to these methods.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=kismetdb
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

type noopLogger struct{}

func (noopLogger) Info(string, error, ...map[string]interface{})  {}
func (noopLogger) Debug(string, error, ...map[string]interface{}) {}
func (noopLogger) Warn(string, error, ...map[string]interface{})  {}
func (noopLogger) Error(string, error, ...map[string]interface{}) {}
func (noopLogger) Fatal(string, error, ...map[string]interface{}) {}

// Client opens Kismet log tables with a shared configuration, logger and
// observer. It holds no connections itself: every Table it opens owns its
// own connection to its log file.
type Client struct {
	cfg      Config
	logger   Logger
	observer observability.Observer
}

// NewClient creates a Client.
//
// Parameters:
//   - cfg: Reader configuration; zero values are replaced by defaults
//   - logger: Logger for open and decode events, may be nil
//
// Returns:
//   - *Client: A client ready to open tables
//
// Example:
//
//	client := kismetdb.NewClient(kismetdb.Config{}, log)
//	devices, err := client.Devices(ctx, "Kismet-20240101-00-00-00-1.kismet")
//	if err != nil {
//	    return err
//	}
//	defer devices.Close()
func NewClient(cfg Config, logger Logger) *Client {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Client{cfg: cfg.withDefaults(), logger: logger}
}

// WithObserver attaches an observer notified of every open, query and
// decode failure performed through tables opened by this client.
// It returns the client for chaining.
func (c *Client) WithObserver(observer observability.Observer) *Client {
	c.observer = observer
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Open opens table schema in the log at path. Options given here override
// the client's configuration.
func (c *Client) Open(ctx context.Context, path string, schema TableSchema, opts ...Option) (*Table, error) {
	base := []Option{WithConfig(c.cfg), WithLogger(c.logger), WithObserver(c.observer)}
	return Open(ctx, path, schema, append(base, opts...)...)
}

// OpenTable opens one of the tables declared by this package by name.
func (c *Client) OpenTable(ctx context.Context, path, table string, opts ...Option) (*Table, error) {
	schema, err := LookupSchema(table)
	if err != nil {
		return nil, err
	}
	return c.Open(ctx, path, schema, opts...)
}

// Devices opens the devices table of the log at path.
func (c *Client) Devices(ctx context.Context, path string, opts ...Option) (*Table, error) {
	return c.Open(ctx, path, Devices(), opts...)
}

// DetectVersion reads the schema version recorded in the log at path.
func (c *Client) DetectVersion(ctx context.Context, path string) (int, error) {
	start := time.Now()
	db, err := openStore(path, c.cfg, c.logger)
	if err != nil {
		c.observeOperation("detect_version", path, "", time.Since(start), err, 0, nil)
		return 0, err
	}
	defer closeStore(db)

	version, err := detectVersion(ctx, db)
	c.observeOperation("detect_version", path, "", time.Since(start), err, 0, map[string]interface{}{"version": version})
	return version, err
}

// DetectVersion reads the schema version recorded in the log at path.
func DetectVersion(ctx context.Context, path string) (int, error) {
	return NewClient(Config{}, nil).DetectVersion(ctx, path)
}

// openStore opens the log read-only through gorm.
func openStore(path string, cfg Config, log Logger) (*gorm.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, TranslateError(err)
	}

	dsn, err := readOnlyDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: sqliteDriverName,
		DSN:        dsn,
	}), &gorm.Config{
		Logger:                 newGormLogger(log, cfg.LogQueries),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, TranslateError(fmt.Errorf("open %s: %w", path, err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
	return db, nil
}

// closeStore closes the connection pool behind db.
func closeStore(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// readOnlyDSN builds a SQLite URI filename opening path in read-only mode.
func readOnlyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=ro"}
	return u.String(), nil
}

// detectVersion reads KISMET.db_version.
func detectVersion(ctx context.Context, db *gorm.DB) (int, error) {
	var version int
	err := db.WithContext(ctx).Table(metadataTable).Select("db_version").Limit(1).Row().Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("%w: %s table is empty", ErrNotKismetLog, metadataTable)
	case err != nil:
		translated := TranslateError(err)
		if errors.Is(translated, ErrSchemaMismatch) {
			return 0, fmt.Errorf("%w: %v", ErrNotKismetLog, err)
		}
		return 0, fmt.Errorf("detect schema version: %w", translated)
	}
	return version, nil
}

// liveColumns lists the columns SQLite reports for table, in table order.
func liveColumns(ctx context.Context, db *gorm.DB, table string) ([]string, error) {
	rows, err := db.WithContext(ctx).Raw("SELECT name FROM pragma_table_info(?)", table).Rows()
	if err != nil {
		return nil, TranslateError(err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}
