package kismetdb

import "context"

// Reader opens tables of Kismet logs. It is implemented by *Client.
//
// Depend on Reader rather than *Client in code that should be testable
// without real log files.
type Reader interface {
	// Open opens schema's table in the log at path.
	Open(ctx context.Context, path string, schema TableSchema, opts ...Option) (*Table, error)

	// OpenTable opens a table declared by this package by name.
	OpenTable(ctx context.Context, path, table string, opts ...Option) (*Table, error)

	// Devices opens the devices table.
	Devices(ctx context.Context, path string, opts ...Option) (*Table, error)

	// DetectVersion reads the schema version recorded in the log.
	DetectVersion(ctx context.Context, path string) (int, error)
}

// TableReader is the read surface of an opened table. It is implemented by *Table.
type TableReader interface {
	Name() string
	Version() int
	FullQueryColumnNames() []string
	MetaQueryColumnNames() []string

	// GetMeta streams matching rows without the bulk data field.
	GetMeta(ctx context.Context, filters Filters, opts ...QueryOption) (*Records, error)

	// GetAll streams matching rows including the bulk data field.
	GetAll(ctx context.Context, filters Filters, opts ...QueryOption) (*Records, error)

	// Count returns the number of matching rows.
	Count(ctx context.Context, filters Filters) (int64, error)

	Close() error
}

var (
	_ Reader      = (*Client)(nil)
	_ TableReader = (*Table)(nil)
)
