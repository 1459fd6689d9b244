package main

import (
	"context"
	"fmt"

	"github.com/jonathanfoster/python-kismet-db/v1/export"
	"github.com/jonathanfoster/python-kismet-db/v1/kismetdb"
)

// tableFlags are the flags shared by commands reading a table.
type tableFlags struct {
	version int
	filters []string
	meta    bool
}

// openedTable is a table opened from a local or fetched log.
type openedTable struct {
	*kismetdb.Table
	origin  export.Origin
	release func() error
}

// Close closes the table and removes a fetched copy of the log.
func (t *openedTable) Close() error {
	err := t.Table.Close()
	if rerr := t.release(); err == nil {
		err = rerr
	}
	return err
}

func openTable(ctx context.Context, svc services, ref, name string, version int) (*openedTable, error) {
	path, cleanup, err := svc.Fetcher.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	var opts []kismetdb.Option
	if version > 0 {
		opts = append(opts, kismetdb.WithVersion(version))
	}
	table, err := svc.Reader.OpenTable(ctx, path, name, opts...)
	if err != nil {
		_ = cleanup()
		return nil, fmt.Errorf("%s: %w", ref, err)
	}

	return &openedTable{
		Table:   table,
		origin:  export.Origin{Source: ref, Table: table.Name(), Version: table.Version()},
		release: cleanup,
	}, nil
}

// read starts the query selected by the flags.
func (f tableFlags) read(ctx context.Context, t *openedTable, filters kismetdb.Filters, opts ...kismetdb.QueryOption) (*kismetdb.Records, error) {
	if f.meta {
		return t.GetMeta(ctx, filters, opts...)
	}
	return t.GetAll(ctx, filters, opts...)
}
