package kismetdb

// Record is one decoded row: column name to value. Converted columns hold
// their decoded form, columns without a converter hold the value as stored,
// and columns the schema version does not store hold their declared default.
type Record map[string]any

// rowDecoder turns scanned rows into Records for one column selection.
type rowDecoder struct {
	table      string
	columns    []string
	converters map[string]Converter
	defaults   map[string]any
}

func newRowDecoder(table string, columns []string, cfg versionConfig) *rowDecoder {
	return &rowDecoder{
		table:      table,
		columns:    columns,
		converters: cfg.converters,
		defaults:   cfg.defaults,
	}
}

// scan reads the current row: rowid first, then the selected columns.
func (d *rowDecoder) scan(rows RowsScanner) (int64, []any, error) {
	var rowID int64
	values := make([]any, len(d.columns))
	dest := make([]any, 0, len(d.columns)+1)
	dest = append(dest, &rowID)
	for i := range values {
		dest = append(dest, &values[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return 0, nil, err
	}
	return rowID, values, nil
}

// decode applies converters to stored values and fills defaults for columns
// the row does not carry. The first converter failure is returned as a
// DecodeError naming the column and the rowid.
func (d *rowDecoder) decode(rowID int64, values []any) (Record, error) {
	rec := make(Record, len(d.columns)+len(d.defaults))
	for i, column := range d.columns {
		value := values[i]
		if conv, ok := d.converters[column]; ok {
			converted, err := conv(value)
			if err != nil {
				return nil, &DecodeError{Table: d.table, Column: column, RowID: rowID, Err: err}
			}
			value = converted
		}
		rec[column] = value
	}
	for column, def := range d.defaults {
		if _, ok := rec[column]; !ok {
			rec[column] = def
		}
	}
	return rec, nil
}
