package kismetdb

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// TableSchema declares everything the reader needs to know about one Kismet
// table: the expected columns per schema version, the converters and defaults
// active in each version, and the filter keywords callers may use.
//
// Declarations are plain data. Adding support for a new table means writing a
// new TableSchema, not new query logic:
//
//	func Sessions() kismetdb.TableSchema {
//	    return kismetdb.TableSchema{
//	        Name: "sessions",
//	        ColumnReference: map[int][]string{
//	            5: {"ts_sec", "uuid", "json"},
//	        },
//	        BulkDataField: "json",
//	        Filters: map[string]kismetdb.Filter{
//	            "uuid": {Column: "uuid", Build: kismetdb.MultiStringEq},
//	        },
//	    }
//	}
type TableSchema struct {
	// Name is the SQLite table name.
	Name string

	// BulkDataField is the column excluded from metadata queries. Empty when
	// the table has no bulk payload.
	BulkDataField string

	// FieldDefaults maps a schema version to values substituted for columns
	// that version does not store.
	FieldDefaults map[int]map[string]any

	// ConvertersReference maps a schema version to the converters applied to
	// stored columns.
	ConvertersReference map[int]map[string]Converter

	// ColumnReference maps a schema version to the ordered list of columns
	// expected in the live table.
	ColumnReference map[int][]string

	// Filters maps a filter keyword to its column and predicate builder.
	Filters map[string]Filter
}

// Versions returns the declared schema versions in ascending order.
func (s TableSchema) Versions() []int {
	versions := make([]int, 0, len(s.ColumnReference))
	for v := range s.ColumnReference {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	return versions
}

// FilterNames returns the declared filter keywords in sorted order.
func (s TableSchema) FilterNames() []string {
	return slices.Sorted(maps.Keys(s.Filters))
}

// Validate checks the declaration's internal consistency:
//   - every version in ConvertersReference and FieldDefaults is in ColumnReference
//   - converters only target columns stored in that version
//   - defaults only target columns not stored in that version
//   - the bulk field is stored in every version
//   - every filter has a builder and targets a column stored in every version
//
// Returns an error wrapping ErrInvalidSchema describing the first violation.
func (s TableSchema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: table name is empty", ErrInvalidSchema)
	}
	if len(s.ColumnReference) == 0 {
		return fmt.Errorf("%w: table %q declares no versions", ErrInvalidSchema, s.Name)
	}

	for _, version := range sortedKeys(s.ConvertersReference) {
		columns, ok := s.ColumnReference[version]
		if !ok {
			return fmt.Errorf("%w: table %q has converters for undeclared version %d", ErrInvalidSchema, s.Name, version)
		}
		for column, conv := range s.ConvertersReference[version] {
			if conv == nil {
				return fmt.Errorf("%w: table %q version %d has a nil converter for %q", ErrInvalidSchema, s.Name, version, column)
			}
			if !slices.Contains(columns, column) {
				return fmt.Errorf("%w: table %q version %d converts unknown column %q", ErrInvalidSchema, s.Name, version, column)
			}
		}
	}

	for _, version := range sortedKeys(s.FieldDefaults) {
		columns, ok := s.ColumnReference[version]
		if !ok {
			return fmt.Errorf("%w: table %q has defaults for undeclared version %d", ErrInvalidSchema, s.Name, version)
		}
		for column := range s.FieldDefaults[version] {
			if slices.Contains(columns, column) {
				return fmt.Errorf("%w: table %q version %d defaults stored column %q", ErrInvalidSchema, s.Name, version, column)
			}
		}
	}

	for _, version := range s.Versions() {
		columns := s.ColumnReference[version]
		if len(columns) == 0 {
			return fmt.Errorf("%w: table %q version %d declares no columns", ErrInvalidSchema, s.Name, version)
		}
		if s.BulkDataField != "" && !slices.Contains(columns, s.BulkDataField) {
			return fmt.Errorf("%w: table %q version %d lacks bulk field %q", ErrInvalidSchema, s.Name, version, s.BulkDataField)
		}
		for _, name := range s.FilterNames() {
			f := s.Filters[name]
			if f.Build == nil {
				return fmt.Errorf("%w: table %q filter %q has no builder", ErrInvalidSchema, s.Name, name)
			}
			if !slices.Contains(columns, f.Column) {
				return fmt.Errorf("%w: table %q version %d has no column %q for filter %q", ErrInvalidSchema, s.Name, version, f.Column, name)
			}
		}
	}
	return nil
}

// resolve produces the immutable per-version view a Table works with.
func (s TableSchema) resolve(version int) (versionConfig, error) {
	columns, ok := s.ColumnReference[version]
	if !ok {
		return versionConfig{}, &UnsupportedVersionError{Table: s.Name, Version: version}
	}

	full := slices.Clone(columns)
	meta := make([]string, 0, len(full))
	for _, c := range full {
		if c != s.BulkDataField {
			meta = append(meta, c)
		}
	}

	return versionConfig{
		version:     version,
		fullColumns: full,
		metaColumns: meta,
		converters:  maps.Clone(s.ConvertersReference[version]),
		defaults:    maps.Clone(s.FieldDefaults[version]),
		filters:     maps.Clone(s.Filters),
	}, nil
}

// versionConfig is a TableSchema resolved for one schema version.
type versionConfig struct {
	version     int
	fullColumns []string
	metaColumns []string
	converters  map[string]Converter
	defaults    map[string]any
	filters     map[string]Filter
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
