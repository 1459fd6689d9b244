package kismetdb

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Common kismetdb errors
var (
	// ErrSchemaMismatch is returned when the live table columns disagree with the registry.
	ErrSchemaMismatch = errors.New("kismetdb: schema mismatch")

	// ErrUnsupportedFilter is returned when a filter name is not declared for the table.
	ErrUnsupportedFilter = errors.New("kismetdb: unsupported filter")

	// ErrValueCoercion is returned when a filter value cannot be coerced to the builder's type.
	ErrValueCoercion = errors.New("kismetdb: value coercion failed")

	// ErrDecode is returned when a converter fails on a stored value.
	ErrDecode = errors.New("kismetdb: decode failed")

	// ErrUnsupportedVersion is returned when a schema version has no registry entry.
	ErrUnsupportedVersion = errors.New("kismetdb: unsupported schema version")

	// ErrLogNotFound is returned when the log file does not exist.
	ErrLogNotFound = errors.New("kismetdb: log file not found")

	// ErrNotKismetLog is returned when the file is not a SQLite database or lacks
	// the KISMET metadata table.
	ErrNotKismetLog = errors.New("kismetdb: not a kismet log database")

	// ErrInvalidSchema is returned when a table declaration violates its own invariants.
	ErrInvalidSchema = errors.New("kismetdb: invalid table schema")

	// ErrInvalidQueryOption is returned for an ORDER BY column outside the selected set
	// or a negative limit.
	ErrInvalidQueryOption = errors.New("kismetdb: invalid query option")

	// ErrClosed is returned when a closed table is used.
	ErrClosed = errors.New("kismetdb: table is closed")
)

// SchemaMismatchError reports the expected columns a table is missing for a version.
type SchemaMismatchError struct {
	Table   string
	Version int
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("kismetdb: schema mismatch for table %q (version %d): missing columns [%s]",
		e.Table, e.Version, strings.Join(e.Missing, ", "))
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }

// UnsupportedFilterError names a filter keyword that the table does not declare.
type UnsupportedFilterError struct {
	Table  string
	Filter string
}

func (e *UnsupportedFilterError) Error() string {
	return fmt.Sprintf("kismetdb: unsupported filter %q for table %q", e.Filter, e.Table)
}

func (e *UnsupportedFilterError) Unwrap() error { return ErrUnsupportedFilter }

// ValueCoercionError reports a filter value that a predicate builder could not use.
type ValueCoercionError struct {
	Column string
	Value  any
	Reason string
}

func (e *ValueCoercionError) Error() string {
	return fmt.Sprintf("kismetdb: cannot coerce %v (%T) for column %q: %s", e.Value, e.Value, e.Column, e.Reason)
}

func (e *ValueCoercionError) Unwrap() error { return ErrValueCoercion }

// DecodeError is raised when a converter fails on one column of one row.
// RowID is the SQLite rowid of the offending row.
type DecodeError struct {
	Table  string
	Column string
	RowID  int64
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("kismetdb: decode %s.%s (rowid %d): %v", e.Table, e.Column, e.RowID, e.Err)
}

// Unwrap exposes both the sentinel and the converter's own error.
func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// UnsupportedVersionError reports a schema version with no registry entry.
type UnsupportedVersionError struct {
	Table   string
	Version int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("kismetdb: table %q has no declaration for schema version %d", e.Table, e.Version)
}

func (e *UnsupportedVersionError) Unwrap() error { return ErrUnsupportedVersion }

// ErrorCategory groups errors by how a caller is expected to react to them.
type ErrorCategory int

const (
	// CategoryUnknown is used for errors this package does not recognise.
	CategoryUnknown ErrorCategory = iota
	// CategorySchema covers schema mismatches and unsupported versions.
	CategorySchema
	// CategoryInput covers rejected filters, filter values and query options.
	CategoryInput
	// CategoryData covers stored values that failed to decode.
	CategoryData
	// CategoryIO covers missing files, closed tables and engine failures.
	CategoryIO
)

// String returns the lower-case name of the category.
func (c ErrorCategory) String() string {
	switch c {
	case CategorySchema:
		return "schema"
	case CategoryInput:
		return "input"
	case CategoryData:
		return "data"
	case CategoryIO:
		return "io"
	default:
		return "unknown"
	}
}

// GetErrorCategory classifies err.
//
// Example:
//
//	if kismetdb.GetErrorCategory(err) == kismetdb.CategoryInput {
//	    // report a usage error to the caller
//	}
func GetErrorCategory(err error) ErrorCategory {
	switch {
	case err == nil:
		return CategoryUnknown
	case errors.Is(err, ErrSchemaMismatch), errors.Is(err, ErrUnsupportedVersion), errors.Is(err, ErrInvalidSchema):
		return CategorySchema
	case errors.Is(err, ErrUnsupportedFilter), errors.Is(err, ErrValueCoercion), errors.Is(err, ErrInvalidQueryOption):
		return CategoryInput
	case errors.Is(err, ErrDecode):
		return CategoryData
	case errors.Is(err, ErrLogNotFound), errors.Is(err, ErrNotKismetLog), errors.Is(err, ErrClosed):
		return CategoryIO
	default:
		return CategoryUnknown
	}
}

// IsRetryable reports whether retrying the same call could succeed. It is a
// constant classifier: logs are local read-only files, so none of this
// package's errors are transient.
func IsRetryable(_ error) bool {
	return false
}

// IsSchemaMismatch reports whether err is (or wraps) a schema mismatch.
func IsSchemaMismatch(err error) bool {
	return errors.Is(err, ErrSchemaMismatch)
}

// IsDecodeError reports whether err is (or wraps) a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// TranslateError maps errors from the filesystem and the SQLite engine onto
// this package's sentinels. Errors that are already translated, and errors
// it does not recognise, are returned unchanged.
//
// Parameters:
//   - err: The error returned by the driver or the os package
//
// Returns:
//   - error: A wrapped sentinel when the error is recognised, otherwise err
func TranslateError(err error) error {
	if err == nil || GetErrorCategory(err) != CategoryUnknown {
		return err
	}
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrLogNotFound, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "file is not a database"):
		return fmt.Errorf("%w: %v", ErrNotKismetLog, err)
	case strings.Contains(msg, "unable to open database file"):
		return fmt.Errorf("%w: %v", ErrLogNotFound, err)
	case strings.Contains(msg, "no such table"),
		strings.Contains(msg, "no such column"):
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return err
}
