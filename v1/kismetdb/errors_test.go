package kismetdb

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypes_UnwrapToSentinels(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")

	tests := []struct {
		name     string
		err      error
		sentinel error
		category ErrorCategory
	}{
		{"schema mismatch", &SchemaMismatchError{Table: "devices", Version: 5, Missing: []string{"type"}}, ErrSchemaMismatch, CategorySchema},
		{"unsupported filter", &UnsupportedFilterError{Table: "devices", Filter: "ssid"}, ErrUnsupportedFilter, CategoryInput},
		{"value coercion", &ValueCoercionError{Column: "bytes_data", Value: "x", Reason: "not numeric"}, ErrValueCoercion, CategoryInput},
		{"decode", &DecodeError{Table: "devices", Column: "device", RowID: 9, Err: cause}, ErrDecode, CategoryData},
		{"unsupported version", &UnsupportedVersionError{Table: "devices", Version: 3}, ErrUnsupportedVersion, CategorySchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("reading log: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.category, GetErrorCategory(wrapped))
			assert.False(t, IsRetryable(wrapped))
		})
	}
}

func TestDecodeError_KeepsCause(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := error(&DecodeError{Table: "devices", Column: "device", RowID: 9, Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsDecodeError(err))
	assert.Contains(t, err.Error(), "devices.device")
	assert.Contains(t, err.Error(), "rowid 9")
}

func TestSchemaMismatchError_Message(t *testing.T) {
	err := &SchemaMismatchError{Table: "devices", Version: 4, Missing: []string{"bytes_data", "type"}}
	assert.Equal(t, `kismetdb: schema mismatch for table "devices" (version 4): missing columns [bytes_data, type]`, err.Error())
	assert.True(t, IsSchemaMismatch(err))
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"missing file", &fs.PathError{Op: "stat", Path: "x.kismet", Err: fs.ErrNotExist}, ErrLogNotFound},
		{"not a database", errors.New("file is not a database (26)"), ErrNotKismetLog},
		{"cannot open", errors.New("unable to open database file: no such file or directory (14)"), ErrLogNotFound},
		{"missing table", errors.New("SQL logic error: no such table: devices (1)"), ErrSchemaMismatch},
		{"missing column", errors.New("SQL logic error: no such column: alt (1)"), ErrSchemaMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateError(tt.in)
			require.Error(t, got)
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestTranslateError_PassThrough(t *testing.T) {
	assert.NoError(t, TranslateError(nil))

	other := errors.New("disk I/O error")
	assert.Same(t, other, TranslateError(other))

	already := &UnsupportedFilterError{Table: "devices", Filter: "no such table"}
	assert.Same(t, already, TranslateError(already))
}

func TestErrorCategory_String(t *testing.T) {
	assert.Equal(t, "schema", CategorySchema.String())
	assert.Equal(t, "input", CategoryInput.String())
	assert.Equal(t, "data", CategoryData.String())
	assert.Equal(t, "io", CategoryIO.String())
	assert.Equal(t, "unknown", CategoryUnknown.String())
	assert.Equal(t, CategoryUnknown, GetErrorCategory(nil))
}
