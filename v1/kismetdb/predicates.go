package kismetdb

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Fragment is one parameterized comparison clause. Clause never contains a
// caller-supplied value: values are carried in Args in placeholder order.
type Fragment struct {
	Clause string
	Args   []any
}

// PredicateBuilder turns one filter value into a Fragment on column.
type PredicateBuilder func(column string, value any) (Fragment, error)

// Filter binds a filter keyword to the column it constrains and the builder
// that produces its predicate.
type Filter struct {
	Column string
	Build  PredicateBuilder
}

// Filters holds caller-supplied filter keywords and values, e.g.
//
//	kismetdb.Filters{"devmac": []string{"AA:BB:CC:DD:EE:FF"}, "strongest_signal_gt": -60}
type Filters map[string]any

// filterFor derives the constrained column from a keyword by stripping the
// "_lt" or "_gt" suffix, so "first_time_gt" constrains "first_time".
func filterFor(name string, build PredicateBuilder) Filter {
	column := strings.TrimSuffix(strings.TrimSuffix(name, "_lt"), "_gt")
	return Filter{Column: column, Build: build}
}

// MultiStringEq matches column against one string or a set of strings.
// A single candidate produces `"col" = ?`, several produce `"col" IN (?, ?)`.
//
// Accepted values: string, []string, []any whose elements are strings.
func MultiStringEq(column string, value any) (Fragment, error) {
	var candidates []string
	switch v := value.(type) {
	case string:
		candidates = []string{v}
	case []string:
		candidates = v
	case []any:
		candidates = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return Fragment{}, &ValueCoercionError{Column: column, Value: value, Reason: "list elements must be strings"}
			}
			candidates = append(candidates, s)
		}
	default:
		return Fragment{}, &ValueCoercionError{Column: column, Value: value, Reason: "expected a string or a list of strings"}
	}

	if len(candidates) == 0 {
		return Fragment{}, &ValueCoercionError{Column: column, Value: value, Reason: "empty candidate list"}
	}

	args := make([]any, len(candidates))
	for i, c := range candidates {
		args[i] = c
	}
	if len(candidates) == 1 {
		return Fragment{Clause: quoteIdent(column) + " = ?", Args: args}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(candidates)), ", ")
	return Fragment{Clause: fmt.Sprintf("%s IN (%s)", quoteIdent(column), placeholders), Args: args}, nil
}

// SingleIntLT produces `"col" < ?` with the value coerced to int64.
func SingleIntLT(column string, value any) (Fragment, error) {
	return singleInt(column, "<", value)
}

// SingleIntGT produces `"col" > ?` with the value coerced to int64.
func SingleIntGT(column string, value any) (Fragment, error) {
	return singleInt(column, ">", value)
}

// TimestampSecsLT produces `"col" < ?` with the value coerced to epoch seconds.
func TimestampSecsLT(column string, value any) (Fragment, error) {
	return timestampSecs(column, "<", value)
}

// TimestampSecsGT produces `"col" > ?` with the value coerced to epoch seconds.
func TimestampSecsGT(column string, value any) (Fragment, error) {
	return timestampSecs(column, ">", value)
}

func singleInt(column, op string, value any) (Fragment, error) {
	n, err := coerceInt(value)
	if err != nil {
		return Fragment{}, &ValueCoercionError{Column: column, Value: value, Reason: err.Error()}
	}
	return comparison(column, op, n), nil
}

func timestampSecs(column, op string, value any) (Fragment, error) {
	secs, err := coerceEpochSeconds(value)
	if err != nil {
		return Fragment{}, &ValueCoercionError{Column: column, Value: value, Reason: err.Error()}
	}
	return comparison(column, op, secs), nil
}

func comparison(column, op string, arg int64) Fragment {
	return Fragment{Clause: fmt.Sprintf("%s %s ?", quoteIdent(column), op), Args: []any{arg}}
}

func coerceInt(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return uintToInt64(uint64(v))
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return uintToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case float64:
		return floatToInt64(v)
	case json.Number:
		return coerceInt(string(v))
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt64(f)
		}
		return 0, fmt.Errorf("%q is not numeric", v)
	default:
		return 0, fmt.Errorf("unsupported type")
	}
}

func uintToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("value overflows int64")
	}
	return int64(v), nil
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("value overflows int64")
	}
	return int64(f), nil
}

// timestampLayouts are tried in order for string timestamps; layouts without
// a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func coerceEpochSeconds(value any) (int64, error) {
	switch v := value.(type) {
	case time.Time:
		return v.Unix(), nil
	case *time.Time:
		if v == nil {
			return 0, fmt.Errorf("nil time")
		}
		return v.Unix(), nil
	case float32:
		return truncateEpoch(float64(v))
	case float64:
		return truncateEpoch(v)
	case json.Number:
		return coerceEpochSeconds(string(v))
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return truncateEpoch(f)
		}
		for _, layout := range timestampLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t.Unix(), nil
			}
		}
		return 0, fmt.Errorf("%q is not an epoch value or a recognised timestamp", v)
	default:
		return coerceInt(value)
	}
}

// truncateEpoch drops the sub-second part of a fractional epoch value, the
// same way string timestamps with fractional seconds are truncated.
func truncateEpoch(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not a finite epoch value", f)
	}
	return floatToInt64(math.Trunc(f))
}

// quoteIdent double-quotes a SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
