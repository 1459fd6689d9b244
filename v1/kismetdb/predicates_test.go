package kismetdb

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestMultiStringEq(t *testing.T) {
	tests := []struct {
		name       string
		value      any
		wantClause string
		wantArgs   []any
	}{
		{
			name:       "single string",
			value:      "AA:BB:CC:DD:EE:FF",
			wantClause: `"devmac" = ?`,
			wantArgs:   []any{"AA:BB:CC:DD:EE:FF"},
		},
		{
			name:       "single element list",
			value:      []string{"AA:BB:CC:DD:EE:FF"},
			wantClause: `"devmac" = ?`,
			wantArgs:   []any{"AA:BB:CC:DD:EE:FF"},
		},
		{
			name:       "string list",
			value:      []string{"a", "b", "c"},
			wantClause: `"devmac" IN (?, ?, ?)`,
			wantArgs:   []any{"a", "b", "c"},
		},
		{
			name:       "decoded JSON list",
			value:      []any{"a", "b"},
			wantClause: `"devmac" IN (?, ?)`,
			wantArgs:   []any{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MultiStringEq("devmac", tt.value)
			if err != nil {
				t.Fatalf("MultiStringEq() error = %v", err)
			}
			if got.Clause != tt.wantClause {
				t.Errorf("Clause = %q, want %q", got.Clause, tt.wantClause)
			}
			if !reflect.DeepEqual(got.Args, tt.wantArgs) {
				t.Errorf("Args = %v, want %v", got.Args, tt.wantArgs)
			}
		})
	}
}

func TestMultiStringEq_Rejects(t *testing.T) {
	for name, value := range map[string]any{
		"empty list":       []string{},
		"empty any list":   []any{},
		"integer":          42,
		"mixed list":       []any{"a", 1},
		"nil":              nil,
		"list of integers": []int{1, 2},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := MultiStringEq("devmac", value)
			if !errors.Is(err, ErrValueCoercion) {
				t.Fatalf("error = %v, want ErrValueCoercion", err)
			}
			var vc *ValueCoercionError
			if !errors.As(err, &vc) || vc.Column != "devmac" {
				t.Errorf("error = %#v, want ValueCoercionError on devmac", err)
			}
		})
	}
}

func TestPredicates_ValuesNeverReachClause(t *testing.T) {
	hostile := []string{
		"x' OR '1'='1",
		`"; DROP TABLE devices; --`,
		"?",
		"1 OR 1=1",
	}
	for _, v := range hostile {
		got, err := MultiStringEq("devmac", v)
		if err != nil {
			t.Fatalf("MultiStringEq(%q) error = %v", v, err)
		}
		if got.Clause != `"devmac" = ?` {
			t.Errorf("Clause for %q = %q", v, got.Clause)
		}
		if got.Args[0] != v {
			t.Errorf("Args[0] = %v, want %q", got.Args[0], v)
		}
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := quoteIdent(`we"ird`); got != `"we""ird"` {
		t.Errorf("quoteIdent() = %s", got)
	}
}

func TestSingleInt(t *testing.T) {
	tests := []struct {
		name  string
		build PredicateBuilder
		value any
		want  Fragment
	}{
		{"int lt", SingleIntLT, 10, Fragment{`"strongest_signal" < ?`, []any{int64(10)}}},
		{"negative gt", SingleIntGT, -70, Fragment{`"strongest_signal" > ?`, []any{int64(-70)}}},
		{"numeric string", SingleIntGT, "10", Fragment{`"strongest_signal" > ?`, []any{int64(10)}}},
		{"padded string", SingleIntGT, " -50 ", Fragment{`"strongest_signal" > ?`, []any{int64(-50)}}},
		{"integral float", SingleIntLT, 50.0, Fragment{`"strongest_signal" < ?`, []any{int64(50)}}},
		{"integral float string", SingleIntLT, "50.0", Fragment{`"strongest_signal" < ?`, []any{int64(50)}}},
		{"json number", SingleIntLT, json.Number("12"), Fragment{`"strongest_signal" < ?`, []any{int64(12)}}},
		{"uint8", SingleIntLT, uint8(7), Fragment{`"strongest_signal" < ?`, []any{int64(7)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.build("strongest_signal", tt.value)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSingleInt_Rejects(t *testing.T) {
	for name, value := range map[string]any{
		"word":            "strong",
		"fraction":        10.5,
		"fraction string": "10.5",
		"nan":             math.NaN(),
		"overflow":        uint64(math.MaxUint64),
		"list":            []int{1},
		"nil":             nil,
		"bool":            true,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := SingleIntGT("bytes_data", value); !errors.Is(err, ErrValueCoercion) {
				t.Errorf("error = %v, want ErrValueCoercion", err)
			}
		})
	}
}

func TestTimestampSecs(t *testing.T) {
	const epoch = int64(1700000000) // 2023-11-14T22:13:20Z
	ts := time.Unix(epoch, 0)

	tests := []struct {
		name  string
		value any
	}{
		{"int", 1700000000},
		{"int64", epoch},
		{"epoch string", "1700000000"},
		{"time", ts},
		{"time pointer", &ts},
		{"time in another zone", ts.In(time.FixedZone("CET", 3600))},
		{"rfc3339", "2023-11-14T22:13:20Z"},
		{"rfc3339 with offset", "2023-11-14T23:13:20+01:00"},
		{"space separated", "2023-11-14 22:13:20"},
		{"T separated without zone", "2023-11-14T22:13:20"},
		{"fractional float", 1700000000.75},
		{"float32", float32(1700000000)},
		{"fractional string", "1700000000.5"},
		{"fractional json number", json.Number("1700000000.25")},
		{"fractional seconds timestamp", "2023-11-14T22:13:20.123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TimestampSecsGT("first_time", tt.value)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			want := Fragment{Clause: `"first_time" > ?`, Args: []any{epoch}}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("got %#v, want %#v", got, want)
			}
		})
	}

	got, err := TimestampSecsLT("last_time", "2023-11-14")
	if err != nil {
		t.Fatalf("date only: %v", err)
	}
	if got.Clause != `"last_time" < ?` || got.Args[0] != int64(1699920000) {
		t.Errorf("date only: got %#v", got)
	}
}

func TestTimestampSecs_Rejects(t *testing.T) {
	var nilTime *time.Time
	for name, value := range map[string]any{
		"garbage":  "yesterday",
		"bad date": "2023-13-45",
		"nil time": nilTime,
		"list":     []string{"2023-11-14"},
		"NaN":      math.NaN(),
		"infinity": math.Inf(1),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := TimestampSecsLT("first_time", value)
			if !errors.Is(err, ErrValueCoercion) {
				t.Fatalf("error = %v, want ErrValueCoercion", err)
			}
			if !strings.Contains(err.Error(), "first_time") {
				t.Errorf("error %q does not name the column", err)
			}
		})
	}
}

func TestFilterFor(t *testing.T) {
	tests := map[string]string{
		"first_time_gt":       "first_time",
		"strongest_signal_lt": "strongest_signal",
		"devmac":              "devmac",
		"ts_sec_lt":           "ts_sec",
	}
	for name, want := range tests {
		if got := filterFor(name, MultiStringEq).Column; got != want {
			t.Errorf("filterFor(%q).Column = %q, want %q", name, got, want)
		}
	}
}

func TestBuildPredicates(t *testing.T) {
	declared := Devices().Filters

	fragments, err := buildPredicates(TableDevices, declared,
		Filters{"phyname": "IEEE802.11", "strongest_signal_gt": -90},
		Filters{"strongest_signal_gt": -60, "devmac": []string{"a", "b"}},
	)
	if err != nil {
		t.Fatalf("buildPredicates() error = %v", err)
	}

	want := []Fragment{
		{`"devmac" IN (?, ?)`, []any{"a", "b"}},
		{`"phyname" = ?`, []any{"IEEE802.11"}},
		{`"strongest_signal" > ?`, []any{int64(-60)}},
	}
	if !reflect.DeepEqual(fragments, want) {
		t.Errorf("fragments = %#v, want %#v", fragments, want)
	}
}

func TestBuildPredicates_UnknownNameReportedBeforeBadValue(t *testing.T) {
	_, err := buildPredicates(TableDevices, Devices().Filters, Filters{
		"bytes_data_gt": "lots",
		"zzz":           1,
	})
	var uf *UnsupportedFilterError
	if !errors.As(err, &uf) || uf.Filter != "zzz" {
		t.Fatalf("error = %v, want UnsupportedFilterError for zzz", err)
	}
}

func TestBuildPredicates_Empty(t *testing.T) {
	fragments, err := buildPredicates(TableDevices, Devices().Filters, nil, Filters{})
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if len(fragments) != 0 {
		t.Errorf("fragments = %v, want none", fragments)
	}
}
