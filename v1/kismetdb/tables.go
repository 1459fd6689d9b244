package kismetdb

import (
	"fmt"
	"maps"
	"slices"
)

// Table names of the declarations shipped with this package.
const (
	TableDevices     = "devices"
	TableAlerts      = "alerts"
	TablePackets     = "packets"
	TableDataSources = "datasources"
	TableMessages    = "messages"
	TableSnapshots   = "snapshots"
	TableData        = "data"
)

// Devices declares the devices table. Device details live in the "device"
// blob rather than the "json" column used by the other tables. Version 4
// stores coordinates as fixed-point integers.
//
// Filters:
//   - first_time_lt, first_time_gt, last_time_lt, last_time_gt: timestamps
//   - devkey, phyname, devmac, type: exact match on one or more strings
//   - strongest_signal_lt, strongest_signal_gt, bytes_data_lt, bytes_data_gt: integers
func Devices() TableSchema {
	columns := []string{
		"first_time", "last_time", "devkey", "phyname",
		"devmac", "strongest_signal", "min_lat", "min_lon",
		"max_lat", "max_lon", "avg_lat", "avg_lon",
		"bytes_data", "type", "device",
	}

	v4Converters := map[string]Converter{"device": DeviceFieldParser}
	for _, c := range []string{"min_lat", "min_lon", "max_lat", "max_lon", "avg_lat", "avg_lon"} {
		v4Converters[c] = FormatIntAsLatLon
	}

	return TableSchema{
		Name:          TableDevices,
		BulkDataField: "device",
		FieldDefaults: map[int]map[string]any{4: {}, 5: {}},
		ConvertersReference: map[int]map[string]Converter{
			4: v4Converters,
			5: {"device": DeviceFieldParser},
		},
		ColumnReference: map[int][]string{
			4: slices.Clone(columns),
			5: slices.Clone(columns),
		},
		Filters: filters(map[string]PredicateBuilder{
			"first_time_lt":       TimestampSecsLT,
			"first_time_gt":       TimestampSecsGT,
			"last_time_lt":        TimestampSecsLT,
			"last_time_gt":        TimestampSecsGT,
			"devkey":              MultiStringEq,
			"phyname":             MultiStringEq,
			"devmac":              MultiStringEq,
			"type":                MultiStringEq,
			"strongest_signal_lt": SingleIntLT,
			"strongest_signal_gt": SingleIntGT,
			"bytes_data_lt":       SingleIntLT,
			"bytes_data_gt":       SingleIntGT,
		}),
	}
}

// Alerts declares the alerts table.
func Alerts() TableSchema {
	columns := []string{"ts_sec", "ts_usec", "phyname", "devmac", "lat", "lon", "header", "json"}
	return TableSchema{
		Name:          TableAlerts,
		BulkDataField: "json",
		FieldDefaults: map[int]map[string]any{4: {}, 5: {}},
		ConvertersReference: map[int]map[string]Converter{
			4: {"json": DeviceFieldParser, "lat": FormatIntAsLatLon, "lon": FormatIntAsLatLon},
			5: {"json": DeviceFieldParser},
		},
		ColumnReference: map[int][]string{
			4: slices.Clone(columns),
			5: slices.Clone(columns),
		},
		Filters: filters(map[string]PredicateBuilder{
			"ts_sec_lt": TimestampSecsLT,
			"ts_sec_gt": TimestampSecsGT,
			"phyname":   MultiStringEq,
			"devmac":    MultiStringEq,
			"header":    MultiStringEq,
		}),
	}
}

// Packets declares the packets table. The raw frame in "packet" is the bulk
// field and is never converted. Version 4 lacks the alt, speed and heading
// columns; they default to 0.
func Packets() TableSchema {
	v4 := []string{
		"ts_sec", "ts_usec", "phyname", "sourcemac", "destmac", "transmac",
		"frequency", "devkey", "lat", "lon", "packet_len", "signal",
		"datasource", "dlt", "packet", "error",
	}
	v5 := []string{
		"ts_sec", "ts_usec", "phyname", "sourcemac", "destmac", "transmac",
		"frequency", "devkey", "lat", "lon", "alt", "speed", "heading",
		"packet_len", "signal", "datasource", "dlt", "packet", "error",
	}
	return TableSchema{
		Name:          TablePackets,
		BulkDataField: "packet",
		FieldDefaults: map[int]map[string]any{
			4: {"alt": 0.0, "speed": 0.0, "heading": 0.0},
			5: {},
		},
		ConvertersReference: map[int]map[string]Converter{
			4: {"lat": FormatIntAsLatLon, "lon": FormatIntAsLatLon},
			5: {},
		},
		ColumnReference: map[int][]string{4: v4, 5: v5},
		Filters: filters(map[string]PredicateBuilder{
			"ts_sec_lt":    TimestampSecsLT,
			"ts_sec_gt":    TimestampSecsGT,
			"phyname":      MultiStringEq,
			"sourcemac":    MultiStringEq,
			"destmac":      MultiStringEq,
			"transmac":     MultiStringEq,
			"devkey":       MultiStringEq,
			"datasource":   MultiStringEq,
			"frequency_lt": SingleIntLT,
			"frequency_gt": SingleIntGT,
			"signal_lt":    SingleIntLT,
			"signal_gt":    SingleIntGT,
		}),
	}
}

// DataSources declares the datasources table.
func DataSources() TableSchema {
	columns := []string{"uuid", "typestring", "definition", "name", "interface", "json"}
	return TableSchema{
		Name:          TableDataSources,
		BulkDataField: "json",
		FieldDefaults: map[int]map[string]any{4: {}, 5: {}},
		ConvertersReference: map[int]map[string]Converter{
			4: {"json": DeviceFieldParser},
			5: {"json": DeviceFieldParser},
		},
		ColumnReference: map[int][]string{
			4: slices.Clone(columns),
			5: slices.Clone(columns),
		},
		Filters: filters(map[string]PredicateBuilder{
			"uuid":       MultiStringEq,
			"typestring": MultiStringEq,
			"definition": MultiStringEq,
			"name":       MultiStringEq,
			"interface":  MultiStringEq,
		}),
	}
}

// Messages declares the messages table. It has no bulk field, so metadata
// and full queries select the same columns.
func Messages() TableSchema {
	columns := []string{"ts_sec", "lat", "lon", "msgtype", "message"}
	return TableSchema{
		Name:          TableMessages,
		FieldDefaults: map[int]map[string]any{4: {}, 5: {}},
		ConvertersReference: map[int]map[string]Converter{
			4: {"lat": FormatIntAsLatLon, "lon": FormatIntAsLatLon},
			5: {},
		},
		ColumnReference: map[int][]string{
			4: slices.Clone(columns),
			5: slices.Clone(columns),
		},
		Filters: filters(map[string]PredicateBuilder{
			"ts_sec_lt": TimestampSecsLT,
			"ts_sec_gt": TimestampSecsGT,
			"msgtype":   MultiStringEq,
		}),
	}
}

// Snapshots declares the snapshots table.
func Snapshots() TableSchema {
	columns := []string{"ts_sec", "ts_usec", "lat", "lon", "snaptype", "json"}
	return TableSchema{
		Name:          TableSnapshots,
		BulkDataField: "json",
		FieldDefaults: map[int]map[string]any{4: {}, 5: {}},
		ConvertersReference: map[int]map[string]Converter{
			4: {"json": DeviceFieldParser, "lat": FormatIntAsLatLon, "lon": FormatIntAsLatLon},
			5: {"json": DeviceFieldParser},
		},
		ColumnReference: map[int][]string{
			4: slices.Clone(columns),
			5: slices.Clone(columns),
		},
		Filters: filters(map[string]PredicateBuilder{
			"ts_sec_lt": TimestampSecsLT,
			"ts_sec_gt": TimestampSecsGT,
			"snaptype":  MultiStringEq,
		}),
	}
}

// Data declares the data table of non-packet records.
func Data() TableSchema {
	columns := []string{"ts_sec", "ts_usec", "phyname", "devmac", "lat", "lon", "type", "json"}
	return TableSchema{
		Name:          TableData,
		BulkDataField: "json",
		FieldDefaults: map[int]map[string]any{4: {}, 5: {}},
		ConvertersReference: map[int]map[string]Converter{
			4: {"json": DeviceFieldParser, "lat": FormatIntAsLatLon, "lon": FormatIntAsLatLon},
			5: {"json": DeviceFieldParser},
		},
		ColumnReference: map[int][]string{
			4: slices.Clone(columns),
			5: slices.Clone(columns),
		},
		Filters: filters(map[string]PredicateBuilder{
			"ts_sec_lt": TimestampSecsLT,
			"ts_sec_gt": TimestampSecsGT,
			"phyname":   MultiStringEq,
			"devmac":    MultiStringEq,
			"type":      MultiStringEq,
		}),
	}
}

// Schemas returns a fresh declaration of every table this package knows,
// keyed by table name.
func Schemas() map[string]TableSchema {
	out := make(map[string]TableSchema)
	for _, s := range []TableSchema{Devices(), Alerts(), Packets(), DataSources(), Messages(), Snapshots(), Data()} {
		out[s.Name] = s
	}
	return out
}

// SchemaNames returns the known table names in sorted order.
func SchemaNames() []string {
	return slices.Sorted(maps.Keys(Schemas()))
}

// LookupSchema returns the declaration for table.
func LookupSchema(table string) (TableSchema, error) {
	s, ok := Schemas()[table]
	if !ok {
		return TableSchema{}, fmt.Errorf("%w: no declaration for table %q", ErrInvalidSchema, table)
	}
	return s, nil
}

func filters(builders map[string]PredicateBuilder) map[string]Filter {
	out := make(map[string]Filter, len(builders))
	for name, build := range builders {
		out[name] = filterFor(name, build)
	}
	return out
}
