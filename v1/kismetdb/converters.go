package kismetdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// LatLonScale is the fixed-point scale of coordinates stored as integers.
const LatLonScale = 10_000_000

// Converter transforms one stored column value into its decoded form.
// Converters receive nil for SQL NULL.
type Converter func(value any) (any, error)

// StructuredFieldDecoder decodes a structured blob into a nested mapping.
type StructuredFieldDecoder func(data []byte) (map[string]any, error)

// DecodeJSONObject is the default StructuredFieldDecoder. Kismet stores device,
// alert and snapshot records as JSON objects; numbers are kept as json.Number
// so 64-bit counters survive decoding.
func DecodeJSONObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("structured field is not an object")
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after structured field")
	}
	return out, nil
}

// NewStructuredFieldParser returns a Converter that decodes blob or text
// values with decoder. A nil decoder selects DecodeJSONObject.
//
// Example:
//
//	schema := kismetdb.Devices()
//	schema.ConvertersReference[5]["device"] = kismetdb.NewStructuredFieldParser(myDecoder)
func NewStructuredFieldParser(decoder StructuredFieldDecoder) Converter {
	if decoder == nil {
		decoder = DecodeJSONObject
	}
	return func(value any) (any, error) {
		switch v := value.(type) {
		case nil:
			return nil, nil
		case []byte:
			return decoder(v)
		case string:
			return decoder([]byte(v))
		default:
			return nil, fmt.Errorf("structured field has unexpected type %T", value)
		}
	}
}

// DeviceFieldParser decodes a structured device blob into a nested mapping.
// Malformed input fails instead of returning the raw bytes.
func DeviceFieldParser(value any) (any, error) {
	return NewStructuredFieldParser(DecodeJSONObject)(value)
}

// FormatIntAsLatLon converts a fixed-point coordinate into degrees by dividing
// it by LatLonScale. NULL stays nil.
func FormatIntAsLatLon(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case int64:
		return float64(v) / LatLonScale, nil
	case int:
		return float64(v) / LatLonScale, nil
	case int32:
		return float64(v) / LatLonScale, nil
	case float64:
		return v / LatLonScale, nil
	case []byte:
		return FormatIntAsLatLon(string(v))
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("coordinate %q is not an integer", v)
		}
		return float64(n) / LatLonScale, nil
	default:
		return nil, fmt.Errorf("coordinate has unexpected type %T", value)
	}
}
