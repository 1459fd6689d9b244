package kismetdb

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatIntAsLatLon(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"int64", int64(515000000), 51.5},
		{"negative", int64(-2500000), -0.25},
		{"int", 1234567890, 123.456789},
		{"zero", int64(0), 0},
		{"text", "-1225000000", -122.5},
		{"blob", []byte("375000000"), 37.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatIntAsLatLon(tt.value)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFormatIntAsLatLon_RoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 1.5, -33.8688197, 90, -180, 51.4778} {
		stored := int64(math.Round(deg * LatLonScale))
		got, err := FormatIntAsLatLon(stored)
		require.NoError(t, err)
		assert.InDelta(t, deg, got, 1.0/LatLonScale)
	}
}

func TestFormatIntAsLatLon_Null(t *testing.T) {
	got, err := FormatIntAsLatLon(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFormatIntAsLatLon_Rejects(t *testing.T) {
	_, err := FormatIntAsLatLon("north")
	assert.Error(t, err)

	_, err = FormatIntAsLatLon(true)
	assert.Error(t, err)
}

func TestDeviceFieldParser(t *testing.T) {
	blob := []byte(`{"kismet.device.base.macaddr": "AA:BB:CC:DD:EE:FF",
		"kismet.device.base.signal": {"kismet.common.signal.last_signal": -42},
		"kismet.device.base.packets.total": 18446744073709551615}`)

	got, err := DeviceFieldParser(blob)
	require.NoError(t, err)

	dev, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", dev["kismet.device.base.macaddr"])
	assert.Equal(t, json.Number("18446744073709551615"), dev["kismet.device.base.packets.total"],
		"64-bit counters keep their exact value")

	signal, ok := dev["kismet.device.base.signal"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, json.Number("-42"), signal["kismet.common.signal.last_signal"])
}

func TestDeviceFieldParser_TextColumn(t *testing.T) {
	got, err := DeviceFieldParser(`{"kismet.alert.header": "DEAUTHFLOOD"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"kismet.alert.header": "DEAUTHFLOOD"}, got)
}

func TestDeviceFieldParser_Null(t *testing.T) {
	got, err := DeviceFieldParser(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeviceFieldParser_Rejects(t *testing.T) {
	tests := map[string]any{
		"malformed":     []byte(`{"kismet.device.base.macaddr": `),
		"array":         []byte(`[1, 2, 3]`),
		"json null":     []byte(`null`),
		"trailing data": []byte(`{"a": 1} {"b": 2}`),
		"empty":         []byte(``),
		"integer":       int64(12),
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := DeviceFieldParser(value)
			assert.Error(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestNewStructuredFieldParser_CustomDecoder(t *testing.T) {
	errBad := errors.New("bad record")
	parse := NewStructuredFieldParser(func(data []byte) (map[string]any, error) {
		if string(data) == "bad" {
			return nil, errBad
		}
		return map[string]any{"raw": string(data)}, nil
	})

	got, err := parse([]byte("ok"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"raw": "ok"}, got)

	_, err = parse("bad")
	assert.ErrorIs(t, err, errBad)
}
