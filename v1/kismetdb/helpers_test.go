package kismetdb

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// kismetLog builds a throwaway .kismet file for tests.
type kismetLog struct {
	t    *testing.T
	db   *sql.DB
	path string
}

// newKismetLog creates a log file whose KISMET table records version.
func newKismetLog(t *testing.T, version int) *kismetLog {
	t.Helper()

	path := filepath.Join(t.TempDir(), "Kismet-20240101-10-00-00-1.kismet")
	db, err := sql.Open(sqliteDriverName, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	l := &kismetLog{t: t, db: db, path: path}
	l.exec(`CREATE TABLE KISMET (kismet TEXT, db_version INT, db_module TEXT)`)
	l.exec(`INSERT INTO KISMET (kismet, db_version, db_module) VALUES (?, ?, ?)`, "2023.07.R1", version, "Kismet_2023")
	return l
}

func (l *kismetLog) exec(query string, args ...any) {
	l.t.Helper()
	_, err := l.db.Exec(query, args...)
	require.NoError(l.t, err)
}

// createDevices creates the devices table as Kismet writes it for version.
// Columns listed in omit are left out.
func (l *kismetLog) createDevices(version int, omit ...string) {
	l.t.Helper()

	coordType := "REAL"
	if version == 4 {
		coordType = "INT"
	}
	defs := []string{
		"first_time INT", "last_time INT", "devkey TEXT", "phyname TEXT",
		"devmac TEXT", "strongest_signal INT",
		"min_lat " + coordType, "min_lon " + coordType,
		"max_lat " + coordType, "max_lon " + coordType,
		"avg_lat " + coordType, "avg_lon " + coordType,
		"bytes_data INT", "type TEXT", "device BLOB",
	}
	l.createTable("devices", defs, omit...)
}

// createTable creates table from column definitions, skipping omitted columns.
func (l *kismetLog) createTable(table string, defs []string, omit ...string) {
	l.t.Helper()

	kept := make([]string, 0, len(defs))
	for _, d := range defs {
		name := strings.Fields(d)[0]
		skip := false
		for _, o := range omit {
			if o == name {
				skip = true
			}
		}
		if !skip {
			kept = append(kept, d)
		}
	}
	l.exec(fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(kept, ", ")))
}

type device struct {
	firstTime, lastTime int64
	devkey, phyname     string
	devmac              string
	signal              int64
	lat, lon            any
	bytesData           int64
	devType             string
	blob                []byte
}

func (l *kismetLog) insertDevice(d device) {
	l.t.Helper()
	l.exec(`INSERT INTO devices (first_time, last_time, devkey, phyname, devmac, strongest_signal,
		min_lat, min_lon, max_lat, max_lon, avg_lat, avg_lon, bytes_data, type, device)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.firstTime, d.lastTime, d.devkey, d.phyname, d.devmac, d.signal,
		d.lat, d.lon, d.lat, d.lon, d.lat, d.lon, d.bytesData, d.devType, d.blob)
}

func deviceBlob(mac string, packets int) []byte {
	return []byte(fmt.Sprintf(
		`{"kismet.device.base.macaddr": %q, "kismet.device.base.channel": "6", "kismet.device.base.packets.total": %d}`,
		mac, packets))
}

// seedDevices writes the standard three-device fixture used by the query tests.
//
//	rowid  devmac             phyname     signal  first_time
//	1      AA:AA:AA:AA:AA:01  IEEE802.11  5       1700000000
//	2      AA:AA:AA:AA:AA:02  IEEE802.11  30      1700000100
//	3      BB:BB:BB:BB:BB:03  Bluetooth   60      1700000200
func seedDevices(t *testing.T, version int) *kismetLog {
	t.Helper()

	l := newKismetLog(t, version)
	l.createDevices(version)

	var lat, lon any = 51.5, -0.25
	if version == 4 {
		lat, lon = int64(515000000), int64(-2500000)
	}
	rows := []device{
		{1700000000, 1700000500, "4202770D00000000_01", "IEEE802.11", "AA:AA:AA:AA:AA:01", 5, lat, lon, 100, "Wi-Fi AP", nil},
		{1700000100, 1700000600, "4202770D00000000_02", "IEEE802.11", "AA:AA:AA:AA:AA:02", 30, lat, lon, 2000, "Wi-Fi Client", nil},
		{1700000200, 1700000700, "4202770D00000000_03", "Bluetooth", "BB:BB:BB:BB:BB:03", 60, lat, lon, 0, "BTLE", nil},
	}
	for i, d := range rows {
		d.blob = deviceBlob(d.devmac, (i+1)*10)
		l.insertDevice(d)
	}
	return l
}

func devmacs(recs []Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r["devmac"].(string))
	}
	return out
}
