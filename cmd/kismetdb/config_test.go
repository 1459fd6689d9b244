package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathanfoster/python-kismet-db/v1/export"
	"github.com/jonathanfoster/python-kismet-db/v1/kismetdb"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "kismetdb", cfg.Logger.ServiceName)
	assert.Equal(t, "kismetdb", cfg.Metrics.Namespace)
	assert.Equal(t, export.SinkJSONL, cfg.Export.Sink)
	assert.Empty(t, cfg.Minio.Connection.Endpoint)
}

func TestLoadConfig_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kismetdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logger:
  level: debug
reader:
  decode_policy: skip
  max_open_conns: 1
minio:
  connection:
    endpoint: localhost:9000
    access_key_id: minio_admin
export:
  sink: kafka
  batch_size: 50
  kafka:
    topic: from-file
`), 0o600))

	t.Setenv("KISMETDB_KAFKA_TOPIC", "kismet-records")
	t.Setenv("KISMETDB_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("KISMETDB_KAFKA_WRITE_TIMEOUT", "5s")
	t.Setenv("KISMETDB_MINIO_SECRET", "minio_admin")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, kismetdb.DecodeSkip, cfg.Reader.DecodePolicy)
	assert.Equal(t, 1, cfg.Reader.MaxOpenConns)
	assert.Equal(t, "localhost:9000", cfg.Minio.Connection.Endpoint)
	assert.Equal(t, "minio_admin", cfg.Minio.Connection.AccessKeyID)
	assert.Equal(t, "minio_admin", cfg.Minio.Connection.SecretAccessKey)
	assert.Equal(t, export.SinkKafka, cfg.Export.Sink)
	assert.Equal(t, 50, cfg.Export.BatchSize)
	assert.Equal(t, "kismet-records", cfg.Export.Kafka.Topic)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Export.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Export.Kafka.WriteTimeout)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParseFilters(t *testing.T) {
	filters, err := parseFilters([]string{
		"phyname=IEEE802.11",
		"devmac=AA:AA:AA:AA:AA:01",
		"devmac=AA:AA:AA:AA:AA:02",
		"strongest_signal_gt=-60",
		"type=",
	})
	require.NoError(t, err)
	assert.Equal(t, kismetdb.Filters{
		"phyname":             "IEEE802.11",
		"devmac":              []string{"AA:AA:AA:AA:AA:01", "AA:AA:AA:AA:AA:02"},
		"strongest_signal_gt": "-60",
		"type":                "",
	}, filters)

	filters, err = parseFilters(nil)
	require.NoError(t, err)
	assert.Nil(t, filters)

	for _, bad := range []string{"phyname", "=IEEE802.11"} {
		_, err := parseFilters([]string{bad})
		assert.Error(t, err, bad)
	}
}
