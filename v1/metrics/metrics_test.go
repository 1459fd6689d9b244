package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/jonathanfoster/python-kismet-db/v1/logger"
	"github.com/jonathanfoster/python-kismet-db/v1/observability"
)

func TestObserveOperation(t *testing.T) {
	m := NewMetrics(Config{Namespace: "kismetdb", ServiceName: "test"})

	m.ObserveOperation(observability.OperationContext{
		Component: "kismetdb", Operation: "get_meta", Resource: "devices",
		Duration: 20 * time.Millisecond, Size: 3,
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "kismetdb", Operation: "get_meta", Resource: "devices",
		Duration: 5 * time.Millisecond, Size: 2,
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "kismetdb", Operation: "open", Resource: "devices",
		Error: errors.New("kismetdb: log file not found"),
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("kismetdb", "get_meta", "devices", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("kismetdb", "open", "devices", "error")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.itemsTotal.WithLabelValues("kismetdb", "get_meta", "devices")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.operationDuration))
	assert.Greater(t, testutil.ToFloat64(m.lastSuccess.WithLabelValues("kismetdb", "get_meta", "devices")), 0.0)
}

func TestNewMetrics_ServiceLabelAndNamespace(t *testing.T) {
	m := NewMetrics(Config{Namespace: "kismetdb", ServiceName: "reader"})
	m.ObserveOperation(observability.OperationContext{Component: "export", Operation: "export", Resource: "devices", Size: 4})

	expected := `
# HELP kismetdb_items_total Items produced by operations: records read, rows skipped, records exported
# TYPE kismetdb_items_total counter
kismetdb_items_total{component="export",operation="export",resource="devices",service="reader"} 4
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "kismetdb_items_total"))
}

func TestNewMetrics_NoServerWithoutAddress(t *testing.T) {
	assert.Nil(t, NewMetrics(Config{}).Server)

	m := NewMetrics(Config{Address: DefaultMetricsAddress, ServiceName: "reader"})
	require.NotNil(t, m.Server)
	assert.Equal(t, ":9090", m.Server.Addr)

	m.ObserveOperation(observability.OperationContext{Component: "kismetdb", Operation: "count", Resource: "devices"})
	rec := httptest.NewRecorder()
	m.Server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `operations_total{component="kismetdb",operation="count",resource="devices",service="reader",status="success"} 1`)
}

func TestCreateCounter(t *testing.T) {
	m := NewMetrics(Config{Namespace: "kismetdb"})
	c := m.CreateCounter("files_total", "Files processed", []string{"result"})
	c.WithLabelValues("ok").Inc()

	n, err := testutil.GatherAndCount(m.Registry, "kismetdb_files_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFXModule_ProvidesObserver(t *testing.T) {
	var obs observability.Observer
	app := fxtest.New(t,
		FXModule,
		fx.Supply(Config{}),
		fx.Provide(logger.NewNop),
		fx.Populate(&obs),
	)
	app.RequireStart()
	defer app.RequireStop()

	_, ok := obs.(*Metrics)
	assert.True(t, ok)
}

func TestNewMetrics_RegistersOperationMetrics(t *testing.T) {
	m := NewMetrics(Config{Namespace: "kismetdb"})
	m.ObserveOperation(observability.OperationContext{
		Component: "export", Operation: "write", Resource: "devices",
		Duration: time.Millisecond, Size: 2,
	})

	for _, name := range []string{
		"kismetdb_operations_total",
		"kismetdb_operation_duration_seconds",
		"kismetdb_items_total",
		"kismetdb_last_success_timestamp_seconds",
	} {
		n, err := testutil.GatherAndCount(m.Registry, name)
		require.NoError(t, err)
		assert.Equal(t, 1, n, name)
	}

	assert.Panics(t, func() {
		m.CreateGauge("last_success_timestamp_seconds", "duplicate", operationLabels)
	})
	assert.Panics(t, func() {
		m.CreateHistogram("operation_duration_seconds", "duplicate", operationLabels, nil)
	})
}
