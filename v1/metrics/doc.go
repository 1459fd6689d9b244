// Package metrics exposes Prometheus metrics for Kismet log operations.
//
// *Metrics implements observability.Observer. Attach it to a kismetdb.Client,
// an export.Exporter or a minio.Fetcher and every open, query, decode skip,
// fetch and export is counted and timed:
//
//	kismetdb_operations_total{component="kismetdb",operation="get_meta",resource="devices",status="success"}
//	kismetdb_operation_duration_seconds{component="export",operation="export",resource="devices"}
//	kismetdb_items_total{component="kismetdb",operation="decode",resource="devices"}
//
// # Direct Usage (Without FX)
//
//	m := metrics.NewMetrics(metrics.Config{Namespace: "kismetdb", ServiceName: "kismetdb"})
//	client := kismetdb.NewClient(kismetdb.Config{}, log).WithObserver(m)
//
// # FX Module Integration
//
//	app := fx.New(
//	    logger.FXModule,
//	    metrics.FXModule,
//	    fx.Supply(metrics.Config{Address: metrics.DefaultMetricsAddress}),
//	)
//
// The server serves the registry at /metrics. With an empty Address no
// server is started, which suits one-shot command runs.
package metrics
