// Package tracer configures OpenTelemetry tracing for the module.
//
// NewClient installs a global TracerProvider. The kismetdb package starts its
// "kismetdb.open" and "kismetdb.query" spans through the global provider, and
// the export package uses GetCarrier to put the active trace context into
// Kafka and RabbitMQ message headers, so a consumer can continue the trace
// of the export run that produced a record.
//
//	t := tracer.NewClient(tracer.Config{
//	    ServiceName:  "kismetdb",
//	    EnableExport: true,
//	    Endpoint:     "http://localhost:4318",
//	}, log)
//	defer t.Shutdown(context.Background())
package tracer
