// Package export ships records read from Kismet logs to other systems.
//
// An Exporter drains a record iterator (usually *kismetdb.Records) in batches
// into a Sink:
//
//   - JSONLSink writes newline-delimited JSON to a file or standard output.
//   - KafkaSink produces one message per record, keyed by source, table and rowid.
//   - RabbitSink publishes persistent messages to an exchange.
//   - PostgresSink archives records into a kismet_records table with a jsonb
//     payload, ignoring rows it already holds.
//
// Every record travels in an Envelope carrying its origin:
//
//	{"source":"Kismet-20240101.kismet","table":"devices","version":5,"rowid":3,"record":{...}}
//
// Basic usage:
//
//	sink, err := export.NewSink(ctx, export.Config{Sink: export.SinkKafka, Kafka: export.KafkaConfig{
//	    Brokers: []string{"localhost:9092"},
//	    Topic:   "kismet-records",
//	}}, nil, tracerClient.GetCarrier)
//	if err != nil {
//	    return err
//	}
//	defer sink.Close()
//
//	recs, err := devices.GetAll(ctx, nil)
//	if err != nil {
//	    return err
//	}
//	stats, err := export.NewExporter(sink, export.Config{}).Export(ctx, export.Origin{
//	    Source:  devices.Path(),
//	    Table:   devices.Name(),
//	    Version: devices.Version(),
//	}, recs)
package export
