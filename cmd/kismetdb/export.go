package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathanfoster/python-kismet-db/v1/export"
	"github.com/jonathanfoster/python-kismet-db/v1/kismetdb"
)

// DefaultExportConcurrency is the number of tables exported at once.
const DefaultExportConcurrency = 4

func newExportCmd(c *cli) *cobra.Command {
	var (
		flags       tableFlags
		tables      []string
		sink        string
		output      string
		concurrency int
		skipMissing bool
	)

	cmd := &cobra.Command{
		Use:   "export LOG...",
		Short: "Export tables of one or more logs to a sink",
		Long: `Export reads the chosen tables of every log and hands the records to the
configured sink: jsonl (standard output or --output), kafka, rabbit or postgres.
Broker and database settings come from the configuration file or environment.`,
		Example: `  kismetdb export Kismet-*.kismet --table devices --table alerts --output records.jsonl
  KISMETDB_KAFKA_BROKERS=localhost:9092 KISMETDB_KAFKA_TOPIC=kismet kismetdb export --sink kafka s3://captures/Kismet-20240101.kismet`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilters(flags.filters)
			if err != nil {
				return err
			}
			if concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1, got %d", concurrency)
			}

			cfg := c.cfg
			if sink != "" {
				cfg.Export.Sink = sink
			}

			var out io.Writer = c.out
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			var written, skipped atomic.Int64
			err = runApp(cmd.Context(), cfg, out, func(ctx context.Context, svc services) error {
				g, gctx := errgroup.WithContext(ctx)
				g.SetLimit(concurrency)

				for _, ref := range args {
					for _, name := range tables {
						g.Go(func() error {
							stats, err := exportTable(gctx, svc, flags, ref, name, filters)
							if err != nil {
								if skipMissing && kismetdb.IsSchemaMismatch(err) {
									svc.Logger.Warn("skipping table missing from log", err, map[string]interface{}{
										"log":   ref,
										"table": name,
									})
									return nil
								}
								return err
							}
							written.Add(stats.Written)
							skipped.Add(stats.Skipped)
							return nil
						})
					}
				}
				return g.Wait()
			})

			fmt.Fprintf(c.errOut, "exported %d records (%d skipped) to %s\n", written.Load(), skipped.Load(), cfg.Export.Sink)
			return err
		},
	}

	cmd.Flags().StringSliceVarP(&tables, "table", "t", []string{kismetdb.TableDevices}, "tables to export")
	cmd.Flags().IntVar(&flags.version, "version", 0, "schema version to assume; 0 reads it from each log")
	cmd.Flags().StringArrayVarP(&flags.filters, "filter", "f", nil, "filter as name=value, applied to every table")
	cmd.Flags().BoolVar(&flags.meta, "meta", false, "leave out the bulk data column")
	cmd.Flags().StringVar(&sink, "sink", "", "sink: jsonl, kafka, rabbit or postgres (overrides configuration)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file for the jsonl sink; standard output when empty")
	cmd.Flags().IntVar(&concurrency, "concurrency", DefaultExportConcurrency, "tables exported at once")
	cmd.Flags().BoolVar(&skipMissing, "skip-missing", false, "skip tables a log does not have instead of failing")
	return cmd
}

func exportTable(ctx context.Context, svc services, flags tableFlags, ref, name string, filters kismetdb.Filters) (export.Stats, error) {
	ctx, span := svc.Tracer.StartSpan(ctx, "kismetdb.export")
	defer span.End()
	svc.Tracer.SetAttributes(span, map[string]interface{}{
		"kismetdb.log":   ref,
		"kismetdb.table": name,
	})

	t, err := openTable(ctx, svc, ref, name, flags.version)
	if err != nil {
		svc.Tracer.RecordErrorOnSpan(span, err)
		return export.Stats{}, err
	}
	defer t.Close()

	recs, err := flags.read(ctx, t, filters)
	if err != nil {
		svc.Tracer.RecordErrorOnSpan(span, err)
		return export.Stats{}, fmt.Errorf("%s %s: %w", ref, name, err)
	}
	stats, err := svc.Exporter.Export(ctx, t.origin, recs)
	if err != nil {
		svc.Tracer.RecordErrorOnSpan(span, err)
		return stats, fmt.Errorf("%s %s: %w", ref, name, err)
	}
	return stats, nil
}
