package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathanfoster/python-kismet-db/v1/export"
	"github.com/jonathanfoster/python-kismet-db/v1/kismetdb"
)

func newQueryCmd(c *cli) *cobra.Command {
	var (
		flags   tableFlags
		table   string
		orderBy string
		desc    bool
		limit   int
		count   bool
	)

	cmd := &cobra.Command{
		Use:   "query LOG",
		Short: "Print matching rows of one table as JSON lines",
		Example: `  kismetdb query Kismet-20240101.kismet --filter phyname=IEEE802.11 --filter strongest_signal_gt=-60
  kismetdb query Kismet-20240101.kismet --filter devmac=AA:BB:CC:DD:EE:01 --filter devmac=AA:BB:CC:DD:EE:02 --meta
  kismetdb query s3://captures/Kismet-20240101.kismet --table alerts --order-by ts_sec --desc --limit 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilters(flags.filters)
			if err != nil {
				return err
			}
			var opts []kismetdb.QueryOption
			if orderBy != "" {
				opts = append(opts, kismetdb.OrderBy(orderBy, desc))
			}
			if limit > 0 {
				opts = append(opts, kismetdb.Limit(limit))
			}

			cfg := c.cfg
			cfg.Export.Sink = export.SinkJSONL

			return runApp(cmd.Context(), cfg, c.out, func(ctx context.Context, svc services) error {
				t, err := openTable(ctx, svc, args[0], table, flags.version)
				if err != nil {
					return err
				}
				defer t.Close()

				if count {
					n, err := t.Count(ctx, filters)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.out, n)
					return nil
				}

				recs, err := flags.read(ctx, t, filters, opts...)
				if err != nil {
					return err
				}
				stats, err := svc.Exporter.Export(ctx, t.origin, recs)
				if err != nil {
					return err
				}
				if stats.Skipped > 0 {
					fmt.Fprintf(c.errOut, "%d rows skipped: they failed to decode\n", stats.Skipped)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&table, "table", "t", kismetdb.TableDevices, "table to read")
	cmd.Flags().IntVar(&flags.version, "version", 0, "schema version to assume; 0 reads it from the log")
	cmd.Flags().StringArrayVarP(&flags.filters, "filter", "f", nil, "filter as name=value; repeat a name to match any of several values")
	cmd.Flags().BoolVar(&flags.meta, "meta", false, "leave out the bulk data column")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "column to sort by")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of rows; 0 means all")
	cmd.Flags().BoolVar(&count, "count", false, "print the number of matching rows instead of the rows")
	return cmd
}
