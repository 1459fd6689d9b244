package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathanfoster/python-kismet-db/v1/export"
)

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version LOG...",
		Short: "Print the schema version recorded in each log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			cfg.Export.Sink = export.SinkJSONL

			return runApp(cmd.Context(), cfg, c.out, func(ctx context.Context, svc services) error {
				for _, ref := range args {
					path, cleanup, err := svc.Fetcher.Resolve(ctx, ref)
					if err != nil {
						return err
					}
					version, err := svc.Reader.DetectVersion(ctx, path)
					_ = cleanup()
					if err != nil {
						return fmt.Errorf("%s: %w", ref, err)
					}
					fmt.Fprintf(c.out, "%s\t%d\n", ref, version)
				}
				return nil
			})
		},
	}
}
