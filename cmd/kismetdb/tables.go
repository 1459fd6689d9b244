package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathanfoster/python-kismet-db/v1/kismetdb"
)

func newTablesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables this tool can read and their filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schemas := kismetdb.Schemas()

			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TABLE\tVERSIONS\tBULK\tFILTERS")
			for _, name := range kismetdb.SchemaNames() {
				s := schemas[name]
				versions := make([]string, 0, 2)
				for _, v := range s.Versions() {
					versions = append(versions, fmt.Sprint(v))
				}
				bulk := s.BulkDataField
				if bulk == "" {
					bulk = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, strings.Join(versions, ","), bulk, strings.Join(s.FilterNames(), " "))
			}
			return w.Flush()
		},
	}
}
