package main

import (
	"io"

	"github.com/spf13/cobra"
)

// cli holds state shared by every subcommand.
type cli struct {
	configPath string
	logLevel   string
	cfg        AppConfig
	out        io.Writer
	errOut     io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "kismetdb",
		Short: "Read Kismet .kismet log databases",
		Long: `kismetdb reads the SQLite logs written by Kismet (schema versions 4 and 5).

Logs are given as local paths or as s3://bucket/key references when an
object store endpoint is configured. Configuration comes from an optional
YAML file (--config) and KISMETDB_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			if c.logLevel != "" {
				cfg.Logger.Level = c.logLevel
			}
			c.cfg = cfg
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML configuration file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warning or error")

	root.AddCommand(
		newTablesCmd(c),
		newVersionCmd(c),
		newQueryCmd(c),
		newExportCmd(c),
	)
	return root
}
