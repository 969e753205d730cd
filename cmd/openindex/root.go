package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"openindex/internal/config"
)

// rootOptions are the flags shared by all subcommands
type rootOptions struct {
	configFile string
	recordsDir string
	verbose    bool
}

// newRootCmd builds the command tree. A fresh tree per call keeps flag
// state out of package globals.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "openindex",
		Short: "Resolve OpenIndex identifiers to HTML, JSON or JSON-LD",
		Long: `openindex serves namespaced JSON records from a directory tree.
Each record is available as an HTML page, as the stored JSON object or as
JSON-LD, chosen from the request's Accept header.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file (default: $OI_CONFIG_FILE, ./config.yaml or ./configs/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.recordsDir, "records", "", "Records directory, overriding the config")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newServeCmd(opts),
		newResolveCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig applies the shared flags on top of the file and environment
// configuration
func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFile(o.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if o.recordsDir != "" {
		cfg.Paths.RecordsDir = o.recordsDir
	}
	if o.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}
