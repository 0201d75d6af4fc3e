// Package main provides the tourstats binary: the concert-tour statistics API
// plus the import, migrate and report tooling around it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tourstats/internal/config"
	"tourstats/internal/logging"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "tourstats"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Concert tour statistics",
		Long: `tourstats aggregates a table of concert tour dates into dashboard
statistics: most played songs, most visited cities, venue capacity
over time and where a song tends to sit in the setlist.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(
		serveCmd(),
		importCmd(),
		migrateCmd(),
		reportCmd(),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

// setup loads configuration and installs the global logger.
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logging.SetGlobalLogger(logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}))

	return cfg, nil
}
