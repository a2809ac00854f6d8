package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/perimetra/netinv/internal/config"
	"github.com/perimetra/netinv/internal/telemetry"
)

var (
	version = "0.1.0"

	configPath string
	debug      bool

	cfg    *config.Config
	logger zerolog.Logger

	rootCmd = &cobra.Command{
		Use:   "netinv",
		Short: "Cross-account network inventory collection",
		Long: `netinv collects network inventory across a multi-account cloud estate.

The dispatch stage scans the account registry and publishes one work
event per active account/region pair. The consume stage receives the
delivered events, collects VPCs, subnets and security groups from each
target account using delegated credentials, and persists the results as
partitioned, append-only JSONL files.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = telemetry.NewLogger("netinv", debug)

			if configPath == "" {
				cfg = config.Default()
				return nil
			}
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.SetVersionTemplate(`netinv {{.Version}}
`)
}
