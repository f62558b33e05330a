// File: cmd/app/main.go
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	dev        bool
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "app",
		Short:         "Trip itinerary generation service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "config.yaml", "path to YAML config file")
	root.PersistentFlags().BoolVar(&f.dev, "dev", false, "enable developer mode (console logs, unredacted prompts)")

	root.AddCommand(
		newServeCmd(f),
		newMigrateCmd(f),
		newSweepCmd(f),
		newTokenCmd(f),
	)
	return root
}
