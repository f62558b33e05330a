package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trip-itinerary-ai/internal/infra/worker"
)

func newSweepCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Fail RUNNING or QUEUED generation jobs older than generation.stuck_after, once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context(), f)
			if err != nil {
				return err
			}
			defer a.Close()
			sweeper := worker.NewStuckJobSweeper(0, a.cfg.Generation.StuckAfter, a.genUC, a.log)
			n := sweeper.SweepOnce(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "abandoned %d job(s)\n", n)
			return nil
		},
	}
}
