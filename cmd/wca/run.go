package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/aretw0/wca/internal/cli"
	"github.com/aretw0/wca/pkg/session"
	"github.com/spf13/cobra"
)

// newRunCmd represents the run command
func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run DIR...",
		Short: "Replay recorded frames through the machine",
		Long: `Feeds the files of each directory, in name order, to the machine.
Each directory is a session of its own; directories run in parallel.
Every step is printed as one JSON line.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, _ := cmd.Flags().GetInt("workers")

			m, err := a.machine(cmd)
			if err != nil {
				return err
			}
			mgr, err := session.NewManager(cmd.Context(), m.Start, session.WithLogger(a.logger))
			if err != nil {
				return err
			}

			results := cli.Replay(cmd.Context(), mgr, args, workers, a.logger)

			enc := json.NewEncoder(cmd.OutOrStdout())
			var failed int
			for _, res := range results {
				for _, step := range res.Steps {
					if err := enc.Encode(step); err != nil {
						return err
					}
				}
				if res.Err != nil {
					failed++
					a.logger.Error("replay failed", "dir", res.Dir, "err", res.Err)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d directories failed", failed, len(args))
			}
			return nil
		},
	}
	addMachineFlags(cmd)
	cmd.Flags().IntP("workers", "w", runtime.NumCPU(), "Directories replayed concurrently")
	return cmd
}
