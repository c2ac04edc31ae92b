package main

import (
	"fmt"

	"github.com/aretw0/wca/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// newGraphCmd represents the graph command
func newGraphCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the machine graph visualization",
		Long:  `Loads the machine and outputs a Mermaid diagram (graph TD) of the states reachable from the start state.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.machine(cmd)
			if err != nil {
				return err
			}

			var overlay *graph.GraphOverlay
			if current, _ := cmd.Flags().GetString("current"); current != "" {
				overlay = &graph.GraphOverlay{CurrentState: current}
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(m.Start, overlay))
			return nil
		},
	}
	addMachineFlags(cmd)
	cmd.Flags().String("current", "", "Highlight this state")
	return cmd
}
