package main

import (
	"fmt"

	"github.com/aretw0/wca/internal/presentation/tui"
	"github.com/aretw0/wca/internal/validator"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe the states and transitions of a machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.machine(cmd)
			if err != nil {
				return err
			}

			md := tui.DescribeMachine(m, validator.Inspect(m.Start, a.regs))
			out, err := tui.NewRenderer(cmd.OutOrStdout())(md)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	addMachineFlags(cmd)
	return cmd
}
